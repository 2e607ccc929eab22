package store

import (
	"database/sql"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
)

// SetLimit inserts or replaces the limit of one type that an account set on
// a device. Unrecognized types are stored with their raw tag.
func (s *Store) SetLimit(l limit.DeviceLimit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setLimit(s.db, l)
}

// SetLimits applies settings for an account and device in one transaction.
// Types not listed keep their current value.
func (s *Store) SetLimits(user ident.AccountID, device ident.DeviceURN, settings []limit.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, st := range settings {
		if err := s.setLimit(tx, limit.FromSetting(user, device, st)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) setLimit(db execer, l limit.DeviceLimit) error {
	_, err := db.Exec(`
		INSERT INTO device_limits (user_id, device_id, limit_type, limit_value, limit_value_string)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, device_id, limit_type) DO UPDATE SET
			limit_value = excluded.limit_value,
			limit_value_string = excluded.limit_value_string
	`, l.UserID.String(), string(l.DeviceID), int(l.Type.Raw()), l.Value, nullString(l.StringValue))
	return err
}

// DeleteLimit removes one limit.
func (s *Store) DeleteLimit(user ident.AccountID, device ident.DeviceURN, t limit.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM device_limits WHERE user_id = ? AND device_id = ? AND limit_type = ?
	`, user.String(), string(device), int(t.Raw()))
	return err
}

// Limits returns the settings an account has on a device, ordered by type.
// The result is never nil.
func (s *Store) Limits(user ident.AccountID, device ident.DeviceURN) ([]limit.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.limits(user, device)
}

func (s *Store) limits(user ident.AccountID, device ident.DeviceURN) ([]limit.Setting, error) {
	rows, err := s.db.Query(`
		SELECT limit_type, limit_value, limit_value_string
		FROM device_limits WHERE user_id = ? AND device_id = ?
		ORDER BY limit_type
	`, user.String(), string(device))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []limit.Setting{}
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// SetPushLimit inserts or replaces a device-wide limit.
func (s *Store) SetPushLimit(l limit.DevicePushLimit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO push_limits (device_id, limit_type, limit_value, limit_value_string)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id, limit_type) DO UPDATE SET
			limit_value = excluded.limit_value,
			limit_value_string = excluded.limit_value_string
	`, string(l.DeviceID), int(l.Type.Raw()), l.Value, nullString(l.StringValue))
	return err
}

// PushLimits returns the device-wide limits of a device, ordered by type.
func (s *Store) PushLimits(device ident.DeviceURN) ([]limit.DevicePushLimit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT limit_type, limit_value, limit_value_string
		FROM push_limits WHERE device_id = ?
		ORDER BY limit_type
	`, string(device))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []limit.DevicePushLimit{}
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, limit.DevicePushLimit{
			DeviceID:    device,
			Type:        st.Type,
			Value:       st.Value,
			StringValue: st.StringValue,
		})
	}
	return out, rows.Err()
}

func scanSetting(row scanner) (limit.Setting, error) {
	var (
		raw int
		st  limit.Setting
		str sql.NullString
	)
	if err := row.Scan(&raw, &st.Value, &str); err != nil {
		return limit.Setting{}, err
	}
	st.Type = limit.Type(raw)
	st.StringValue = stringPtr(str)
	return st, nil
}
