package store

import (
	"database/sql"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/model"
)

// Include selects which relations of a device are loaded. A relation that
// is not included stays nil ("not requested"); an included relation with no
// rows is an empty list.
type Include struct {
	GroupMemberships  bool
	AccessPermissions bool
}

// IncludeAll loads every relation.
var IncludeAll = Include{GroupMemberships: true, AccessPermissions: true}

// PutDevice inserts or replaces a device. Embedded relations are ignored;
// use AddDeviceToGroup and Share to change them.
func (s *Store) PutDevice(d model.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO devices (id, name, owner_id, flags, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			flags = excluded.flags,
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, string(d.ID), d.Name, nullID(d.OwnerID), nullFlags(d.Flags), nullFloat(d.Latitude), nullFloat(d.Longitude))
	return err
}

// GetDevice retrieves a device by URN with the requested relations.
func (s *Store) GetDevice(id ident.DeviceURN, inc Include) (*model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, owner_id, flags, latitude, longitude
		FROM devices WHERE id = ?
	`, string(id))

	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadRelations(d, inc); err != nil {
		return nil, err
	}
	return d, nil
}

// DevicesOwnedBy returns the devices owned by an account, ordered by URN.
func (s *Store) DevicesOwnedBy(owner ident.AccountID, inc Include) ([]model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, owner_id, flags, latitude, longitude
		FROM devices WHERE owner_id = ?
		ORDER BY id
	`, owner.String())
	if err != nil {
		return nil, err
	}
	devices, err := scanDevices(rows)
	if err != nil {
		return nil, err
	}

	for i := range devices {
		if err := s.loadRelations(&devices[i], inc); err != nil {
			return nil, err
		}
	}
	return devices, nil
}

// DevicesSharedWith returns the devices an account was granted access to,
// ordered by URN.
func (s *Store) DevicesSharedWith(account ident.AccountID) ([]model.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT d.id, d.name, d.owner_id, d.flags, d.latitude, d.longitude
		FROM devices d JOIN access_permissions p ON p.device_id = d.id
		WHERE p.account_id = ?
		ORDER BY d.id
	`, account.String())
	if err != nil {
		return nil, err
	}
	return scanDevices(rows)
}

// DeleteDevice removes a device with its memberships and permissions.
func (s *Store) DeleteDevice(id ident.DeviceURN) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM devices WHERE id = ?`, string(id))
	return err
}

// Share grants an account access to a device.
func (s *Store) Share(p model.DeviceAccessPermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO access_permissions (account_id, device_id, flags)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id, device_id) DO UPDATE SET flags = excluded.flags
	`, p.AccountID.String(), string(p.DeviceID), nullFlags(p.Flags))
	return err
}

// Unshare revokes an account's access to a device.
func (s *Store) Unshare(account ident.AccountID, device ident.DeviceURN) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM access_permissions WHERE account_id = ? AND device_id = ?
	`, account.String(), string(device))
	return err
}

// ShareCount returns how many accounts a device is shared with.
func (s *Store) ShareCount(device ident.DeviceURN) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shareCount(device)
}

func (s *Store) shareCount(device ident.DeviceURN) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM access_permissions WHERE device_id = ?
	`, string(device)).Scan(&n)
	return n, err
}

// loadRelations fills the included relations of d. Callers hold the lock.
func (s *Store) loadRelations(d *model.Device, inc Include) error {
	if inc.GroupMemberships {
		ms, err := s.memberships(`device_id = ?`, string(d.ID))
		if err != nil {
			return err
		}
		*d = d.WithGroupMemberships(ms)
	}
	if inc.AccessPermissions {
		ps, err := s.permissions(d.ID)
		if err != nil {
			return err
		}
		*d = d.WithAccessPermissions(ps)
	}
	return nil
}

func (s *Store) permissions(device ident.DeviceURN) ([]model.DeviceAccessPermission, error) {
	rows, err := s.db.Query(`
		SELECT account_id, device_id, flags
		FROM access_permissions WHERE device_id = ?
		ORDER BY account_id
	`, string(device))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DeviceAccessPermission
	for rows.Next() {
		var (
			accountID string
			deviceID  string
			flags     sql.NullInt64
		)
		if err := rows.Scan(&accountID, &deviceID, &flags); err != nil {
			return nil, err
		}
		id, err := parseID(accountID)
		if err != nil {
			return nil, err
		}
		p := model.NewDeviceAccessPermission(id, ident.DeviceURN(deviceID))
		p.Flags = flagsPtr(flags)
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanDevice(row scanner) (*model.Device, error) {
	var (
		d       model.Device
		id      string
		ownerID sql.NullString
		flags   sql.NullInt64
		lat     sql.NullFloat64
		lon     sql.NullFloat64
	)
	if err := row.Scan(&id, &d.Name, &ownerID, &flags, &lat, &lon); err != nil {
		return nil, err
	}

	owner, err := idPtr(ownerID)
	if err != nil {
		return nil, err
	}
	d.ID = ident.DeviceURN(id)
	d.OwnerID = owner
	d.Flags = flagsPtr(flags)
	d.Latitude = floatPtr(lat)
	d.Longitude = floatPtr(lon)
	return &d, nil
}

func scanDevices(rows *sql.Rows) ([]model.Device, error) {
	defer rows.Close()

	var out []model.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
