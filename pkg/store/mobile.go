package store

import (
	"github.com/qbiq/biq-go/pkg/ident"
)

// MobileDevice is a phone or tablet registered to an account.
type MobileDevice struct {
	DeviceID   string
	DeviceType string
}

// AddMobileDevice registers a mobile device for an account. Registering the
// same device again updates its type.
func (s *Store) AddMobileDevice(account ident.AccountID, m MobileDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO mobile_devices (account_id, device_id, device_type)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id, device_id) DO UPDATE SET
			device_type = excluded.device_type
	`, account.String(), m.DeviceID, m.DeviceType)
	return err
}

// MobileDevices returns the mobile devices of an account ordered by id.
func (s *Store) MobileDevices(account ident.AccountID) ([]MobileDevice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT device_id, device_type FROM mobile_devices
		WHERE account_id = ? ORDER BY device_id
	`, account.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MobileDevice
	for rows.Next() {
		var m MobileDevice
		if err := rows.Scan(&m.DeviceID, &m.DeviceType); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
