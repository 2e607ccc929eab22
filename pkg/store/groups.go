package store

import (
	"database/sql"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/model"
)

// PutGroup inserts or replaces a group. Embedded devices are ignored.
func (s *Store) PutGroup(g model.DeviceGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO device_groups (id, owner_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, name = excluded.name
	`, g.ID.String(), g.OwnerID.String(), g.Name)
	return err
}

// RenameGroup changes a group's name.
func (s *Store) RenameGroup(id ident.ID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE device_groups SET name = ? WHERE id = ?`, name, id.String())
	return err
}

// GetGroup retrieves a group. With withDevices the member devices are
// embedded, as an empty list when there are none.
func (s *Store) GetGroup(id ident.ID, withDevices bool) (*model.DeviceGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rawID   string
		ownerID string
		name    string
	)
	err := s.db.QueryRow(`
		SELECT id, owner_id, name FROM device_groups WHERE id = ?
	`, id.String()).Scan(&rawID, &ownerID, &name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	gid, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}
	g := model.NewDeviceGroup(gid, owner, name)

	if withDevices {
		devices, err := s.groupDevices(id)
		if err != nil {
			return nil, err
		}
		g = g.WithDevices(devices)
	}
	return &g, nil
}

// GroupsOwnedBy returns the groups owned by an account, ordered by name.
func (s *Store) GroupsOwnedBy(owner ident.AccountID) ([]model.DeviceGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name FROM device_groups WHERE owner_id = ? ORDER BY name, id
	`, owner.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DeviceGroup
	for rows.Next() {
		var rawID, name string
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, err
		}
		id, err := parseID(rawID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.NewDeviceGroup(id, owner, name))
	}
	return out, rows.Err()
}

// DeleteGroup removes a group and its memberships. Devices are kept.
func (s *Store) DeleteGroup(id ident.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM device_groups WHERE id = ?`, id.String())
	return err
}

// AddDeviceToGroup records a membership. Adding an existing member is a
// no-op.
func (s *Store) AddDeviceToGroup(m model.DeviceGroupMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO group_memberships (group_id, device_id) VALUES (?, ?)
	`, m.GroupID.String(), string(m.DeviceID))
	return err
}

// RemoveDeviceFromGroup deletes a membership.
func (s *Store) RemoveDeviceFromGroup(m model.DeviceGroupMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM group_memberships WHERE group_id = ? AND device_id = ?
	`, m.GroupID.String(), string(m.DeviceID))
	return err
}

func (s *Store) groupDevices(group ident.ID) ([]model.Device, error) {
	rows, err := s.db.Query(`
		SELECT d.id, d.name, d.owner_id, d.flags, d.latitude, d.longitude
		FROM devices d JOIN group_memberships m ON m.device_id = d.id
		WHERE m.group_id = ?
		ORDER BY d.id
	`, group.String())
	if err != nil {
		return nil, err
	}
	return scanDevices(rows)
}

// memberships loads memberships matching a single-column condition.
func (s *Store) memberships(cond string, arg any) ([]model.DeviceGroupMembership, error) {
	rows, err := s.db.Query(`
		SELECT group_id, device_id FROM group_memberships WHERE `+cond+`
		ORDER BY group_id, device_id
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DeviceGroupMembership
	for rows.Next() {
		var groupID, deviceID string
		if err := rows.Scan(&groupID, &deviceID); err != nil {
			return nil, err
		}
		gid, err := parseID(groupID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.NewDeviceGroupMembership(gid, ident.DeviceURN(deviceID)))
	}
	return out, rows.Err()
}
