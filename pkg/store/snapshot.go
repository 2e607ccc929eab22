package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/schema"
	"github.com/qbiq/biq-go/pkg/wire"
)

// SnapshotVersion is the current version of the snapshot file format.
const SnapshotVersion = 1

// Snapshot is a portable copy of the store, without observations.
type Snapshot struct {
	// Version is the snapshot file format version.
	Version int `json:"version"`

	// Generation is the schema generation the documents follow.
	Generation int `json:"generation"`

	// SavedAt is when the snapshot was taken, in epoch seconds.
	SavedAt int64 `json:"savedAt"`

	Accounts   []model.Account         `json:"accounts"`
	Aliases    []model.Alias           `json:"aliases"`
	Groups     []model.DeviceGroup     `json:"groups"`
	Devices    []model.Device          `json:"devices"`
	Limits     []limit.DeviceLimit     `json:"limits"`
	PushLimits []limit.DevicePushLimit `json:"pushLimits"`
}

// Export copies the store into a snapshot. Devices carry their memberships
// and permissions.
func (s *Store) Export() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Version:    SnapshotVersion,
		Generation: schema.CurrentGeneration,
		SavedAt:    time.Now().Unix(),
		Accounts:   []model.Account{},
		Aliases:    []model.Alias{},
		Groups:     []model.DeviceGroup{},
		Devices:    []model.Device{},
		Limits:     []limit.DeviceLimit{},
		PushLimits: []limit.DevicePushLimit{},
	}

	rows, err := s.db.Query(`SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		a, err := s.getAccount(id)
		if err != nil {
			return nil, err
		}
		snap.Accounts = append(snap.Accounts, *a)
		aliases, err := s.aliasesFor(id)
		if err != nil {
			return nil, err
		}
		snap.Aliases = append(snap.Aliases, aliases...)
	}

	rows, err = s.db.Query(`SELECT id, owner_id, name FROM device_groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var rawID, ownerID, name string
		if err := rows.Scan(&rawID, &ownerID, &name); err != nil {
			rows.Close()
			return nil, err
		}
		gid, err := parseID(rawID)
		if err != nil {
			rows.Close()
			return nil, err
		}
		owner, err := parseID(ownerID)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Groups = append(snap.Groups, model.NewDeviceGroup(gid, owner, name))
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT id, name, owner_id, flags, latitude, longitude FROM devices ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	devices, err := scanDevices(rows)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if err := s.loadRelations(&devices[i], IncludeAll); err != nil {
			return nil, err
		}
	}
	snap.Devices = append(snap.Devices, devices...)

	rows, err = s.db.Query(`
		SELECT user_id, device_id, limit_type, limit_value, limit_value_string
		FROM device_limits ORDER BY user_id, device_id, limit_type
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			userID   string
			deviceID string
			raw      int
			value    float64
			str      sql.NullString
		)
		if err := rows.Scan(&userID, &deviceID, &raw, &value, &str); err != nil {
			rows.Close()
			return nil, err
		}
		uid, err := parseID(userID)
		if err != nil {
			rows.Close()
			return nil, err
		}
		l := limit.New(uid, ident.DeviceURN(deviceID), limit.Type(raw), value)
		l.StringValue = stringPtr(str)
		snap.Limits = append(snap.Limits, l)
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT device_id, limit_type, limit_value, limit_value_string
		FROM push_limits ORDER BY device_id, limit_type
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			deviceID string
			raw      int
			value    float64
			str      sql.NullString
		)
		if err := rows.Scan(&deviceID, &raw, &value, &str); err != nil {
			rows.Close()
			return nil, err
		}
		p := limit.NewPush(ident.DeviceURN(deviceID), limit.Type(raw), value)
		p.StringValue = stringPtr(str)
		snap.PushLimits = append(snap.PushLimits, p)
	}
	rows.Close()

	return snap, nil
}

// Import writes every entity of a snapshot into the store, replacing rows
// with the same keys.
func (s *Store) Import(snap *Snapshot) error {
	for _, a := range snap.Accounts {
		if err := s.PutAccount(a); err != nil {
			return err
		}
	}
	for _, a := range snap.Aliases {
		if err := s.PutAlias(a); err != nil {
			return err
		}
	}
	for _, g := range snap.Groups {
		if err := s.PutGroup(g); err != nil {
			return err
		}
	}
	for _, d := range snap.Devices {
		if err := s.PutDevice(d); err != nil {
			return err
		}
	}
	for _, d := range snap.Devices {
		if d.GroupMemberships != nil {
			for _, m := range *d.GroupMemberships {
				if err := s.AddDeviceToGroup(m); err != nil {
					return err
				}
			}
		}
		if d.AccessPermissions != nil {
			for _, p := range *d.AccessPermissions {
				if err := s.Share(p); err != nil {
					return err
				}
			}
		}
	}
	for _, l := range snap.Limits {
		if err := s.SetLimit(l); err != nil {
			return err
		}
	}
	for _, p := range snap.PushLimits {
		if err := s.SetPushLimit(p); err != nil {
			return err
		}
	}
	return nil
}

func scanIDs(rows *sql.Rows) ([]ident.ID, error) {
	defer rows.Close()

	var out []ident.ID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SnapshotFile stores snapshots as JSON documents on disk.
type SnapshotFile struct {
	mu    sync.Mutex
	path  string
	codec *wire.Codec
}

// NewSnapshotFile creates a snapshot file at path using the default JSON
// codec.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path, codec: wire.JSON()}
}

// Save writes the snapshot to disk.
func (f *SnapshotFile) Save(snap *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	snap.Version = SnapshotVersion
	if snap.SavedAt == 0 {
		snap.SavedAt = time.Now().Unix()
	}

	data, err := f.codec.Encode(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

// Load reads the snapshot from disk.
// Returns nil, nil if the file doesn't exist.
func (f *SnapshotFile) Load() (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	if err := f.codec.DecodeInto(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Clear removes the snapshot file.
func (f *SnapshotFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
