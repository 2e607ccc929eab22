package store

import (
	"database/sql"
	"time"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/model"
)

const observationColumns = `id, device_id, obstime, charging, firmware, wifi_firmware,
	battery, temp, light, humidity, xaxis, yaxis, zaxis`

// AddObservation stores an observation and returns its assigned ID. The ID
// of o is ignored.
func (s *Store) AddObservation(o model.Observation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO observations (device_id, obstime, charging, firmware, wifi_firmware,
			battery, temp, light, humidity, xaxis, yaxis, zaxis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(o.DeviceID), o.ObsTime, o.Charging, o.Firmware, nullString(o.WifiFirmware),
		o.Battery, o.Temp, o.Light, o.Humidity, o.XAxis, o.YAxis, o.ZAxis)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LatestObservation returns the most recent observation of a device.
func (s *Store) LatestObservation(device ident.DeviceURN) (*model.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestObservation(device)
}

func (s *Store) latestObservation(device ident.DeviceURN) (*model.Observation, error) {
	row := s.db.QueryRow(`
		SELECT `+observationColumns+`
		FROM observations WHERE device_id = ?
		ORDER BY obstime DESC, id DESC LIMIT 1
	`, string(device))

	o, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Observations returns the observations of a device within interval,
// measured back from now, in time order. Unbounded intervals return all
// observations.
func (s *Store) Observations(device ident.DeviceURN, interval api.Interval, now time.Time) ([]model.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := 0.0
	if start, ok := interval.Since(now); ok {
		since = model.ObsTimeMillis(start)
	}

	rows, err := s.db.Query(`
		SELECT `+observationColumns+`
		FROM observations WHERE device_id = ? AND obstime >= ?
		ORDER BY obstime, id
	`, string(device), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Observation{}
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanObservation(row scanner) (*model.Observation, error) {
	var (
		o        model.Observation
		deviceID string
		wifi     sql.NullString
	)
	err := row.Scan(&o.ID, &deviceID, &o.ObsTime, &o.Charging, &o.Firmware, &wifi,
		&o.Battery, &o.Temp, &o.Light, &o.Humidity, &o.XAxis, &o.YAxis, &o.ZAxis)
	if err != nil {
		return nil, err
	}
	o.DeviceID = ident.DeviceURN(deviceID)
	o.WifiFirmware = stringPtr(wifi)
	return &o, nil
}
