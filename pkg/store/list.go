package store

import (
	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/ident"
)

// DeviceList builds the device list of an account: owned devices first,
// then devices shared with it. Each item carries the share count, the latest
// observation if any, and the account's limits on the device.
func (s *Store) DeviceList(account ident.AccountID) ([]api.DeviceListItem, error) {
	owned, err := s.DevicesOwnedBy(account, Include{})
	if err != nil {
		return nil, err
	}
	shared, err := s.DevicesSharedWith(account)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]api.DeviceListItem, 0, len(owned)+len(shared))
	for _, d := range append(owned, shared...) {
		limits, err := s.limits(account, d.ID)
		if err != nil {
			return nil, err
		}
		item := api.NewDeviceListItem(d, limits)

		n, err := s.shareCount(d.ID)
		if err != nil {
			return nil, err
		}
		item = item.WithShareCount(n)

		obs, err := s.latestObservation(d.ID)
		if err != nil {
			return nil, err
		}
		if obs != nil {
			item = item.WithLastObservation(*obs)
		}
		items = append(items, item)
	}
	return items, nil
}
