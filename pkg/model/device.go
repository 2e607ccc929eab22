package model

import (
	"github.com/qbiq/biq-go/pkg/capability"
	"github.com/qbiq/biq-go/pkg/ident"
)

// Device is a registered telemetry device.
type Device struct {
	ID        ident.DeviceURN  `json:"id"`
	Name      string           `json:"name"`
	OwnerID   *ident.AccountID `json:"ownerId,omitempty"`
	Flags     *uint64          `json:"flags,omitempty"`
	Latitude  *float64         `json:"latitude,omitempty"`
	Longitude *float64         `json:"longitude,omitempty"`

	GroupMemberships  *[]DeviceGroupMembership  `json:"groupMemberships,omitempty"`
	AccessPermissions *[]DeviceAccessPermission `json:"accessPermissions,omitempty"`
}

// NewDevice returns an unowned device with no optional fields.
func NewDevice(id ident.DeviceURN, name string) Device {
	return Device{ID: id, Name: name}
}

// Identity returns the device URN.
func (d Device) Identity() ident.DeviceURN {
	return d.ID
}

// WithOwner returns a copy of d owned by owner.
func (d Device) WithOwner(owner ident.AccountID) Device {
	d.OwnerID = &owner
	return d
}

// WithFlags returns a copy of d with capability flags set.
func (d Device) WithFlags(flags capability.Flags) Device {
	raw := flags.Raw()
	d.Flags = &raw
	return d
}

// WithLocation returns a copy of d with a position.
func (d Device) WithLocation(latitude, longitude float64) Device {
	d.Latitude = &latitude
	d.Longitude = &longitude
	return d
}

// WithGroupMemberships returns a copy of d embedding ms. A nil ms embeds an
// empty list, never "not requested".
func (d Device) WithGroupMemberships(ms []DeviceGroupMembership) Device {
	cp := append([]DeviceGroupMembership{}, ms...)
	d.GroupMemberships = &cp
	return d
}

// WithAccessPermissions returns a copy of d embedding ps. A nil ps embeds an
// empty list.
func (d Device) WithAccessPermissions(ps []DeviceAccessPermission) Device {
	cp := append([]DeviceAccessPermission{}, ps...)
	d.AccessPermissions = &cp
	return d
}

// DeviceFlags returns the capability flags; absent flags read as empty.
func (d Device) DeviceFlags() capability.Flags {
	if d.Flags == nil {
		return capability.None
	}
	return capability.FromRaw(*d.Flags)
}

// Owner returns the owning account and whether one is set.
func (d Device) Owner() (ident.AccountID, bool) {
	if d.OwnerID == nil {
		return ident.Nil, false
	}
	return *d.OwnerID, true
}

// Location returns the device position; ok is false unless both coordinates
// are present.
func (d Device) Location() (latitude, longitude float64, ok bool) {
	if d.Latitude == nil || d.Longitude == nil {
		return 0, 0, false
	}
	return *d.Latitude, *d.Longitude, true
}

// IsOwnedBy returns true if account owns d.
func (d Device) IsOwnedBy(account ident.AccountID) bool {
	return d.OwnerID != nil && *d.OwnerID == account
}
