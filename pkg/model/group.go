package model

import (
	"github.com/qbiq/biq-go/pkg/ident"
)

// DeviceGroup is a named collection of devices owned by one account.
type DeviceGroup struct {
	ID      ident.ID        `json:"id"`
	OwnerID ident.AccountID `json:"ownerId"`
	Name    string          `json:"name"`
	Devices *[]Device       `json:"devices,omitempty"`
}

// NewDeviceGroup returns a group without embedded devices.
func NewDeviceGroup(id ident.ID, owner ident.AccountID, name string) DeviceGroup {
	return DeviceGroup{ID: id, OwnerID: owner, Name: name}
}

// Identity returns the group ID.
func (g DeviceGroup) Identity() ident.ID {
	return g.ID
}

// WithDevices returns a copy of g embedding devices. A nil devices embeds an
// empty list.
func (g DeviceGroup) WithDevices(devices []Device) DeviceGroup {
	cp := append([]Device{}, devices...)
	g.Devices = &cp
	return g
}

// DeviceGroupMembership places a device in a group.
type DeviceGroupMembership struct {
	GroupID  ident.ID        `json:"groupId"`
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewDeviceGroupMembership returns a membership record.
func NewDeviceGroupMembership(group ident.ID, device ident.DeviceURN) DeviceGroupMembership {
	return DeviceGroupMembership{GroupID: group, DeviceID: device}
}

// DeviceAccessPermission grants an account access to a device it does not own.
type DeviceAccessPermission struct {
	AccountID ident.AccountID `json:"accountId"`
	DeviceID  ident.DeviceURN `json:"deviceId"`
	Flags     *uint64         `json:"flags,omitempty"`
}

// NewDeviceAccessPermission returns a permission without flags.
func NewDeviceAccessPermission(account ident.AccountID, device ident.DeviceURN) DeviceAccessPermission {
	return DeviceAccessPermission{AccountID: account, DeviceID: device}
}

// WithFlags returns a copy of p with flags set.
func (p DeviceAccessPermission) WithFlags(flags uint64) DeviceAccessPermission {
	p.Flags = &flags
	return p
}
