package api

import (
	"github.com/qbiq/biq-go/pkg/ident"
)

// GroupCreateRequest creates a device group owned by the caller.
type GroupCreateRequest struct {
	Name string `json:"name"`
}

// NewGroupCreateRequest returns a create request.
func NewGroupCreateRequest(name string) GroupCreateRequest {
	return GroupCreateRequest{Name: name}
}

// GroupDeleteRequest deletes a group. Member devices are not affected.
type GroupDeleteRequest struct {
	GroupID ident.ID `json:"groupId"`
}

// NewGroupDeleteRequest returns a delete request.
func NewGroupDeleteRequest(group ident.ID) GroupDeleteRequest {
	return GroupDeleteRequest{GroupID: group}
}

// GroupUpdateRequest changes group attributes. Absent fields are unchanged.
type GroupUpdateRequest struct {
	GroupID ident.ID `json:"groupId"`
	Name    *string  `json:"name,omitempty"`
}

// NewGroupUpdateRequest returns an update request that changes nothing.
func NewGroupUpdateRequest(group ident.ID) GroupUpdateRequest {
	return GroupUpdateRequest{GroupID: group}
}

// WithName returns a copy of r that renames the group.
func (r GroupUpdateRequest) WithName(name string) GroupUpdateRequest {
	r.Name = &name
	return r
}

// GroupListDevicesRequest lists the devices of a group.
type GroupListDevicesRequest struct {
	GroupID ident.ID `json:"groupId"`
}

// NewGroupListDevicesRequest returns a list request.
func NewGroupListDevicesRequest(group ident.ID) GroupListDevicesRequest {
	return GroupListDevicesRequest{GroupID: group}
}

// GroupAddDeviceRequest adds a device to a group.
type GroupAddDeviceRequest struct {
	GroupID  ident.ID        `json:"groupId"`
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewGroupAddDeviceRequest returns an add request.
func NewGroupAddDeviceRequest(group ident.ID, device ident.DeviceURN) GroupAddDeviceRequest {
	return GroupAddDeviceRequest{GroupID: group, DeviceID: device}
}

// GroupRemoveDeviceRequest removes a device from a group.
type GroupRemoveDeviceRequest struct {
	GroupID  ident.ID        `json:"groupId"`
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewGroupRemoveDeviceRequest returns a remove request.
func NewGroupRemoveDeviceRequest(group ident.ID, device ident.DeviceURN) GroupRemoveDeviceRequest {
	return GroupRemoveDeviceRequest{GroupID: group, DeviceID: device}
}
