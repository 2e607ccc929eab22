package api

import (
	"github.com/qbiq/biq-go/pkg/capability"
	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
)

// DeviceRegisterRequest claims a device for the caller.
type DeviceRegisterRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewDeviceRegisterRequest returns a register request.
func NewDeviceRegisterRequest(device ident.DeviceURN) DeviceRegisterRequest {
	return DeviceRegisterRequest{DeviceID: device}
}

// DeviceUnregisterRequest releases a device the caller owns.
type DeviceUnregisterRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewDeviceUnregisterRequest returns an unregister request.
func NewDeviceUnregisterRequest(device ident.DeviceURN) DeviceUnregisterRequest {
	return DeviceUnregisterRequest{DeviceID: device}
}

// DeviceUpdateRequest changes device attributes. Absent fields are unchanged.
type DeviceUpdateRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Name     *string         `json:"name,omitempty"`
	Flags    *uint64         `json:"flags,omitempty"`
}

// NewDeviceUpdateRequest returns an update request that changes nothing.
func NewDeviceUpdateRequest(device ident.DeviceURN) DeviceUpdateRequest {
	return DeviceUpdateRequest{DeviceID: device}
}

// WithName returns a copy of r that renames the device.
func (r DeviceUpdateRequest) WithName(name string) DeviceUpdateRequest {
	r.Name = &name
	return r
}

// WithFlags returns a copy of r that replaces the device flags.
func (r DeviceUpdateRequest) WithFlags(flags capability.Flags) DeviceUpdateRequest {
	raw := flags.Raw()
	r.Flags = &raw
	return r
}

// DeviceShareRequest shares a device. Without a token the caller shares a
// device it owns; with a token the caller redeems a share token.
type DeviceShareRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Token    *string         `json:"token,omitempty"`
}

// NewDeviceShareRequest returns a direct share request.
func NewDeviceShareRequest(device ident.DeviceURN) DeviceShareRequest {
	return DeviceShareRequest{DeviceID: device}
}

// WithToken returns a copy of r that redeems token.
func (r DeviceShareRequest) WithToken(token string) DeviceShareRequest {
	r.Token = &token
	return r
}

// IsRedemption returns true if r redeems a share token.
func (r DeviceShareRequest) IsRedemption() bool {
	return r.Token != nil
}

// DeviceShareTokenRequest asks for a share token for a device.
type DeviceShareTokenRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewDeviceShareTokenRequest returns a share token request.
func NewDeviceShareTokenRequest(device ident.DeviceURN) DeviceShareTokenRequest {
	return DeviceShareTokenRequest{DeviceID: device}
}

// DeviceShareTokenResponse carries an issued share token.
type DeviceShareTokenResponse struct {
	Token string `json:"token"`
}

// NewDeviceShareTokenResponse returns a share token response.
func NewDeviceShareTokenResponse(token string) DeviceShareTokenResponse {
	return DeviceShareTokenResponse{Token: token}
}

// DeviceLimitsRequest asks for the caller's limits on a device.
type DeviceLimitsRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
}

// NewDeviceLimitsRequest returns a limits request.
func NewDeviceLimitsRequest(device ident.DeviceURN) DeviceLimitsRequest {
	return DeviceLimitsRequest{DeviceID: device}
}

// DeviceLimitsResponse lists the limits set on a device.
type DeviceLimitsResponse struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Limits   []limit.Setting `json:"limits"`
}

// NewDeviceLimitsResponse returns a limits response. A nil limits encodes
// as an empty list.
func NewDeviceLimitsResponse(device ident.DeviceURN, limits []limit.Setting) DeviceLimitsResponse {
	return DeviceLimitsResponse{DeviceID: device, Limits: settings(limits)}
}

// DeviceUpdateLimitsRequest replaces the caller's limits on a device.
// Limits of types not listed are left unchanged.
type DeviceUpdateLimitsRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Limits   []limit.Setting `json:"limits"`
}

// NewDeviceUpdateLimitsRequest returns an update limits request.
func NewDeviceUpdateLimitsRequest(device ident.DeviceURN, limits []limit.Setting) DeviceUpdateLimitsRequest {
	return DeviceUpdateLimitsRequest{DeviceID: device, Limits: settings(limits)}
}

// DeviceListItem is one entry of the device list: the device, how many
// accounts it is shared with, its latest observation and the caller's limits.
type DeviceListItem struct {
	Device          model.Device       `json:"device"`
	ShareCount      *int               `json:"shareCount,omitempty"`
	LastObservation *model.Observation `json:"lastObservation,omitempty"`
	Limits          []limit.Setting    `json:"limits"`
}

// NewDeviceListItem returns a list item without share count or observation.
func NewDeviceListItem(device model.Device, limits []limit.Setting) DeviceListItem {
	return DeviceListItem{Device: device, Limits: settings(limits)}
}

// WithShareCount returns a copy of i with the share count set.
func (i DeviceListItem) WithShareCount(n int) DeviceListItem {
	i.ShareCount = &n
	return i
}

// WithLastObservation returns a copy of i with the latest observation.
func (i DeviceListItem) WithLastObservation(o model.Observation) DeviceListItem {
	i.LastObservation = &o
	return i
}

// DeviceObservationsRequest queries the observations of a device.
type DeviceObservationsRequest struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Interval Interval        `json:"interval"`
}

// NewDeviceObservationsRequest returns an observation query.
func NewDeviceObservationsRequest(device ident.DeviceURN, interval Interval) DeviceObservationsRequest {
	return DeviceObservationsRequest{DeviceID: device, Interval: interval}
}

func settings(in []limit.Setting) []limit.Setting {
	return append([]limit.Setting{}, in...)
}
