package limit

import (
	"github.com/qbiq/biq-go/pkg/ident"
)

// Setting is the bare limit triple exchanged in API envelopes.
type Setting struct {
	Type        Type    `json:"limitType"`
	Value       float64 `json:"limitValue"`
	StringValue *string `json:"limitValueString,omitempty"`
}

// NewSetting returns a numeric setting.
func NewSetting(t Type, value float64) Setting {
	return Setting{Type: t, Value: value}
}

// NewStringSetting returns a setting carrying a string value. The numeric
// value is zero.
func NewStringSetting(t Type, s string) Setting {
	return Setting{Type: t, StringValue: &s}
}

// WithString returns a copy of s with the string value set.
func (s Setting) WithString(v string) Setting {
	s.StringValue = &v
	return s
}

// Text returns the string value and whether it is present.
func (s Setting) Text() (string, bool) {
	if s.StringValue == nil {
		return "", false
	}
	return *s.StringValue, true
}

// Matches reports whether the populated values fit the declared domain of the
// setting's type. It is advisory: nothing in this module rejects a setting
// that does not match.
func (s Setting) Matches() bool {
	switch s.Type.Domain() {
	case DomainFloat:
		return s.StringValue == nil
	case DomainString:
		return s.StringValue != nil
	case DomainFloatWithString:
		return true
	default:
		return false
	}
}

// DeviceLimit is a limit one account set on one device.
type DeviceLimit struct {
	UserID      ident.AccountID `json:"userId"`
	DeviceID    ident.DeviceURN `json:"deviceId"`
	Type        Type            `json:"limitType"`
	Value       float64         `json:"limitValue"`
	StringValue *string         `json:"limitValueString,omitempty"`
}

// New returns a numeric DeviceLimit.
func New(userID ident.AccountID, deviceID ident.DeviceURN, t Type, value float64) DeviceLimit {
	return DeviceLimit{UserID: userID, DeviceID: deviceID, Type: t, Value: value}
}

// FromSetting scopes a setting to an account and device.
func FromSetting(userID ident.AccountID, deviceID ident.DeviceURN, s Setting) DeviceLimit {
	return DeviceLimit{
		UserID:      userID,
		DeviceID:    deviceID,
		Type:        s.Type,
		Value:       s.Value,
		StringValue: s.StringValue,
	}
}

// WithString returns a copy of l with the string value set.
func (l DeviceLimit) WithString(v string) DeviceLimit {
	l.StringValue = &v
	return l
}

// Setting returns the bare triple.
func (l DeviceLimit) Setting() Setting {
	return Setting{Type: l.Type, Value: l.Value, StringValue: l.StringValue}
}

// Push returns the device-wide form of l, without the account.
func (l DeviceLimit) Push() DevicePushLimit {
	return DevicePushLimit{
		DeviceID:    l.DeviceID,
		Type:        l.Type,
		Value:       l.Value,
		StringValue: l.StringValue,
	}
}

// DevicePushLimit is a device-wide limit, not scoped to any account. The
// push-notification component composes payloads from it.
type DevicePushLimit struct {
	DeviceID    ident.DeviceURN `json:"deviceId"`
	Type        Type            `json:"limitType"`
	Value       float64         `json:"limitValue"`
	StringValue *string         `json:"limitValueString,omitempty"`
}

// NewPush returns a numeric DevicePushLimit.
func NewPush(deviceID ident.DeviceURN, t Type, value float64) DevicePushLimit {
	return DevicePushLimit{DeviceID: deviceID, Type: t, Value: value}
}

// WithString returns a copy of l with the string value set.
func (l DevicePushLimit) WithString(v string) DevicePushLimit {
	l.StringValue = &v
	return l
}

// Setting returns the bare triple.
func (l DevicePushLimit) Setting() Setting {
	return Setting{Type: l.Type, Value: l.Value, StringValue: l.StringValue}
}
