// Package commands implements the biq-wire CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/push"
	"github.com/qbiq/biq-go/pkg/store"
	"github.com/qbiq/biq-go/pkg/token"
	"github.com/qbiq/biq-go/pkg/wire"
)

// envelopes maps a type name to a constructor returning a pointer to a new
// value of that type.
var envelopes = map[string]func() any{
	// Entities
	"Account":                func() any { return new(model.Account) },
	"AccountPublicMeta":      func() any { return new(model.AccountPublicMeta) },
	"Alias":                  func() any { return new(model.Alias) },
	"Device":                 func() any { return new(model.Device) },
	"DeviceGroup":            func() any { return new(model.DeviceGroup) },
	"DeviceGroupMembership":  func() any { return new(model.DeviceGroupMembership) },
	"DeviceAccessPermission": func() any { return new(model.DeviceAccessPermission) },
	"Observation":            func() any { return new(model.Observation) },
	"Observations":           func() any { return new([]model.Observation) },
	"Setting":                func() any { return new(limit.Setting) },
	"DeviceLimit":            func() any { return new(limit.DeviceLimit) },
	"DevicePushLimit":        func() any { return new(limit.DevicePushLimit) },
	"Claims":                 func() any { return new(token.Claims) },
	"Session":                func() any { return new(token.Session) },

	// API envelopes
	"EmptyReply":                   func() any { return new(api.EmptyReply) },
	"HealthCheckResponse":          func() any { return new(api.HealthCheckResponse) },
	"ErrorResponse":                func() any { return new(api.ErrorResponse) },
	"GroupCreateRequest":           func() any { return new(api.GroupCreateRequest) },
	"GroupDeleteRequest":           func() any { return new(api.GroupDeleteRequest) },
	"GroupUpdateRequest":           func() any { return new(api.GroupUpdateRequest) },
	"GroupListDevicesRequest":      func() any { return new(api.GroupListDevicesRequest) },
	"GroupAddDeviceRequest":        func() any { return new(api.GroupAddDeviceRequest) },
	"GroupRemoveDeviceRequest":     func() any { return new(api.GroupRemoveDeviceRequest) },
	"DeviceRegisterRequest":        func() any { return new(api.DeviceRegisterRequest) },
	"DeviceUnregisterRequest":      func() any { return new(api.DeviceUnregisterRequest) },
	"DeviceUpdateRequest":          func() any { return new(api.DeviceUpdateRequest) },
	"DeviceShareRequest":           func() any { return new(api.DeviceShareRequest) },
	"DeviceShareTokenRequest":      func() any { return new(api.DeviceShareTokenRequest) },
	"DeviceShareTokenResponse":     func() any { return new(api.DeviceShareTokenResponse) },
	"DeviceLimitsRequest":          func() any { return new(api.DeviceLimitsRequest) },
	"DeviceLimitsResponse":         func() any { return new(api.DeviceLimitsResponse) },
	"DeviceUpdateLimitsRequest":    func() any { return new(api.DeviceUpdateLimitsRequest) },
	"DeviceListItem":               func() any { return new(api.DeviceListItem) },
	"DeviceList":                   func() any { return new([]api.DeviceListItem) },
	"DeviceObservationsRequest":    func() any { return new(api.DeviceObservationsRequest) },
	"AccountRegisterRequest":       func() any { return new(api.AccountRegisterRequest) },
	"AccountLoginRequest":          func() any { return new(api.AccountLoginRequest) },
	"TokenAcquiredResponse":        func() any { return new(api.TokenAcquiredResponse) },
	"AccountAcquireTokenRequest":   func() any { return new(api.AccountAcquireTokenRequest) },
	"AddMobileDeviceRequest":       func() any { return new(api.AddMobileDeviceRequest) },
	"PasswordResetRequest":         func() any { return new(api.PasswordResetRequest) },
	"PasswordResetCompleteRequest": func() any { return new(api.PasswordResetCompleteRequest) },

	// Adapters
	"Notification": func() any { return new(push.Notification) },
	"LimitSet":     func() any { return new(push.LimitSet) },
	"Snapshot":     func() any { return new(store.Snapshot) },
}

// EnvelopeNames returns the known envelope names, sorted.
func EnvelopeNames() []string {
	names := make([]string, 0, len(envelopes))
	for name := range envelopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newEnvelope returns a pointer to a new value of the named envelope.
func newEnvelope(name string) (any, error) {
	ctor, ok := envelopes[name]
	if !ok {
		return nil, fmt.Errorf("unknown envelope %q (use \"biq-wire envelopes\" to list them)", name)
	}
	return ctor(), nil
}

// RunEnvelopes lists the known envelope names.
func RunEnvelopes(w io.Writer) error {
	_, err := fmt.Fprintln(w, strings.Join(EnvelopeNames(), "\n"))
	return err
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// codecFor returns the default codec for a format name.
func codecFor(name string) (*wire.Codec, error) {
	f, err := wire.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return wire.NewCodec(wire.DefaultOptions()).WithFormat(f), nil
}
