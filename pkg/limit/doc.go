// Package limit implements the tagged device-limit value model.
//
// A limit is a (type, numeric value, optional string value) triple. The type
// is a byte drawn from an append-only enumeration; each type declares the
// value domain it expects, but this package only carries the values. Checking
// that a value fits its type's domain is left to the caller.
//
// Three records share the triple:
//   - Setting: the bare triple, as exchanged in API envelopes.
//   - DeviceLimit: a limit one account set on one device.
//   - DevicePushLimit: a device-wide limit with no account, broadcast to the
//     push-notification component.
//
// # Unrecognized types
//
// Any byte decodes. A byte outside the enumeration resolves to Unrecognized
// while the record keeps the raw byte, so it is re-encoded unchanged.
package limit
