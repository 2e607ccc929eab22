// Package model implements the BIQ entity model.
//
// # Entities
//
//	Account ──< Alias                 (login addresses of an account)
//	Account ──< Device                (ownerId)
//	Account ──< DeviceGroup ──< DeviceGroupMembership >── Device
//	Account ──< DeviceAccessPermission >── Device   (shared, not owned)
//	Device  ──< Observation
//
// Entities are values. Constructors set the required fields; the With...
// methods return modified copies, so a value handed to another goroutine is
// never changed underneath it.
//
// # Identity
//
// Account, Device and DeviceGroup implement ident.Identifiable: two values
// with the same id are the same entity whatever their other fields hold.
// Memberships and permissions are plain association records.
//
// # Optional Relations
//
// Embedded relations (a device's memberships and permissions, a group's
// devices) are pointers to slices:
//   - nil: not requested by the producing endpoint, omitted on the wire
//   - pointer to an empty slice: requested, none exist, encoded as []
package model
