// Package ident defines the identifier types shared by every BIQ entity and
// the generic identity-based equality used for them.
//
// # Identifiers
//
//   - DeviceURN: the name a physical telemetry device reports itself with.
//   - ID: a UUID used for groups, memberships, permissions and accounts.
//   - AccountID: the identifier of an account (a UUID in the current schema).
//
// # Identity
//
// Entities that carry an identifier implement Identifiable. Two values with
// the same identity are the same logical entity even when their other fields
// differ (a stale copy is still the same device):
//
//	ident.Same(deviceA, deviceB) // compares DeviceURNs only
//	byID := ident.Index(devices) // map[DeviceURN]Device
package ident
