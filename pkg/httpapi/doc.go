// Package httpapi serves the BIQ envelopes over HTTP.
//
// Request bodies are decoded with the wire codec selected by Content-Type
// (JSON unless application/cbor), and replies are encoded in the format the
// Accept header asks for. A malformed body is answered with 400 and an
// api.ErrorResponse; the decode outcome is counted per envelope and format.
//
// Routes under /api require a bearer token whose claims are token.Claims,
// signed with HS256, except /api/accounts/register and /api/accounts/login,
// which issue such tokens. Share tokens are tokens of the same kind whose
// subject is the shared device.
//
// Observations posted to /api/devices/observations/add are stored and checked
// against the device's push limits; crossed limits are published as alerts.
package httpapi
