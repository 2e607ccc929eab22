// Package api defines the request and response envelopes exchanged with BIQ
// clients.
//
// Envelopes are flat records. Each constructor takes every required field
// so an envelope is built in one step; optional fields are pointers and are
// set with a With method. Encoding and decoding go through package wire.
package api
