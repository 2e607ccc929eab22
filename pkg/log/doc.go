// Package log provides codec event capture for BIQ wire documents.
//
// Every encode and decode performed by a wire.Codec can be reported to a
// Logger as an Event: which envelope, which format, how large, whether it
// failed and which deprecated keys it carried. This is separate from
// operational logging (slog); the capture is a machine-readable trace for
// debugging clients that send malformed or outdated documents.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	opts.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: append to a CBOR file
//	fl, _ := log.NewFileLogger("/var/log/biq/codec.blog")
//	opts.EventLogger = fl
//
//	// Both
//	opts.EventLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Log files are a sequence of CBOR-encoded events with integer keys. The
// biq-wire CLI reads them back with its events command.
package log
