package log

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter writes codec events to an slog.Logger. Successful operations
// are logged at Debug, failures and deprecated keys at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("format", event.Format),
		slog.String("envelope", event.Envelope),
		slog.Int("size", event.Size),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	level := slog.LevelDebug
	if len(event.Deprecated) > 0 {
		attrs = append(attrs, slog.String("deprecated", strings.Join(event.Deprecated, ",")))
		level = slog.LevelWarn
	}
	if event.Error != nil {
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Path != "" {
			attrs = append(attrs, slog.String("error_path", event.Error.Path))
		}
		level = slog.LevelWarn
	}

	a.logger.LogAttrs(context.Background(), level, "codec", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
