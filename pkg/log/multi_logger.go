package log

// MultiLogger sends events to several loggers, for example console output
// via SlogAdapter and file output via FileLogger.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	kept := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &MultiLogger{loggers: kept}
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
