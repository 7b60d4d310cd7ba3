package logger

// NopLogger discards every log record. It is intended for tests and for
// callers that want to silence a component entirely.
type NopLogger struct {
	level Level
}

var _ Logger = (*NopLogger)(nil)

// NewNop creates a Logger that discards all records.
func NewNop() *NopLogger {
	return &NopLogger{level: ErrorLevel}
}

func (l *NopLogger) Debug(msg string, keysAndValues ...any) {}
func (l *NopLogger) Info(msg string, keysAndValues ...any)  {}
func (l *NopLogger) Warn(msg string, keysAndValues ...any)  {}
func (l *NopLogger) Error(msg string, keysAndValues ...any) {}
func (l *NopLogger) Fatal(msg string, keysAndValues ...any) {}

func (l *NopLogger) With(keyValues ...any) Logger { return l }

func (l *NopLogger) Level() Level { return l.level }

func (l *NopLogger) SetLevel(level Level) { l.level = level }
