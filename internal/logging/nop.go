package logging

// nopLogger discards every entry. Zero-sized, safe to share.
type nopLogger struct{}

// NewNop returns a Logger that drops all output. Used in tests and as a
// default where no logger is wired.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

// Fatal discards the entry and, unlike the zap logger, does not exit.
func (nopLogger) Fatal(string, ...Field) {}

func (n nopLogger) With(...Field) Logger { return n }

func (nopLogger) Sync() error { return nil }
