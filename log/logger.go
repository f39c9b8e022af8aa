package log

// Logger represents an active logging object that generates lines of output.
//
// The inbox and actor pool are on the hot path and never log on success; the
// interface exists so callers can plug in zerolog, zap, or a discard logger
// without the core caring which one it is.
type Logger interface {
	// Info starts a new message with info level.
	Info(...any)
	// Infof starts a new message with info level.
	Infof(string, ...any)
	// Warn starts a new message with warn level.
	Warn(...any)
	// Warnf starts a new message with warn level.
	Warnf(string, ...any)
	// Error starts a new message with error level.
	Error(...any)
	// Errorf starts a new message with error level.
	Errorf(string, ...any)
	// Debug starts a new message with debug level.
	Debug(...any)
	// Debugf starts a new message with debug level.
	Debugf(string, ...any)
	// LogLevel returns the level the logger is currently configured at.
	LogLevel() Level
}
