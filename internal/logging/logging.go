// Package logging builds a structured logger that callers can inject into
// the buffer pool, which hands it on to its lock manager.
package logging

import "go.uber.org/zap"

// New returns a development-style zap.Logger (human-readable, debug level)
// suitable for library callers that don't configure their own. Production
// callers are expected to construct and inject their own *zap.Logger
// instead of using this default.
func New() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Nop returns a logger that discards everything, for tests and callers
// that don't want logging.
func Nop() *zap.Logger {
	return zap.NewNop()
}
