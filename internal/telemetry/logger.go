package telemetry

import (
	"log"
	"os"
)

// Logger is a small leveled wrapper around the standard library
// logger. The coordinator uses it to warn when a table cannot be
// created or a player cannot be seated or moved; hand starts,
// eliminations, table closures and blind increases are not logged. The
// teacher repo itself reaches no further than log.Printf/fmt.Printf
// for engine events, so the coordinator keeps that register rather
// than importing a structured-logging framework the pack doesn't use
// for this kind of message.
type Logger struct {
	*log.Logger
}

// NewLogger returns a Logger writing to stderr with a fixed prefix.
func NewLogger(prefix string) *Logger {
	return &Logger{Logger: log.New(os.Stderr, prefix+" ", log.LstdFlags|log.Lmicroseconds)}
}

func (l *Logger) Info(format string, args ...any) {
	l.Printf("INFO "+format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

// Fatal logs an invariant violation (spec §7: "Invariant violation
// (implementer bug): chip non-conservation, negative chips, unknown
// state transition. Fatal — abort the affected table and surface to
// admins."). It does not call os.Exit: the caller aborts only the
// affected table, not the process.
func (l *Logger) Fatal(format string, args ...any) {
	l.Printf("FATAL "+format, args...)
}
