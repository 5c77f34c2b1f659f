// Package logging builds the process logger.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// New returns a text logger writing to w. Debug lowers the level from
// warn to debug.
func New(w io.Writer, debug bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{
		DisableTimestamp: !debug,
		FullTimestamp:    true,
	})
	logger.SetLevel(log.WarnLevel)
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
