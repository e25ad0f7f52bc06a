// Package logtest provides a Logger that writes through testing.TB.
package logtest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"safehaven/internal/logger"
)

// New returns a Logger bound to t. It must not be used after t completes.
func New(t testing.TB) logger.Logger {
	return logger.Wrap(zaptest.NewLogger(t))
}
