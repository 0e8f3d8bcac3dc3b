// Package debug provides a minimal leveled logger gated by MATRIX_DEBUG.
//
// matrix has no structured-logging dependency in its lineage (the teacher
// it was grown from never reaches for zap/logrus either), so this stays a
// thin wrapper over the standard log package rather than inventing a
// dependency the surrounding ecosystem doesn't use.
package debug

import (
	"fmt"
	"log"
	"os"
)

var enabled = os.Getenv("MATRIX_DEBUG") != ""

// Enabled reports whether debug logging is turned on.
func Enabled() bool {
	return enabled
}

// SetEnabled overrides the MATRIX_DEBUG environment check, e.g. for -v.
func SetEnabled(v bool) {
	enabled = v
}

// Logf writes a debug line to stderr when debug logging is enabled.
func Logf(format string, args ...interface{}) {
	if !enabled {
		return
	}
	log.SetOutput(os.Stderr)
	log.Print(fmt.Sprintf("[debug] "+format, args...))
}
