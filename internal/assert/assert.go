// Package assert checks engine invariants. Builds tagged scrollbackdebug panic
// on a violated invariant; release builds log the violation and let the caller
// fall through to its no-op path.
package assert

import (
	"fmt"

	"github.com/tOgg1/scrollback/internal/logging"
)

// Check reports whether cond holds. When it does not, the violation is
// reported according to the build mode and false is returned so callers can
// bail out: `if !assert.Check(ok, "...") { return }`.
func Check(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	violated(fmt.Sprintf(format, args...))
	return false
}

func logViolation(msg string) {
	logging.Logger.Warn().Str("component", "assert").Msg("invariant violated: " + msg)
}
