//go:build !scrollbackdebug

package assert

// Debug reports whether invariant violations are fatal.
const Debug = false

func violated(msg string) {
	logViolation(msg)
}
