//go:build scrollbackdebug

package assert

// Debug reports whether invariant violations are fatal.
const Debug = true

func violated(msg string) {
	logViolation(msg)
	panic("invariant violated: " + msg)
}
