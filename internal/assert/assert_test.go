package assert

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/logging"
)

func TestCheckPassesThrough(t *testing.T) {
	require.True(t, Check(true, "never reported"))
}

func TestCheckViolation(t *testing.T) {
	prev := logging.Logger
	t.Cleanup(func() { logging.Logger = prev })

	var buf bytes.Buffer
	logging.Logger = zerolog.New(&buf)

	if Debug {
		require.Panics(t, func() { Check(false, "offset %d", 3) })
		return
	}
	require.False(t, Check(false, "offset %d", 3))
	require.Contains(t, buf.String(), "invariant violated: offset 3")
}
