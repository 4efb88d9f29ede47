package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{" Debug ", zerolog.DebugLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitJSONComponentFields(t *testing.T) {
	prev := Logger
	t.Cleanup(func() {
		Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	logger := WithTimeline(Component("historyview"), "live")
	logger.Debug().Int64("item", 42).Msg("cancelled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "historyview", entry["component"])
	require.Equal(t, "live", entry["timeline"])
	require.Equal(t, "cancelled", entry["message"])
	require.EqualValues(t, 42, entry["item"])
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	global := FromContext(context.Background())
	global.Info().Msg("global")
	require.Contains(t, buf.String(), "global")

	buf.Reset()
	var scoped bytes.Buffer
	ctx := WithContext(context.Background(), zerolog.New(&scoped))
	logger := FromContext(ctx)
	logger.Info().Msg("scoped")
	require.Empty(t, buf.String())
	require.Contains(t, scoped.String(), "scoped")
}

func TestDiscardSilencesOutput(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	Discard()
	logger := Component("tui")
	require.NotPanics(t, func() { logger.Info().Msg("nothing") })
}
