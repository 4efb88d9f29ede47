package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedThenStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	out, err := run(t, "--db", db, "--log-level", "error", "seed", "--messages", "30", "--migrated", "12", "--seed", "3")
	require.NoError(t, err)
	require.Contains(t, out, "seeded 30 live and 12 migrated messages")

	out, err = run(t, "--db", db, "--log-level", "error", "stats", "--width", "60", "--json", "--blocks")
	require.NoError(t, err)

	var report []historyStats
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report, 2)
	require.Equal(t, "migrated", report[0].History)
	require.Equal(t, 12, report[0].Stored)
	require.Equal(t, 12, report[0].Loaded)
	require.Equal(t, "live", report[1].History)
	require.Equal(t, 30, report[1].Loaded)

	for _, st := range report {
		require.NotEmpty(t, st.Blocks)
		items, top := 0, 0
		for _, b := range st.Blocks {
			require.Equal(t, top, b.Top)
			top += b.Height
			items += b.Items
		}
		require.Equal(t, st.Loaded, items)
		require.Equal(t, st.Height, top)
		require.Equal(t, 2*st.Groups, st.Hidden)
	}
}

func TestStatsTable(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	_, err := run(t, "--db", db, "--log-level", "error", "seed", "--messages", "5", "--migrated", "0")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "--log-level", "error", "stats", "--limit", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "HISTORY"))
	require.Contains(t, lines[1], "live")
	require.True(t, strings.HasSuffix(lines[1], "no"))
}

func TestSeedRejectsNegativeCounts(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	_, err := run(t, "--db", db, "seed", "--messages", "-1")
	require.Error(t, err)
}

func TestViewNeedsTerminal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	_, err := run(t, "--db", db)
	require.ErrorIs(t, err, errNoTerminal)

	_, err = run(t, "--db", db, "view", "--limit", "10")
	require.ErrorIs(t, err, errNoTerminal)
}

func TestWriteTableAlignsStyledCells(t *testing.T) {
	var out bytes.Buffer
	err := writeTable(&out, []string{"A", "B"}, [][]string{
		{"\x1b[31mred\x1b[0m", "x"},
		{"世界", "y"},
	})
	require.NoError(t, err)
	require.Equal(t, "A     B\n\x1b[31mred\x1b[0m   x\n世界  y\n", out.String())
}
