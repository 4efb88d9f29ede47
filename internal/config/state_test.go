package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateStoreLoadMissingFile(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "state.yaml"))

	state, err := store.Load()
	require.NoError(t, err)
	require.True(t, state.IsEmpty())
}

func TestStateStoreSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	store := NewStateStore(path)

	state := &ViewState{}
	state.SetAnchor("/tmp/a.db", 42, 3)
	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.True(t, loaded.Matches("/tmp/a.db"))
	require.False(t, loaded.Matches("/tmp/b.db"))
	require.Equal(t, int64(42), loaded.AnchorID)
	require.Equal(t, 3, loaded.AnchorOffset)

	require.NoError(t, store.Clear())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.Clear())
}

func TestStateStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("anchor_id: [oops"), 0644))

	_, err := NewStateStore(path).Load()
	require.Error(t, err)
}

func TestStateStoreFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Global.ConfigDir = "/etc/scrollback"
	require.Equal(t, "/etc/scrollback/state.yaml", StateStoreFor(cfg).Path())
}
