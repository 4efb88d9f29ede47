package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/store"
	"github.com/tOgg1/scrollback/internal/tui"
)

// errNoTerminal is returned when the history view cannot take over a terminal.
var errNoTerminal = errors.New("the history view needs an interactive terminal; try `scrollback stats` instead")

func newViewCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the history view (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, a, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "newest messages to load per history (0 loads all)")
	return cmd
}

func runView(cmd *cobra.Command, a *app, limit int) error {
	if !hasTTY() {
		return errNoTerminal
	}
	ctx := cmd.Context()
	db, err := openStore(cmd, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewMessageRepository(db)
	history, err := tui.LoadHistory(ctx, repo, a.cfg, limit)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	logger.Info().
		Int("messages", history.Len()).
		Str("database", db.Path()).
		Msg("history loaded")

	return tui.Run(tui.Options{
		Config:   a.cfg,
		History:  history,
		Repo:     repo,
		State:    config.StateStoreFor(a.cfg),
		Database: db.Path(),
	})
}

func openStore(cmd *cobra.Command, cfg *config.Config) (*store.DB, error) {
	return store.Open(cmd.Context(), cfg.DatabasePath(), store.Options{
		BusyTimeoutMs:  cfg.Database.BusyTimeoutMs,
		MaxConnections: cfg.Database.MaxConnections,
	})
}
