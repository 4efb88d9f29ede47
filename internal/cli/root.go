// Package cli implements the scrollback command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/logging"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	database   string
	logLevel   string
	logFormat  string
	logFile    string
}

// app carries what the persistent pre-run prepared for a subcommand.
type app struct {
	flags   globalFlags
	cfg     *config.Config
	logFile io.Closer
}

func newRootCmd(version string) *cobra.Command {
	a := &app{}
	view := newViewCmd(a)
	cmd := &cobra.Command{
		Use:           "scrollback",
		Short:         "Browse a chat history in the terminal",
		Long:          "scrollback lays a stored chat history into a virtualized timeline and lets you scroll, select, copy and delete messages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		Args:          cobra.NoArgs,
		RunE:          view.RunE,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(interactive(cmd)); err != nil {
				return err
			}
			logger := logging.Component("cli").With().Str("command", cmd.Name()).Logger()
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	cmd.Flags().AddFlagSet(view.Flags())

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file (default ~/.config/scrollback/config.yaml)")
	flags.StringVar(&a.flags.database, "db", "", "message database path")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug|info|warn|error")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format: console|json")
	flags.StringVar(&a.flags.logFile, "log-file", "", "write logs to this file")

	cmd.AddCommand(view, newSeedCmd(a), newStatsCmd(a))
	return cmd
}

// interactive reports whether cmd takes over the terminal.
func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "view" || !cmd.HasParent()
}

// setup loads the configuration, applies flag overrides and starts logging.
// The terminal UI owns stderr, so without a log file it logs nowhere.
func (a *app) setup(tui bool) error {
	loader := config.NewLoader()
	if a.flags.configFile != "" {
		loader.SetConfigFile(a.flags.configFile)
	}
	for key, value := range map[string]string{
		"database.path":  a.flags.database,
		"logging.level":  a.flags.logLevel,
		"logging.format": a.flags.logFormat,
		"logging.file":   a.flags.logFile,
	} {
		if value != "" {
			loader.Set(key, value)
		}
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	}
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		logCfg.Output = f
	case tui:
		logging.Discard()
		return nil
	}
	logging.Init(logCfg)
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
