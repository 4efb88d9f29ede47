package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/store"
)

func newSeedCmd(a *app) *cobra.Command {
	var opts store.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with a demo conversation",
		Long:  "seed writes a synthetic migrated history followed by a live one, with albums, service messages and day boundaries.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, a, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Live, "messages", 500, "live messages to write")
	cmd.Flags().IntVar(&opts.Migrated, "migrated", 200, "migrated messages to write")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().StringSliceVar(&opts.Authors, "authors", nil, "authors taking turns (default ann,bob,cyd)")
	return cmd
}

func runSeed(cmd *cobra.Command, a *app, opts store.SeedOptions) error {
	if opts.Live < 0 || opts.Migrated < 0 {
		return fmt.Errorf("message counts must not be negative")
	}
	db, err := openStore(cmd, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := store.Seed(cmd.Context(), db, opts)
	if err != nil {
		return err
	}
	logger := logging.FromContext(cmd.Context())
	logger.Debug().Uint64("seed", opts.Seed).Str("database", db.Path()).Msg("seed finished")
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d live and %d migrated messages (%d albums) into %s\n",
		res.Live, res.Migrated, res.Groups, db.Path())
	return nil
}
