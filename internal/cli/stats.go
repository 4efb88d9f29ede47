package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tOgg1/scrollback/internal/models"
	"github.com/tOgg1/scrollback/internal/store"
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/tui"
)

type statsOptions struct {
	width  int
	limit  int
	blocks bool
	json   bool
}

// historyStats describes one timeline laid out at a width.
type historyStats struct {
	History string       `json:"history"`
	Stored  int          `json:"stored"`
	Loaded  int          `json:"loaded"`
	Hidden  int          `json:"hidden"`
	Groups  int          `json:"groups"`
	Height  int          `json:"height"`
	Blocks  []blockStats `json:"blocks,omitempty"`
}

type blockStats struct {
	Index  int `json:"index"`
	Items  int `json:"items"`
	Top    int `json:"top"`
	Height int `json:"height"`
}

func newStatsCmd(a *app) *cobra.Command {
	var opts statsOptions
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print history counts and block layout",
		Long:  "stats loads both histories, lays them out for a terminal width and prints message counts, heights and optionally every block.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, a, opts)
		},
	}
	cmd.Flags().IntVar(&opts.width, "width", 80, "terminal width to lay out for")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "newest messages to load per history (0 loads all)")
	cmd.Flags().BoolVar(&opts.blocks, "blocks", false, "list every block")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, a *app, opts statsOptions) error {
	if opts.width < 1 {
		return fmt.Errorf("width must be at least 1")
	}
	ctx := cmd.Context()
	db, err := openStore(cmd, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewMessageRepository(db)
	history, err := tui.LoadHistory(ctx, repo, a.cfg, opts.limit)
	if err != nil {
		return err
	}

	var report []historyStats
	for _, tl := range []*timeline.Timeline{history.Migrated, history.Live} {
		if tl == nil {
			continue
		}
		stored, err := repo.Count(ctx, models.History(tl.Name()))
		if err != nil {
			return err
		}
		report = append(report, layoutStats(tl, stored, opts))
	}
	return writeStats(cmd.OutOrStdout(), report, opts)
}

func layoutStats(tl *timeline.Timeline, stored int, opts statsOptions) historyStats {
	st := historyStats{
		History: tl.Name(),
		Stored:  stored,
		Loaded:  tl.Len(),
		Height:  tl.ResizeToWidth(opts.width),
	}
	groups := make(map[timeline.GroupID]struct{})
	for _, b := range tl.Blocks() {
		for _, it := range b.Items() {
			if it.HiddenByGroup() {
				st.Hidden++
			}
			if it.Group != 0 {
				groups[it.Group] = struct{}{}
			}
		}
		if opts.blocks {
			st.Blocks = append(st.Blocks, blockStats{Index: b.Index(), Items: b.Len(), Top: b.Y(), Height: b.Height()})
		}
	}
	st.Groups = len(groups)
	return st
}

func writeStats(out io.Writer, report []historyStats, opts statsOptions) error {
	if opts.json {
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}
		_, err = fmt.Fprintln(out, string(payload))
		return err
	}

	rows := make([][]string, 0, len(report))
	for _, st := range report {
		rows = append(rows, []string{
			st.History,
			strconv.Itoa(st.Stored),
			strconv.Itoa(st.Loaded),
			strconv.Itoa(st.Hidden),
			strconv.Itoa(st.Groups),
			strconv.Itoa(st.Height),
			formatYesNo(st.Loaded == st.Stored),
		})
	}
	if err := writeTable(out, []string{"HISTORY", "STORED", "LOADED", "HIDDEN", "ALBUMS", "HEIGHT", "COMPLETE"}, rows); err != nil {
		return err
	}
	if !opts.blocks {
		return nil
	}

	var blockRows [][]string
	for _, st := range report {
		for _, b := range st.Blocks {
			blockRows = append(blockRows, []string{
				st.History,
				strconv.Itoa(b.Index),
				strconv.Itoa(b.Items),
				strconv.Itoa(b.Top),
				strconv.Itoa(b.Height),
			})
		}
	}
	fmt.Fprintln(out)
	return writeTable(out, []string{"HISTORY", "BLOCK", "ITEMS", "TOP", "HEIGHT"}, blockRows)
}
