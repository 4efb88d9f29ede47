package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tOgg1/scrollback/internal/models"
)

var seedWords = strings.Fields(`the a deploy build log queue worker timeline scroll
	select message photo album review merge branch cache index shard replica
	latency spike rollback patch tomorrow today later maybe sure thanks done
	looks good ship it broken again fixed retry timeout lunch coffee meeting`)

// SeedOptions controls synthetic history generation.
type SeedOptions struct {
	// Live and Migrated are the message counts per history.
	Live     int
	Migrated int
	// Authors take turns writing; defaults to a small cast.
	Authors []string
	// Start is the timestamp of the oldest message.
	Start time.Time
	// Seed makes the output reproducible.
	Seed uint64
}

// SeedResult reports what was written.
type SeedResult struct {
	Live     int
	Migrated int
	Groups   int
}

// Seed writes a synthetic conversation. The last migrated message and the
// first live one form the junction pair shown once by the history view.
func Seed(ctx context.Context, db *DB, opts SeedOptions) (SeedResult, error) {
	if len(opts.Authors) == 0 {
		opts.Authors = []string{"ann", "bob", "cyd"}
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().UTC().AddDate(0, 0, -7)
	}

	var nextGroup int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(group_id), 0) FROM messages`).Scan(&nextGroup); err != nil {
		return SeedResult{}, fmt.Errorf("failed to read group ids: %w", err)
	}

	gen := &seeder{
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		opts:  opts,
		at:    opts.Start,
		group: nextGroup,
	}
	msgs := gen.history(models.HistoryMigrated, opts.Migrated)
	live := gen.history(models.HistoryLive, opts.Live)
	if len(msgs) > 0 && len(live) > 0 {
		last := msgs[len(msgs)-1]
		first := live[0]
		last.MigrateMarker = true
		first.MigrateMarker = true
		first.CreatedAt = last.CreatedAt.Add(time.Second)
	}
	msgs = append(msgs, live...)

	repo := NewMessageRepository(db)
	err := db.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		for _, msg := range msgs {
			if err := repo.CreateWithTx(ctx, tx, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to seed messages: %w", err)
	}
	db.logger.Info().
		Int("live", opts.Live).
		Int("migrated", opts.Migrated).
		Int64("groups", gen.group-nextGroup).
		Msg("seeded history")
	return SeedResult{Live: opts.Live, Migrated: opts.Migrated, Groups: int(gen.group - nextGroup)}, nil
}

type seeder struct {
	rng   *rand.Rand
	opts  SeedOptions
	at    time.Time
	group int64
}

func (s *seeder) history(history models.History, n int) []*models.Message {
	out := make([]*models.Message, 0, n)
	for len(out) < n {
		s.at = s.at.Add(time.Duration(10+s.rng.IntN(2400)) * time.Second)
		author := s.opts.Authors[s.rng.IntN(len(s.opts.Authors))]

		switch roll := s.rng.IntN(20); {
		case roll == 0:
			out = append(out, &models.Message{
				History:   history,
				Kind:      models.MessageKindService,
				Author:    author,
				Body:      author + " changed the topic",
				CreatedAt: s.at,
			})
		case roll == 1 && n-len(out) >= 3:
			s.group++
			for i := 0; i < 3; i++ {
				out = append(out, &models.Message{
					History:    history,
					Kind:       models.MessageKindPhoto,
					Author:     author,
					Body:       fmt.Sprintf("photo %d/3 %s", i+1, s.sentence(3)),
					GroupID:    s.group,
					CanForward: true,
					CanDelete:  true,
					CreatedAt:  s.at.Add(time.Duration(i) * time.Second),
				})
			}
		default:
			msg := &models.Message{
				History:    history,
				Kind:       models.MessageKindText,
				Author:     author,
				Body:       s.sentence(3 + s.rng.IntN(40)),
				CanForward: true,
				CanDelete:  s.rng.IntN(4) != 0,
				CreatedAt:  s.at,
			}
			if s.rng.IntN(12) == 0 {
				msg.Link = fmt.Sprintf("https://example.org/%s/%d", author, s.rng.IntN(1000))
				msg.Body += " " + msg.Link
			}
			out = append(out, msg)
		}
	}
	return out
}

func (s *seeder) sentence(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = seedWords[s.rng.IntN(len(seedWords))]
	}
	return strings.Join(parts, " ")
}
