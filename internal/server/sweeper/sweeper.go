// Package sweeper runs the periodic matching round: every interval it walks
// the users eligible for matching and attempts one outbound offer for each.
package sweeper

import (
	"context"
	"database/sql"
	"time"

	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/repomanager"
	"github.com/simplylizz/wannatalk/internal/server/services"
)

type matchmaker interface {
	AttemptMatch(ctx context.Context, requester *models.User) (services.MatchOutcome, error)
}

// Sweeper is a single non-overlapping loop: each round finishes before the
// next interval starts counting.
type Sweeper struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	mm       matchmaker
	logger   logging.Logger
	interval time.Duration
}

func New(db *sql.DB, repos repomanager.RepositoryManager, mm matchmaker,
	logger logging.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{db: db, repos: repos, mm: mm, logger: logger, interval: interval}
}

// Run sweeps immediately and then after every interval until the context is
// canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	for {
		s.sweep(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweeper stopped")
			return nil
		case <-time.After(s.interval):
		}
	}
}

// sweep attempts at most one offer per eligible user. A failure for one
// user never aborts the round for the rest.
func (s *Sweeper) sweep(ctx context.Context) {
	started := time.Now()

	eligible, err := s.repos.Users(s.db).ListMatchable(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing matchable users failed", "error", err)
		return
	}

	var offered int
	for _, user := range eligible {
		if ctx.Err() != nil {
			return
		}

		outcome, err := s.mm.AttemptMatch(ctx, user)
		if err != nil {
			s.logger.Error(ctx, "match attempt failed", "user", user.ID, "error", err)
			continue
		}
		if outcome == services.OutcomeOffered {
			offered++
		}
	}

	s.logger.Info(ctx, "sweep finished",
		"eligible", len(eligible), "offered", offered, "took", time.Since(started))
}
