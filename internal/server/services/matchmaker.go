// Package services implements the matchmaking core: candidate search,
// offer delivery, offer resolution, profile upkeep, and operator-facing
// aggregates. Services own transaction boundaries; repositories stay
// single-statement.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/gateway"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/repomanager"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
)

// MatchOutcome is the result of one matching attempt for a requester.
type MatchOutcome int

const (
	// OutcomeOffered: an offer was delivered to a candidate and persisted.
	OutcomeOffered MatchOutcome = iota
	// OutcomeNoCandidate: the candidate pool for this requester is exhausted.
	OutcomeNoCandidate
)

// Matchmaker finds practice partners and delivers introduction offers.
type Matchmaker struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	gw       gateway.Gateway
	logger   logging.Logger
	attempts int
	devMode  bool
}

// NewMatchmaker constructs a Matchmaker. attempts caps how many candidates
// a single AttemptMatch call may try before giving up.
func NewMatchmaker(db *sql.DB, repos repomanager.RepositoryManager, gw gateway.Gateway,
	logger logging.Logger, attempts int, devMode bool) *Matchmaker {
	return &Matchmaker{
		db:       db,
		repos:    repos,
		gw:       gw,
		logger:   logger,
		attempts: attempts,
		devMode:  devMode,
	}
}

// AttemptMatch runs one matching round for the requester: pick a random
// eligible candidate, deliver an offer, and persist it. An unreachable
// candidate is paused and the round moves on to the next pick; the pause
// keeps the same candidate from being drawn again. Delivery errors other
// than unreachability are retried once and then abort the round.
func (s *Matchmaker) AttemptMatch(ctx context.Context, requester *models.User) (MatchOutcome, error) {
	if !requester.Matchable() && !s.devMode {
		return OutcomeNoCandidate, fmt.Errorf("%w: user %s", common.ErrNotEligible, requester.ID)
	}

	repo := s.repos.Users(s.db)
	filter := users.CandidateFilter{
		Language:    requester.SearchLanguage,
		RequesterID: requester.ID,
		AllowAny:    s.devMode,
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		candidate, err := repo.FindCandidate(ctx, filter)
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "no candidate available", "user", requester.ID, "language", filter.Language)
			return OutcomeNoCandidate, nil
		}
		if err != nil {
			return OutcomeNoCandidate, err
		}

		err = s.offer(ctx, requester, candidate)
		if err == nil {
			s.logger.Info(ctx, "offer delivered",
				"user", requester.ID, "pair", candidate.ID, "language", filter.Language)
			return OutcomeOffered, nil
		}
		if errors.Is(err, gateway.ErrUnreachable) {
			s.logger.Info(ctx, "candidate unreachable, pausing",
				"pair", candidate.ID, "attempt", attempt)
			if perr := repo.SetPause(ctx, candidate.ID, true); perr != nil {
				return OutcomeNoCandidate, perr
			}
			continue
		}
		return OutcomeNoCandidate, err
	}

	return OutcomeNoCandidate, nil
}

// offer notifies the candidate first and records the offer only after
// delivery succeeded, so a failed send leaves no pending state behind.
func (s *Matchmaker) offer(ctx context.Context, requester, candidate *models.User) error {
	matchID := uuid.NewString()
	text := fmt.Sprintf(offerText, requester.Language, requester.SearchLanguage)
	actions := []gateway.Button{
		{Label: offerAcceptLabel, Data: string(VerdictAccept) + "_" + matchID},
		{Label: offerDeclineLabel, Data: string(VerdictDecline) + "_" + matchID},
	}

	var ref gateway.MessageRef
	backoff := retry.WithMaxRetries(1, retry.NewConstant(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := s.gw.Notify(ctx, candidate.TelegramID, text, actions)
		if err != nil {
			if errors.Is(err, gateway.ErrUnreachable) {
				return err
			}
			return retry.RetryableError(err)
		}
		ref = r
		return nil
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := s.repos.Matches(tx).Create(ctx, &models.Match{
			ID:             matchID,
			UserID:         requester.ID,
			PairID:         candidate.ID,
			Language:       requester.Language,
			SearchLanguage: requester.SearchLanguage,
			State:          models.MatchPending,
			ChatID:         ref.ChatID,
			MessageID:      ref.MessageID,
		})
		if err != nil {
			return err
		}

		usersTx := s.repos.Users(tx)
		if err := usersTx.SetCurrentRequest(ctx, candidate.ID, &matchID); err != nil {
			return err
		}
		return usersTx.AppendOutreach(ctx, requester.ID, models.Outreach{
			PeerID:   candidate.ID,
			Language: requester.SearchLanguage,
			SentAt:   now,
		})
	})
}
