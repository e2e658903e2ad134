package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/gateway"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/repomanager"
)

// Verdict is the candidate's answer to an introduction offer.
type Verdict string

const (
	VerdictAccept  Verdict = "accept"
	VerdictDecline Verdict = "decline"
)

// Lifecycle resolves pending introduction offers. State changes go through
// a compare-and-set on the pending state, so replayed or racing answers
// surface as common.ErrAlreadyResolved instead of double side effects.
type Lifecycle struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	gw     gateway.Gateway
	logger logging.Logger
}

func NewLifecycle(db *sql.DB, repos repomanager.RepositoryManager, gw gateway.Gateway, logger logging.Logger) *Lifecycle {
	return &Lifecycle{db: db, repos: repos, gw: gw, logger: logger}
}

// Resolve applies the acting user's verdict to the match. Only the user the
// offer was addressed to may resolve it; anyone else gets
// common.ErrorUnauthorized regardless of the verdict.
func (s *Lifecycle) Resolve(ctx context.Context, acting *models.User, matchID string, verdict Verdict) error {
	match, err := s.repos.Matches(s.db).Get(ctx, matchID)
	if err != nil {
		return err
	}

	if match.PairID != acting.ID {
		s.logger.Error(ctx, "resolve attempt on a foreign offer",
			"user", acting.ID, "match", match.ID, "pair", match.PairID)
		return common.ErrorUnauthorized
	}

	switch verdict {
	case VerdictAccept:
		return s.accept(ctx, acting, match)
	case VerdictDecline:
		return s.decline(ctx, acting, match)
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownVerdict, verdict)
	}
}

// accept finalizes the match and reveals the parties to each other. The
// language in both messages comes from the match snapshot, not the live
// profiles: the requester may have changed languages while the offer was
// pending.
func (s *Lifecycle) accept(ctx context.Context, candidate *models.User, match *models.Match) error {
	requester, err := s.repos.Users(s.db).GetByID(ctx, match.UserID)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Matches(tx).Transition(ctx, match.ID, models.MatchAccepted); err != nil {
			return err
		}
		return s.repos.Users(tx).SetCurrentRequest(ctx, candidate.ID, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "offer accepted", "match", match.ID, "user", match.UserID, "pair", match.PairID)

	// Contacts go out only after the transition committed; a replay loses
	// the compare-and-set above and never reaches this point.
	reqText := fmt.Sprintf(acceptedRequesterText, userLink(candidate), match.SearchLanguage)
	if err := s.gw.Send(ctx, requester.TelegramID, reqText); err != nil {
		return fmt.Errorf("notifying requester: %w", err)
	}

	pairText := fmt.Sprintf(acceptedPairText, userLink(requester), match.SearchLanguage)
	if err := s.gw.Edit(ctx, gateway.MessageRef{ChatID: match.ChatID, MessageID: match.MessageID}, pairText); err != nil {
		return fmt.Errorf("updating offer message: %w", err)
	}
	return nil
}

// decline finalizes the match, pauses the candidate so nobody else reaches
// them until they opt back in, and tells the requester without revealing
// who declined.
func (s *Lifecycle) decline(ctx context.Context, candidate *models.User, match *models.Match) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Matches(tx).Transition(ctx, match.ID, models.MatchDeclined); err != nil {
			return err
		}
		usersTx := s.repos.Users(tx)
		if err := usersTx.SetPause(ctx, candidate.ID, true); err != nil {
			return err
		}
		return usersTx.SetCurrentRequest(ctx, candidate.ID, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "offer declined", "match", match.ID, "user", match.UserID, "pair", match.PairID)

	if err := s.gw.Edit(ctx, gateway.MessageRef{ChatID: match.ChatID, MessageID: match.MessageID}, declinedPairText); err != nil {
		return fmt.Errorf("updating offer message: %w", err)
	}

	requester, err := s.repos.Users(s.db).GetByID(ctx, match.UserID)
	if err != nil {
		return err
	}
	if err := s.gw.Send(ctx, requester.TelegramID, declinedRequesterText); err != nil {
		return fmt.Errorf("notifying requester: %w", err)
	}
	return nil
}
