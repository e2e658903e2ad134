package matches

import (
	"context"

	"github.com/simplylizz/wannatalk/internal/server/models"
)

// StateCount is one row of the per-state aggregate.
type StateCount struct {
	State models.MatchState
	Count int64
}

// Repository persists introduction offers. Terminal states are immutable:
// Transition compare-and-sets on the pending state, so the second of two
// racing resolves loses with common.ErrAlreadyResolved.
type Repository interface {
	Create(ctx context.Context, m *models.Match) error
	Get(ctx context.Context, id string) (*models.Match, error)

	// Transition moves the match from pending to the given terminal state.
	// Returns common.ErrAlreadyResolved when the match is no longer pending
	// and common.ErrorNotFound when it does not exist.
	Transition(ctx context.Context, id string, to models.MatchState) error

	CountByState(ctx context.Context) ([]StateCount, error)
}
