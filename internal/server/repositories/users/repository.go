package users

import (
	"context"

	"github.com/simplylizz/wannatalk/internal/server/models"
)

// TelegramProfile carries the identity fields the transport knows about a
// user. Empty display fields mean "unknown" and never overwrite stored
// values.
type TelegramProfile struct {
	TelegramID   int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// CandidateFilter selects a practice partner for a requester: a user whose
// native language is Language, who is not paused, has no outstanding inbound
// offer, is not the requester, and has not already been contacted by the
// requester for this language. AllowAny drops every condition, so a lone
// test account can be offered to itself.
type CandidateFilter struct {
	Language    string
	RequesterID string
	AllowAny    bool
}

// LanguageCount is one row of the per-language aggregate.
type LanguageCount struct {
	Language string
	Count    int64
}

// Repository is the user directory consumed by the matchmaking core.
type Repository interface {
	// Upsert creates the user on first contact and refreshes display
	// fields and last_updated on later contacts.
	Upsert(ctx context.Context, p *TelegramProfile) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	SetNativeLanguage(ctx context.Context, id, language string) error
	// SetSearchLanguage also resets the pause flag: re-setting the search
	// language is how a user re-opens themselves to offers.
	SetSearchLanguage(ctx context.Context, id, language string) error
	SetPause(ctx context.Context, id string, pause bool) error
	SetCurrentRequest(ctx context.Context, id string, matchID *string) error

	AppendOutreach(ctx context.Context, userID string, rec models.Outreach) error

	// FindCandidate returns a uniformly random user satisfying the filter,
	// or common.ErrorNotFound when nobody qualifies.
	FindCandidate(ctx context.Context, f CandidateFilter) (*models.User, error)

	// ListMatchable returns users eligible to initiate matching: both
	// languages set, different from each other, not paused.
	ListMatchable(ctx context.Context) ([]*models.User, error)

	Count(ctx context.Context) (int64, error)
	CountByLanguage(ctx context.Context, language string) (int64, error)
	TopLanguages(ctx context.Context, limit int) ([]LanguageCount, error)
}
