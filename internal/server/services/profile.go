package services

import (
	"context"
	"database/sql"

	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/repomanager"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
)

// Profile maintains user records: registration on first contact and
// language preferences afterwards.
type Profile struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewProfile(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *Profile {
	return &Profile{db: db, repos: repos, logger: logger}
}

// Touch upserts the user from the transport-provided identity. Called on
// every inbound message so display fields stay fresh.
func (s *Profile) Touch(ctx context.Context, p *users.TelegramProfile) (*models.User, error) {
	return s.repos.Users(s.db).Upsert(ctx, p)
}

// Get looks up the stored record for a transport identity without creating
// one. Callback answers go through here: an offer can only reach a user who
// is already registered, so common.ErrorNotFound signals a stale or forged
// callback.
func (s *Profile) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByTelegramID(ctx, telegramID)
}

// SetNativeLanguage records the language the user can help others practice.
func (s *Profile) SetNativeLanguage(ctx context.Context, user *models.User, language string) error {
	if err := s.repos.Users(s.db).SetNativeLanguage(ctx, user.ID, language); err != nil {
		return err
	}
	user.Language = language
	s.logger.Info(ctx, "native language set", "user", user.ID, "language", language)
	return nil
}

// SetSearchLanguage records the language the user wants to practice and
// lifts any pause, then reports how many native speakers of that language
// are registered so the user knows the size of the pool.
func (s *Profile) SetSearchLanguage(ctx context.Context, user *models.User, language string) (int64, error) {
	repo := s.repos.Users(s.db)
	if err := repo.SetSearchLanguage(ctx, user.ID, language); err != nil {
		return 0, err
	}
	user.SearchLanguage = language
	user.Pause = false
	s.logger.Info(ctx, "search language set", "user", user.ID, "language", language)

	return repo.CountByLanguage(ctx, language)
}
