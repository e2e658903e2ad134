package services

import (
	"context"
	"database/sql"

	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/repomanager"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
)

const topLanguagesLimit = 10

// Overview is an operator-facing snapshot of the service.
type Overview struct {
	Users        int64                 `json:"users"`
	Pending      int64                 `json:"pending_matches"`
	Accepted     int64                 `json:"accepted_matches"`
	Declined     int64                 `json:"declined_matches"`
	TopLanguages []users.LanguageCount `json:"top_languages"`
}

// Stats computes aggregates over users and matches.
type Stats struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewStats(db *sql.DB, repos repomanager.RepositoryManager) *Stats {
	return &Stats{db: db, repos: repos}
}

func (s *Stats) Overview(ctx context.Context) (*Overview, error) {
	usersRepo := s.repos.Users(s.db)

	total, err := usersRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	byState, err := s.repos.Matches(s.db).CountByState(ctx)
	if err != nil {
		return nil, err
	}

	top, err := usersRepo.TopLanguages(ctx, topLanguagesLimit)
	if err != nil {
		return nil, err
	}

	o := &Overview{Users: total, TopLanguages: top}
	for _, sc := range byState {
		switch sc.State {
		case models.MatchPending:
			o.Pending = sc.Count
		case models.MatchAccepted:
			o.Accepted = sc.Count
		case models.MatchDeclined:
			o.Declined = sc.Count
		}
	}
	return o, nil
}
