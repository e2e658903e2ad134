// Package users provides the PostgreSQL-backed user directory: profile
// upserts, matching filters, and outreach history.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/server/models"
)

const userColumns = `id, telegram_id, first_name, last_name, username, language_code,
		language, search_language, pause, current_request, created_at, last_updated`

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username, &u.LanguageCode,
		&u.Language, &u.SearchLanguage, &u.Pause, &u.CurrentRequest, &u.CreatedAt, &u.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// nullIfEmpty maps "" to NULL so unknown display fields never overwrite
// stored values.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *TelegramProfile) (*models.User, error) {
	query := `
		INSERT INTO users (id, telegram_id, first_name, last_name, username, language_code, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (telegram_id)
		DO UPDATE SET
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name = COALESCE(EXCLUDED.last_name, users.last_name),
			username = COALESCE(EXCLUDED.username, users.username),
			language_code = COALESCE(EXCLUDED.language_code, users.language_code),
			last_updated = EXCLUDED.last_updated
		RETURNING ` + userColumns

	now := time.Now().UTC()
	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), p.TelegramID,
		nullIfEmpty(p.FirstName), nullIfEmpty(p.LastName),
		nullIfEmpty(p.Username), nullIfEmpty(p.LanguageCode),
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) SetNativeLanguage(ctx context.Context, id, language string) error {
	query := `UPDATE users SET language = $2, last_updated = $3 WHERE id = $1`
	return r.update(ctx, query, id, language, time.Now().UTC())
}

func (r *PostgresRepository) SetSearchLanguage(ctx context.Context, id, language string) error {
	query := `UPDATE users SET search_language = $2, pause = false, last_updated = $3 WHERE id = $1`
	return r.update(ctx, query, id, language, time.Now().UTC())
}

func (r *PostgresRepository) SetPause(ctx context.Context, id string, pause bool) error {
	query := `UPDATE users SET pause = $2, last_updated = $3 WHERE id = $1`
	return r.update(ctx, query, id, pause, time.Now().UTC())
}

func (r *PostgresRepository) SetCurrentRequest(ctx context.Context, id string, matchID *string) error {
	query := `UPDATE users SET current_request = $2, last_updated = $3 WHERE id = $1`
	return r.update(ctx, query, id, matchID, time.Now().UTC())
}

func (r *PostgresRepository) AppendOutreach(ctx context.Context, userID string, rec models.Outreach) error {
	query := `INSERT INTO outreach (user_id, peer_id, language, sent_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, userID, rec.PeerID, rec.Language, rec.SentAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindCandidate picks a uniformly random user whose native language matches
// the filter, excluding the requester and every peer the requester has
// already contacted for this language.
func (r *PostgresRepository) FindCandidate(ctx context.Context, f CandidateFilter) (*models.User, error) {
	if f.AllowAny {
		query := `SELECT ` + userColumns + ` FROM users ORDER BY random() LIMIT 1`

		user, err := scanUser(r.db.QueryRowContext(ctx, query))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, common.ErrorNotFound
			}
			return nil, fmt.Errorf("db error: %w", err)
		}
		return user, nil
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE language = $1
			AND NOT pause
			AND current_request IS NULL
			AND id <> $2
			AND NOT EXISTS (
				SELECT 1 FROM outreach
				WHERE outreach.user_id = $2
					AND outreach.peer_id = users.id
					AND outreach.language = $1
			)
		ORDER BY random()
		LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, f.Language, f.RequesterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) ListMatchable(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE language <> ''
			AND search_language <> ''
			AND language <> search_language
			AND NOT pause
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByLanguage(ctx context.Context, language string) (int64, error) {
	query := `SELECT count(*) FROM users WHERE language = $1`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, language).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) TopLanguages(ctx context.Context, limit int) ([]LanguageCount, error) {
	query := `
		SELECT language, count(*) AS cnt
		FROM users
		WHERE language <> ''
		GROUP BY language
		ORDER BY cnt DESC, language
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []LanguageCount
	for rows.Next() {
		var lc LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, err
		}
		result = append(result, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
