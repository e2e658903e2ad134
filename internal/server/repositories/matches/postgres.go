// Package matches provides the PostgreSQL-backed storage for introduction
// offers and their lifecycle state.
package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/server/models"
)

const matchColumns = `id, user_id, pair_id, language, search_language, state,
		chat_id, message_id, created_at, updated_at`

// PostgresRepository implements match storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (id, user_id, pair_id, language, search_language, state, chat_id, message_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.State == "" {
		m.State = models.MatchPending
	}

	if _, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.PairID, m.Language, m.SearchLanguage, m.State,
		m.ChatID, m.MessageID, now,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.UserID, &m.PairID, &m.Language, &m.SearchLanguage, &m.State,
		&m.ChatID, &m.MessageID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Transition compare-and-sets state from pending to the given terminal
// state. Zero affected rows means the match either does not exist or has
// already been resolved; a follow-up lookup tells the two apart.
func (r *PostgresRepository) Transition(ctx context.Context, id string, to models.MatchState) error {
	query := `UPDATE matches SET state = $2, updated_at = $3 WHERE id = $1 AND state = $4`

	res, err := r.db.ExecContext(ctx, query, id, to, time.Now().UTC(), models.MatchPending)
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
		m, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		if m.Terminal() {
			return common.ErrAlreadyResolved
		}
		return fmt.Errorf("match %s stuck in state %s", id, m.State)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) CountByState(ctx context.Context) ([]StateCount, error) {
	query := `SELECT state, count(*) FROM matches GROUP BY state ORDER BY state`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []StateCount
	for rows.Next() {
		var sc StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
