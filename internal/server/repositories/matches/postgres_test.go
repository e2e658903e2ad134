package matches

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_DefaultsToPending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO matches`).
		WithArgs("m1", "u1", "p1", "English", "Spanish", string(models.MatchPending),
			int64(100), 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := &models.Match{
		ID:             "m1",
		UserID:         "u1",
		PairID:         "p1",
		Language:       "English",
		SearchLanguage: "Spanish",
		ChatID:         100,
		MessageID:      7,
	}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State != models.MatchPending {
		t.Fatalf("state not defaulted: %v", m.State)
	}
	if m.CreatedAt.IsZero() || m.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM matches WHERE id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestTransition_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE matches SET state = \$2, updated_at = \$3 WHERE id = \$1 AND state = \$4`).
		WithArgs("m1", string(models.MatchAccepted), sqlmock.AnyArg(), string(models.MatchPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Transition(context.Background(), "m1", models.MatchAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransition_AlreadyResolved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE matches SET state`).
		WithArgs("m1", string(models.MatchDeclined), sqlmock.AnyArg(), string(models.MatchPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM matches WHERE id`).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "pair_id", "language", "search_language", "state",
			"chat_id", "message_id", "created_at", "updated_at",
		}).AddRow("m1", "u1", "p1", "English", "Spanish", string(models.MatchAccepted), 100, 7, now, now))

	err := repo.Transition(context.Background(), "m1", models.MatchDeclined)
	if !errors.Is(err, common.ErrAlreadyResolved) {
		t.Fatalf("want ErrAlreadyResolved, got %v", err)
	}
}

func TestTransition_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE matches SET state`).
		WithArgs("missing", string(models.MatchAccepted), sqlmock.AnyArg(), string(models.MatchPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(`SELECT .* FROM matches WHERE id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	err := repo.Transition(context.Background(), "missing", models.MatchAccepted)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestCountByState(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT state, count\(\*\) FROM matches GROUP BY state`).
		WillReturnRows(sqlmock.NewRows([]string{"state", "count"}).
			AddRow("accepted", 3).
			AddRow("declined", 1).
			AddRow("pending", 2))

	counts, err := repo.CountByState(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 3 || counts[0].State != models.MatchAccepted || counts[0].Count != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
