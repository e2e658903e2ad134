package sweeper

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/matches"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
	"github.com/simplylizz/wannatalk/internal/server/services"
)

type fakeUsersRepo struct {
	users.Repository

	matchable []*models.User
	err       error
}

func (f *fakeUsersRepo) ListMatchable(ctx context.Context) ([]*models.User, error) {
	return f.matchable, f.err
}

type fakeRepos struct {
	users *fakeUsersRepo
}

func (f *fakeRepos) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRepos) Users(db dbx.DBTX) users.Repository                  { return f.users }
func (f *fakeRepos) Matches(db dbx.DBTX) matches.Repository              { return nil }

type fakeMatchmaker struct {
	mu       sync.Mutex
	attempts []string
	outcome  services.MatchOutcome
	err      error
}

func (f *fakeMatchmaker) AttemptMatch(ctx context.Context, requester *models.User) (services.MatchOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, requester.ID)
	return f.outcome, f.err
}

func (f *fakeMatchmaker) attempted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attempts...)
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSweep_OneAttemptPerEligibleUser(t *testing.T) {
	db := newMockDB(t)

	repo := &fakeUsersRepo{matchable: []*models.User{
		{ID: "u1"}, {ID: "u2"}, {ID: "u3"},
	}}
	mm := &fakeMatchmaker{outcome: services.OutcomeOffered}

	s := New(db, &fakeRepos{users: repo}, mm, discardLogger(), time.Minute)
	s.sweep(context.Background())

	assert.Equal(t, []string{"u1", "u2", "u3"}, mm.attempted())
}

func TestSweep_FailureDoesNotAbortRound(t *testing.T) {
	db := newMockDB(t)

	repo := &fakeUsersRepo{matchable: []*models.User{{ID: "u1"}, {ID: "u2"}}}
	mm := &fakeMatchmaker{err: errors.New("boom")}

	s := New(db, &fakeRepos{users: repo}, mm, discardLogger(), time.Minute)
	s.sweep(context.Background())

	assert.Len(t, mm.attempted(), 2)
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	db := newMockDB(t)

	repo := &fakeUsersRepo{matchable: []*models.User{{ID: "u1"}}}
	mm := &fakeMatchmaker{outcome: services.OutcomeNoCandidate}

	s := New(db, &fakeRepos{users: repo}, mm, discardLogger(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(mm.attempted()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
