package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/gateway"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/matches"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newMockDB returns a *sql.DB whose transactions are scripted; the fake
// repositories below ignore the handle, so only Begin/Commit/Rollback
// expectations matter.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeRepos struct {
	users   *fakeUsers
	matches *fakeMatches
}

func (f *fakeRepos) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (f *fakeRepos) Users(db dbx.DBTX) users.Repository                  { return f.users }
func (f *fakeRepos) Matches(db dbx.DBTX) matches.Repository              { return f.matches }

type pauseCall struct {
	ID    string
	Pause bool
}

type requestCall struct {
	ID      string
	MatchID *string
}

type outreachCall struct {
	UserID string
	Rec    models.Outreach
}

// fakeUsers is an in-memory users.Repository for service tests. Candidates
// are drawn from a queue so multi-attempt scenarios can be scripted.
type fakeUsers struct {
	byID       map[string]*models.User
	candidates []*models.User
	findErr    error

	upserted *models.User

	nativeCalls   []string
	searchCalls   []string
	pauseCalls    []pauseCall
	requestCalls  []requestCall
	outreachCalls []outreachCall

	matchable       []*models.User
	total           int64
	countByLanguage int64
	top             []users.LanguageCount

	filters []users.CandidateFilter
}

func (f *fakeUsers) Upsert(ctx context.Context, p *users.TelegramProfile) (*models.User, error) {
	return f.upserted, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	for _, u := range f.byID {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) SetNativeLanguage(ctx context.Context, id, language string) error {
	f.nativeCalls = append(f.nativeCalls, id+":"+language)
	return nil
}

func (f *fakeUsers) SetSearchLanguage(ctx context.Context, id, language string) error {
	f.searchCalls = append(f.searchCalls, id+":"+language)
	return nil
}

func (f *fakeUsers) SetPause(ctx context.Context, id string, pause bool) error {
	f.pauseCalls = append(f.pauseCalls, pauseCall{ID: id, Pause: pause})
	return nil
}

func (f *fakeUsers) SetCurrentRequest(ctx context.Context, id string, matchID *string) error {
	f.requestCalls = append(f.requestCalls, requestCall{ID: id, MatchID: matchID})
	return nil
}

func (f *fakeUsers) AppendOutreach(ctx context.Context, userID string, rec models.Outreach) error {
	f.outreachCalls = append(f.outreachCalls, outreachCall{UserID: userID, Rec: rec})
	return nil
}

func (f *fakeUsers) FindCandidate(ctx context.Context, filter users.CandidateFilter) (*models.User, error) {
	f.filters = append(f.filters, filter)
	if f.findErr != nil {
		return nil, f.findErr
	}
	if len(f.candidates) == 0 {
		return nil, common.ErrorNotFound
	}
	c := f.candidates[0]
	f.candidates = f.candidates[1:]
	return c, nil
}

func (f *fakeUsers) ListMatchable(ctx context.Context) ([]*models.User, error) {
	return f.matchable, nil
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) { return f.total, nil }

func (f *fakeUsers) CountByLanguage(ctx context.Context, language string) (int64, error) {
	return f.countByLanguage, nil
}

func (f *fakeUsers) TopLanguages(ctx context.Context, limit int) ([]users.LanguageCount, error) {
	return f.top, nil
}

type transitionCall struct {
	ID string
	To models.MatchState
}

type fakeMatches struct {
	match         *models.Match
	created       []*models.Match
	transitions   []transitionCall
	transitionErr error
	byState       []matches.StateCount
}

func (f *fakeMatches) Create(ctx context.Context, m *models.Match) error {
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMatches) Get(ctx context.Context, id string) (*models.Match, error) {
	if f.match != nil && f.match.ID == id {
		return f.match, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeMatches) Transition(ctx context.Context, id string, to models.MatchState) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.transitions = append(f.transitions, transitionCall{ID: id, To: to})
	return nil
}

func (f *fakeMatches) CountByState(ctx context.Context) ([]matches.StateCount, error) {
	return f.byState, nil
}

type notifyResult struct {
	ref gateway.MessageRef
	err error
}

type notifyCall struct {
	ChatID  int64
	Text    string
	Actions []gateway.Button
}

type sendCall struct {
	ChatID int64
	Text   string
}

type editCall struct {
	Ref  gateway.MessageRef
	Text string
}

// fakeGateway scripts Notify outcomes per call and records everything sent.
type fakeGateway struct {
	notifyResults []notifyResult
	notifies      []notifyCall
	sends         []sendCall
	edits         []editCall
	sendErr       error
	editErr       error
}

func (f *fakeGateway) Notify(ctx context.Context, chatID int64, text string, actions []gateway.Button) (gateway.MessageRef, error) {
	f.notifies = append(f.notifies, notifyCall{ChatID: chatID, Text: text, Actions: actions})
	if len(f.notifyResults) == 0 {
		return gateway.MessageRef{}, nil
	}
	r := f.notifyResults[0]
	f.notifyResults = f.notifyResults[1:]
	return r.ref, r.err
}

func (f *fakeGateway) Send(ctx context.Context, chatID int64, text string) error {
	f.sends = append(f.sends, sendCall{ChatID: chatID, Text: text})
	return f.sendErr
}

func (f *fakeGateway) Edit(ctx context.Context, ref gateway.MessageRef, text string) error {
	f.edits = append(f.edits, editCall{Ref: ref, Text: text})
	return f.editErr
}

func strptr(s string) *string { return &s }

func testRequester() *models.User {
	return &models.User{
		ID:             "11111111-1111-1111-1111-111111111111",
		TelegramID:     100,
		Username:       strptr("alice"),
		Language:       "English",
		SearchLanguage: "Spanish",
	}
}

func testCandidate() *models.User {
	return &models.User{
		ID:             "22222222-2222-2222-2222-222222222222",
		TelegramID:     200,
		Username:       strptr("bob"),
		Language:       "Spanish",
		SearchLanguage: "English",
	}
}
