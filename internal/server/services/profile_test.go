package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/matches"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
)

func TestProfile_Touch(t *testing.T) {
	db, _ := newMockDB(t)

	stored := testRequester()
	fu := &fakeUsers{upserted: stored}
	p := NewProfile(db, &fakeRepos{users: fu, matches: &fakeMatches{}}, discardLogger())

	got, err := p.Touch(context.Background(), &users.TelegramProfile{TelegramID: 100, Username: "alice"})
	require.NoError(t, err)
	assert.Same(t, stored, got)
}

func TestProfile_Get(t *testing.T) {
	db, _ := newMockDB(t)

	stored := testRequester()
	fu := &fakeUsers{byID: map[string]*models.User{stored.ID: stored}}
	p := NewProfile(db, &fakeRepos{users: fu, matches: &fakeMatches{}}, discardLogger())

	got, err := p.Get(context.Background(), stored.TelegramID)
	require.NoError(t, err)
	assert.Same(t, stored, got)

	_, err = p.Get(context.Background(), 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProfile_SetNativeLanguage(t *testing.T) {
	db, _ := newMockDB(t)

	fu := &fakeUsers{}
	p := NewProfile(db, &fakeRepos{users: fu, matches: &fakeMatches{}}, discardLogger())

	user := testRequester()
	require.NoError(t, p.SetNativeLanguage(context.Background(), user, "German"))

	assert.Equal(t, []string{user.ID + ":German"}, fu.nativeCalls)
	assert.Equal(t, "German", user.Language)
}

func TestProfile_SetSearchLanguage(t *testing.T) {
	db, _ := newMockDB(t)

	fu := &fakeUsers{countByLanguage: 17}
	p := NewProfile(db, &fakeRepos{users: fu, matches: &fakeMatches{}}, discardLogger())

	user := testRequester()
	user.Pause = true

	count, err := p.SetSearchLanguage(context.Background(), user, "French")
	require.NoError(t, err)

	assert.Equal(t, int64(17), count)
	assert.Equal(t, []string{user.ID + ":French"}, fu.searchCalls)
	assert.Equal(t, "French", user.SearchLanguage)
	assert.False(t, user.Pause)
}

func TestStats_Overview(t *testing.T) {
	db, _ := newMockDB(t)

	fu := &fakeUsers{
		total: 123,
		top: []users.LanguageCount{
			{Language: "English", Count: 80},
			{Language: "Spanish", Count: 43},
		},
	}
	fm := &fakeMatches{byState: []matches.StateCount{
		{State: models.MatchPending, Count: 3},
		{State: models.MatchAccepted, Count: 20},
		{State: models.MatchDeclined, Count: 5},
	}}

	s := NewStats(db, &fakeRepos{users: fu, matches: fm})

	o, err := s.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(123), o.Users)
	assert.Equal(t, int64(3), o.Pending)
	assert.Equal(t, int64(20), o.Accepted)
	assert.Equal(t, int64(5), o.Declined)
	assert.Len(t, o.TopLanguages, 2)
}
