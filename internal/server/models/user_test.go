package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "username wins",
			user: User{Username: strPtr("polyglot"), FirstName: strPtr("Anna")},
			want: "polyglot",
		},
		{
			name: "first and last name",
			user: User{FirstName: strPtr("Anna"), LastName: strPtr("K")},
			want: "Anna K",
		},
		{
			name: "first name only",
			user: User{FirstName: strPtr("Anna")},
			want: "Anna",
		},
		{
			name: "empty username ignored",
			user: User{Username: strPtr(""), FirstName: strPtr("Anna")},
			want: "Anna",
		},
		{
			name: "nothing set",
			user: User{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestMatchable(t *testing.T) {
	u := User{Language: "English", SearchLanguage: "Spanish"}
	assert.True(t, u.Matchable())

	paused := u
	paused.Pause = true
	assert.False(t, paused.Matchable())

	sameLang := u
	sameLang.SearchLanguage = "English"
	assert.False(t, sameLang.Matchable())

	noNative := u
	noNative.Language = ""
	assert.False(t, noNative.Matchable())

	noSearch := u
	noSearch.SearchLanguage = ""
	assert.False(t, noSearch.Matchable())
}

func TestMatchTerminal(t *testing.T) {
	assert.False(t, (&Match{State: MatchPending}).Terminal())
	assert.True(t, (&Match{State: MatchAccepted}).Terminal())
	assert.True(t, (&Match{State: MatchDeclined}).Terminal())
}
