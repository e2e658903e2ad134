package models

import (
	"strings"
	"time"
)

// User is a bot participant. A record is created on first contact with the
// bot (upsert semantics) and is never hard-deleted: Pause substitutes for
// deactivation.
//
// Language is the user's native language and SearchLanguage the one they
// want to practice; both are empty until set. A user with no native
// language cannot be matched or searched.
type User struct {
	ID         string
	TelegramID int64

	// Display fields refreshed from the transport on every contact.
	FirstName    *string
	LastName     *string
	Username     *string
	LanguageCode *string

	Language       string
	SearchLanguage string

	Pause bool

	// CurrentRequest references the outstanding inbound offer, if any.
	// Cleared when the offer is resolved.
	CurrentRequest *string

	CreatedAt   time.Time
	LastUpdated time.Time
}

// Outreach is one historical outbound offer: whom the user was matched
// against and for which search language. Append-only; duplicates are
// tolerated since exclusion is computed as a set.
type Outreach struct {
	PeerID   string
	Language string
	SentAt   time.Time
}

// DisplayName returns the username when present, otherwise the first and
// last name joined with a space.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}

	parts := make([]string, 0, 2)
	for _, f := range []*string{u.FirstName, u.LastName} {
		if f != nil && *f != "" {
			parts = append(parts, *f)
		}
	}
	return strings.Join(parts, " ")
}

// Matchable reports whether the user can take part in matching at all:
// both languages set, different from each other, and not paused.
func (u *User) Matchable() bool {
	return u.Language != "" &&
		u.SearchLanguage != "" &&
		u.Language != u.SearchLanguage &&
		!u.Pause
}
