package models

import "time"

// MatchState is the lifecycle state of an introduction offer.
type MatchState string

const (
	// MatchPending: the candidate has been notified and has not answered.
	MatchPending MatchState = "pending"
	// MatchAccepted and MatchDeclined are terminal and immutable.
	MatchAccepted MatchState = "accepted"
	MatchDeclined MatchState = "declined"
)

// Match is an introduction offer from a requester to a candidate ("pair").
// Language and SearchLanguage snapshot the requester's profile at offer
// time; the live profile may change while the offer is pending.
type Match struct {
	ID     string
	UserID string // requester
	PairID string // candidate

	Language       string
	SearchLanguage string

	State MatchState

	// Offer message sent to the candidate, kept so the answer can be
	// delivered by editing it in place.
	ChatID    int64
	MessageID int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the match has reached a final state.
func (m *Match) Terminal() bool {
	return m.State == MatchAccepted || m.State == MatchDeclined
}
