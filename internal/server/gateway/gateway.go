// Package gateway defines the message-delivery port consumed by the
// matchmaking core. Adapters for a concrete chat transport live elsewhere;
// the core only depends on this interface and its sentinel errors.
package gateway

import (
	"context"
	"errors"
)

// ErrUnreachable reports that the recipient cannot receive messages at all
// (e.g. they blocked the bot). The matchmaking loop treats this as a signal
// to pause the recipient, not as a delivery retry case.
var ErrUnreachable = errors.New("recipient unreachable")

// MessageRef identifies a delivered message so it can be edited later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is one inline action offered to the recipient.
type Button struct {
	Label string
	Data  string
}

// Gateway delivers messages to end users.
type Gateway interface {
	// Notify sends a message with inline action buttons and returns a
	// reference to the delivered message.
	Notify(ctx context.Context, chatID int64, text string, actions []Button) (MessageRef, error)

	// Send delivers a plain message.
	Send(ctx context.Context, chatID int64, text string) error

	// Edit replaces the text (and drops the buttons) of a previously
	// delivered message.
	Edit(ctx context.Context, ref MessageRef, text string) error
}
