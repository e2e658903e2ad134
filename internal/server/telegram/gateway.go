// Package telegram adapts the Telegram Bot API to the delivery gateway port.
package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/gateway"
)

// sender is the subset of *tgbotapi.BotAPI the gateway needs; widened to an
// interface so delivery failures can be simulated in tests.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Gateway implements gateway.Gateway over the Telegram Bot API.
type Gateway struct {
	api    sender
	logger logging.Logger
}

func NewGateway(api sender, logger logging.Logger) *Gateway {
	return &Gateway{
		api:    api,
		logger: logger.With("module", "telegram_gateway"),
	}
}

func (g *Gateway) Notify(ctx context.Context, chatID int64, text string, actions []gateway.Button) (gateway.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if len(actions) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
		for _, a := range actions {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Data))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}

	sent, err := g.api.Send(msg)
	if err != nil {
		return gateway.MessageRef{}, g.mapError(ctx, chatID, err)
	}

	return gateway.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (g *Gateway) Send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := g.api.Send(msg); err != nil {
		return g.mapError(ctx, chatID, err)
	}
	return nil
}

func (g *Gateway) Edit(ctx context.Context, ref gateway.MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown

	if _, err := g.api.Send(edit); err != nil {
		return g.mapError(ctx, ref.ChatID, err)
	}
	return nil
}

// mapError translates Telegram API failures into gateway sentinels. A 403
// means the user blocked the bot or deleted their account: the chat is gone
// for good, which the core handles by pausing the user.
func (g *Gateway) mapError(ctx context.Context, chatID int64, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		g.logger.Info(ctx, "recipient unreachable", "chat_id", chatID, "reason", apiErr.Message)
		return fmt.Errorf("%w: %s", gateway.ErrUnreachable, apiErr.Message)
	}
	return fmt.Errorf("telegram send failed: %w", err)
}
