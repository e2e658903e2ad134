// Package bot is the conversational front door: it consumes Telegram
// updates, keeps a small per-chat input state machine, and dispatches
// profile changes and offer answers into the services layer.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/simplylizz/wannatalk/internal/common"
	"github.com/simplylizz/wannatalk/internal/langs"
	"github.com/simplylizz/wannatalk/internal/logging"
	"github.com/simplylizz/wannatalk/internal/server/models"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
	"github.com/simplylizz/wannatalk/internal/server/services"
)

const longPollTimeout = 120 // seconds

// chatState tracks what kind of text input the chat is expected to send next.
type chatState int

const (
	stateIdle chatState = iota
	stateAwaitNativeLanguage
	stateAwaitSearchLanguage
)

// api is the slice of tgbotapi.BotAPI the bot consumes.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type profileService interface {
	Touch(ctx context.Context, p *users.TelegramProfile) (*models.User, error)
	Get(ctx context.Context, telegramID int64) (*models.User, error)
	SetNativeLanguage(ctx context.Context, user *models.User, language string) error
	SetSearchLanguage(ctx context.Context, user *models.User, language string) (int64, error)
}

type lifecycleService interface {
	Resolve(ctx context.Context, acting *models.User, matchID string, verdict services.Verdict) error
}

// Bot wires Telegram updates to the matchmaking core.
type Bot struct {
	api       api
	profile   profileService
	lifecycle lifecycleService
	resolver  *langs.Resolver
	logger    logging.Logger

	mu     sync.Mutex
	states map[int64]chatState
}

func New(api api, profile profileService, lifecycle lifecycleService,
	resolver *langs.Resolver, logger logging.Logger) *Bot {
	return &Bot{
		api:       api,
		profile:   profile,
		lifecycle: lifecycle,
		resolver:  resolver,
		logger:    logger,
		states:    make(map[int64]chatState),
	}
}

// Run consumes the long-poll update stream until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = longPollTimeout

	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info(ctx, "bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info(ctx, "bot stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil:
		b.handleMessage(ctx, upd.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	user, err := b.profile.Touch(ctx, profileFrom(msg.From))
	if err != nil {
		b.logger.Error(ctx, "upsert failed", "telegram_id", msg.From.ID, "error", err)
		b.replyPlain(ctx, chatID, somethingWrongText)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, cmdSetNativeLanguage):
		b.setState(chatID, stateAwaitNativeLanguage)
		b.reply(ctx, chatID, nativePromptText, tgbotapi.NewRemoveKeyboard(false))
	case strings.HasPrefix(text, cmdSetSearchLanguage):
		b.setState(chatID, stateAwaitSearchLanguage)
		b.reply(ctx, chatID, searchPromptText, tgbotapi.NewRemoveKeyboard(false))
	default:
		switch b.state(chatID) {
		case stateAwaitNativeLanguage:
			b.finishNativeLanguage(ctx, user, chatID, text)
		case stateAwaitSearchLanguage:
			b.finishSearchLanguage(ctx, user, chatID, text)
		default:
			b.greet(ctx, user, chatID)
		}
	}
}

// greet is the catch-all for chats with no expected input: a welcome for
// unknown users, a status line plus the actions keyboard otherwise.
func (b *Bot) greet(ctx context.Context, user *models.User, chatID int64) {
	if user.Language == "" {
		b.reply(ctx, chatID, welcomeText, actionsKeyboard(user))
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf(returningText, user.Language), actionsKeyboard(user))
}

func (b *Bot) finishNativeLanguage(ctx context.Context, user *models.User, chatID int64, text string) {
	lang := b.resolver.Resolve(text, true)
	if lang == "" {
		b.reply(ctx, chatID, unknownLanguageText, tgbotapi.NewRemoveKeyboard(false))
		return
	}

	if err := b.profile.SetNativeLanguage(ctx, user, lang); err != nil {
		b.logger.Error(ctx, "set native language failed", "user", user.ID, "error", err)
		b.replyPlain(ctx, chatID, somethingWrongText)
		return
	}

	b.setState(chatID, stateIdle)
	b.reply(ctx, chatID, fmt.Sprintf(nativeSetText, lang), actionsKeyboard(user))
}

func (b *Bot) finishSearchLanguage(ctx context.Context, user *models.User, chatID int64, text string) {
	lang := b.resolver.Resolve(text, true)
	if lang == "" {
		b.reply(ctx, chatID, unknownLanguageText, tgbotapi.NewRemoveKeyboard(false))
		return
	}

	count, err := b.profile.SetSearchLanguage(ctx, user, lang)
	if err != nil {
		b.logger.Error(ctx, "set search language failed", "user", user.ID, "error", err)
		b.replyPlain(ctx, chatID, somethingWrongText)
		return
	}

	b.setState(chatID, stateIdle)
	b.reply(ctx, chatID, fmt.Sprintf(searchSetText, count, lang), tgbotapi.NewRemoveKeyboard(false))
}

// handleCallback dispatches an inline-keyboard answer (accept_<id> or
// decline_<id>) into the lifecycle service.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	parts := strings.SplitN(q.Data, "_", 2)
	if len(parts) != 2 {
		b.logger.Error(ctx, "malformed callback data", "data", q.Data)
		b.answerCallback(ctx, q.ID, somethingWrongText)
		return
	}
	verdict, matchID := services.Verdict(parts[0]), parts[1]

	// An offer only ever reaches a registered user, so a plain lookup is
	// enough here; display fields are refreshed on messages instead.
	user, err := b.profile.Get(ctx, q.From.ID)
	if err != nil {
		b.logger.Error(ctx, "callback from unknown user", "telegram_id", q.From.ID, "error", err)
		b.answerCallback(ctx, q.ID, somethingWrongText)
		return
	}

	err = b.lifecycle.Resolve(ctx, user, matchID, verdict)
	switch {
	case err == nil:
		b.answerCallback(ctx, q.ID, "")
	case errors.Is(err, common.ErrAlreadyResolved):
		b.answerCallback(ctx, q.ID, alreadyAnsweredText)
	default:
		b.logger.Error(ctx, "resolve failed",
			"user", user.ID, "match", matchID, "verdict", string(verdict), "error", err)
		b.answerCallback(ctx, q.ID, somethingWrongText)
	}
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn(ctx, "callback answer failed", "error", err)
	}
}

// reply sends Markdown text with the given reply markup; delivery failures
// are logged, never propagated to the update loop.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup any) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	m.ReplyMarkup = markup
	if _, err := b.api.Send(m); err != nil {
		b.logger.Warn(ctx, "reply failed", "chat", chatID, "error", err)
	}
}

func (b *Bot) replyPlain(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn(ctx, "reply failed", "chat", chatID, "error", err)
	}
}

func (b *Bot) state(chatID int64) chatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[chatID]
}

func (b *Bot) setState(chatID int64, s chatState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == stateIdle {
		delete(b.states, chatID)
		return
	}
	b.states[chatID] = s
}

// actionsKeyboard builds the reply keyboard offered in idle state. Current
// values are appended to the labels; a user without a native language only
// sees the native-language button.
func actionsKeyboard(user *models.User) tgbotapi.ReplyKeyboardMarkup {
	if user.Language == "" {
		kb := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(cmdSetNativeLanguage)),
		)
		kb.ResizeKeyboard = true
		kb.OneTimeKeyboard = true
		return kb
	}

	searchLabel := cmdSetSearchLanguage
	if user.SearchLanguage != "" {
		searchLabel = fmt.Sprintf("%s (current: %s)", searchLabel, user.SearchLanguage)
	}

	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(
			fmt.Sprintf("%s (current: %s)", cmdSetNativeLanguage, user.Language))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(searchLabel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func profileFrom(from *tgbotapi.User) *users.TelegramProfile {
	return &users.TelegramProfile{
		TelegramID:   from.ID,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: from.LanguageCode,
	}
}
