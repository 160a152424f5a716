package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nightlock/internal/core"
	"nightlock/internal/metrics"
	"nightlock/internal/scheduler"
)

// TelegramAPI is the part of *tgbotapi.BotAPI the bot uses
type TelegramAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TriggerLister reports the registered daily triggers
type TriggerLister interface {
	Triggers(now time.Time) []scheduler.Trigger
}

// Options holds the bot's dependencies
type Options struct {
	API      TelegramAPI
	Actuator core.PermissionSetter
	Store    *core.Store
	Flow     *core.Flow
	Triggers TriggerLister
	Metrics  *metrics.Metrics
	ChatID   int64
	AdminID  int64
	Timezone *time.Location
	Logger   *slog.Logger
}

// Bot dispatches Telegram updates
type Bot struct {
	api      TelegramAPI
	actuator core.PermissionSetter
	store    *core.Store
	flow     *core.Flow
	triggers TriggerLister
	metrics  *metrics.Metrics
	chatID   int64
	adminID  int64
	timezone *time.Location
	logger   *slog.Logger
	now      func() time.Time

	// serializes update handling so webhook delivery behaves like polling
	mu sync.Mutex
}

// NewBot creates a new bot
func NewBot(opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timezone := opts.Timezone
	if timezone == nil {
		timezone = time.UTC
	}
	return &Bot{
		api:      opts.API,
		actuator: opts.Actuator,
		store:    opts.Store,
		flow:     opts.Flow,
		triggers: opts.Triggers,
		metrics:  opts.Metrics,
		chatID:   opts.ChatID,
		adminID:  opts.AdminID,
		timezone: timezone,
		logger:   logger.With("component", "bot"),
		now:      time.Now,
	}
}

// HandleUpdate processes a Telegram update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if update.Message != nil && update.Message.From != nil {
		return b.handleMessage(ctx, update.Message)
	}

	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	// Ignore updates without user info
	return nil
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if !message.IsCommand() {
		return b.handleText(ctx, message)
	}

	command := message.Command()
	b.logger.Info("Received command",
		"user_id", message.From.ID,
		"username", message.From.UserName,
		"chat_id", message.Chat.ID,
		"command", command,
	)

	if err := b.authorize(message.From, command); err != nil {
		return b.rejectMessage(message, command)
	}

	switch command {
	case CommandStart:
		return b.handleStart(ctx, message)
	case CommandHelp:
		return b.handleHelp(ctx, message)
	case CommandLock:
		return b.handleSetLocked(ctx, message.Chat.ID, true)
	case CommandUnlock:
		return b.handleSetLocked(ctx, message.Chat.ID, false)
	case CommandSetTime:
		return b.beginReconfiguration(ctx, message.Chat.ID, message.From.ID, 0)
	case CommandCancel:
		return b.cancelReconfiguration(ctx, message.Chat.ID, message.From.ID, 0)
	case CommandStatus:
		return b.handleStatus(ctx, message.Chat.ID, 0)
	default:
		return b.sendMessage(message.Chat.ID,
			"Unknown command. Use /help to see available commands.", nil)
	}
}

// handleText feeds plain text from the administrator into an active reconfiguration
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	if message.From.ID != b.adminID {
		return nil
	}
	if _, ok := b.flow.Active(message.From.ID); !ok {
		return nil
	}

	b.logger.Info("Received reconfiguration input",
		"user_id", message.From.ID,
		"text", message.Text,
	)

	return b.handleFlowInput(ctx, message.Chat.ID, message.From.ID, 0,
		core.Input{Kind: core.InputText, Text: message.Text})
}

// handleCallback processes callback queries from inline buttons
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	b.logger.Info("Received callback",
		"user_id", callback.From.ID,
		"data", callback.Data,
	)

	data, err := ParseCallback(callback.Data)
	if err != nil {
		b.logger.Warn("Failed to parse callback data",
			"raw_data", callback.Data,
			"error", err,
		)
		b.answerCallback(callback.ID, "Unknown action.", false)
		return nil
	}

	if err := b.authorize(callback.From, data.Action); err != nil {
		return b.rejectCallback(callback, data.Action)
	}

	// Answer callback to remove loading state
	b.answerCallback(callback.ID, "", false)

	if callback.Message == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	switch data.Action {
	case ActionLock:
		return b.handleSetLocked(ctx, chatID, true)
	case ActionUnlock:
		return b.handleSetLocked(ctx, chatID, false)
	case ActionSetTime:
		return b.beginReconfiguration(ctx, chatID, callback.From.ID, messageID)
	case ActionCancel:
		return b.cancelReconfiguration(ctx, chatID, callback.From.ID, messageID)
	case ActionStatus:
		return b.handleStatus(ctx, chatID, messageID)
	case ActionInput:
		return b.handleFlowInput(ctx, chatID, callback.From.ID, messageID, data.Input)
	default:
		return b.sendMessage(chatID, "Unknown action.", nil)
	}
}

// sendMessage sends a text message
func (b *Bot) sendMessage(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	_, err := b.postMessage(chatID, text, keyboard)
	return err
}

// postMessage sends a text message and returns it
func (b *Bot) postMessage(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("Failed to send message",
			"chat_id", chatID,
			"error", err,
		)
		return tgbotapi.Message{}, fmt.Errorf("failed to send message: %w", err)
	}

	return sent, nil
}

// editMessage edits an existing message
func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to edit message",
			"chat_id", chatID,
			"message_id", messageID,
			"error", err,
		)
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// respond edits messageID when set and sends a new message otherwise
func (b *Bot) respond(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if messageID != 0 {
		return b.editMessage(chatID, messageID, text, keyboard)
	}
	return b.sendMessage(chatID, text, keyboard)
}

// answerCallback answers a callback query; failures are only logged
func (b *Bot) answerCallback(callbackID, text string, alert bool) {
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	if _, err := b.api.Request(answer); err != nil {
		b.logger.Error("Failed to answer callback", "error", err)
	}
}
