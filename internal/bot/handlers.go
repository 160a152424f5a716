package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleStart handles the /start command
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	text := "👋 *Night Lock*\n\n" +
		FormatSchedule(b.store.Get()) +
		"\n\nChoose an action:"
	return b.sendMessage(message.Chat.ID, text, BuildMainMenuButtons())
}

// handleHelp handles the /help command
func (b *Bot) handleHelp(ctx context.Context, message *tgbotapi.Message) error {
	return b.sendMessage(message.Chat.ID, FormatHelp(), nil)
}

// handleSetLocked locks or unlocks the group on request. Failures are
// reported back to the requester.
func (b *Bot) handleSetLocked(ctx context.Context, chatID int64, locked bool) error {
	if err := b.actuator.SetLocked(ctx, locked); err != nil {
		b.logger.Error("Manual permission change failed",
			"locked", locked,
			"error", err,
		)
		return b.sendMessage(chatID, FormatActuationFailed(locked, err), BuildMainMenuButtons())
	}

	// The notice already went to the group
	if chatID == b.chatID {
		return nil
	}

	return b.sendMessage(chatID, FormatActuationDone(locked), BuildMainMenuButtons())
}

// handleStatus reports the schedule and the registered triggers
func (b *Bot) handleStatus(ctx context.Context, chatID int64, messageID int) error {
	now := b.now()

	triggers := b.triggers.Triggers(now)
	text := FormatStatus(b.store.Get(), b.timezone, now, triggers)

	return b.respond(chatID, messageID, text, BuildMainMenuButtons())
}
