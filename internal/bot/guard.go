package bot

import (
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNotAdmin is returned by authorize for restricted actions requested by anyone but the administrator
var ErrNotAdmin = errors.New("action is restricted to the administrator")

const adminOnlyNotice = "⛔ Admin only."

// public lists the commands and actions anyone may use
var public = map[string]bool{
	CommandHelp: true,
}

// authorize is the guard every update passes before its handler runs
func (b *Bot) authorize(user *tgbotapi.User, action string) error {
	if public[action] {
		return nil
	}
	if user == nil || user.ID != b.adminID {
		return ErrNotAdmin
	}
	return nil
}

// rejectMessage replies to a restricted command from a non-administrator
func (b *Bot) rejectMessage(message *tgbotapi.Message, action string) error {
	b.logger.Warn("Unauthorized access attempt",
		"user_id", message.From.ID,
		"username", message.From.UserName,
		"action", action,
	)
	b.metrics.ObserveRejection(action)

	reply := tgbotapi.NewMessage(message.Chat.ID, adminOnlyNotice)
	reply.ReplyToMessageID = message.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("Failed to send rejection", "chat_id", message.Chat.ID, "error", err)
		return err
	}
	return nil
}

// rejectCallback shows an alert to a non-administrator pressing a button
func (b *Bot) rejectCallback(callback *tgbotapi.CallbackQuery, action string) error {
	b.logger.Warn("Unauthorized access attempt",
		"user_id", callback.From.ID,
		"username", callback.From.UserName,
		"action", action,
	)
	b.metrics.ObserveRejection(action)
	b.answerCallback(callback.ID, adminOnlyNotice, true)
	return nil
}
