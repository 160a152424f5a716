package bot

import (
	"context"
	"errors"

	"nightlock/internal/core"
)

// beginReconfiguration starts the time change dialogue. messageID is the menu
// message to turn into the prompt, or 0 to send a new one.
func (b *Bot) beginReconfiguration(ctx context.Context, chatID, userID int64, messageID int) error {
	session := b.flow.Begin(userID)

	b.logger.Info("Reconfiguration started",
		"session_id", session.ID,
		"user_id", userID,
	)

	return b.prompt(chatID, messageID, session, "")
}

// cancelReconfiguration drops the user's session
func (b *Bot) cancelReconfiguration(ctx context.Context, chatID, userID int64, messageID int) error {
	if !b.flow.Cancel(userID) {
		return b.respond(chatID, messageID, "Nothing to cancel.", BuildMainMenuButtons())
	}

	b.logger.Info("Reconfiguration cancelled", "user_id", userID)
	return b.respond(chatID, messageID, "❌ Cancelled. The schedule is unchanged.", BuildMainMenuButtons())
}

// handleFlowInput feeds typed text or a field button into the user's session
func (b *Bot) handleFlowInput(ctx context.Context, chatID, userID int64, messageID int, in core.Input) error {
	session, err := b.flow.Handle(userID, in)

	switch {
	case errors.Is(err, core.ErrNoSession):
		return b.respond(chatID, messageID,
			"⌛ No time change in progress. Use /settime to start one.", BuildMainMenuButtons())

	case errors.Is(err, core.ErrReprogram):
		b.logger.Error("Failed to apply new schedule",
			"session_id", session.ID,
			"error", err,
		)
		return b.prompt(chatID, messageID, session, "❗ Could not apply the new schedule, try again.")

	case err != nil:
		b.logger.Info("Rejected reconfiguration input",
			"session_id", session.ID,
			"step", session.Step.String(),
			"error", err,
		)
		return b.prompt(chatID, messageID, session, FormatInputError(session, err))
	}

	if session.Step != core.StepDone {
		return b.prompt(chatID, messageID, session, "")
	}

	b.metrics.ObserveReconfiguration()
	b.logger.Info("Reconfiguration completed",
		"session_id", session.ID,
		"user_id", userID,
		"lock_at", session.Draft.LockAt(),
		"unlock_at", session.Draft.UnlockAt(),
	)

	return b.respond(chatID, messageID, FormatScheduleSaved(session.Draft), BuildMainMenuButtons())
}

// prompt shows the current step of the session. Typed input gets a fresh
// prompt message, which then becomes the session's keyboard message.
func (b *Bot) prompt(chatID int64, messageID int, session *core.Session, problem string) error {
	field, ok := session.Current()
	if !ok {
		return nil
	}

	text := FormatPrompt(session, problem)
	keyboard := BuildFieldButtons(field)

	if messageID != 0 {
		session.MessageID = messageID
		return b.editMessage(chatID, messageID, text, keyboard)
	}

	sent, err := b.postMessage(chatID, text, keyboard)
	if err != nil {
		return err
	}
	session.MessageID = sent.MessageID
	return nil
}
