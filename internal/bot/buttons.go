package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nightlock/internal/core"
)

// Commands
const (
	CommandStart   = "start"
	CommandHelp    = "help"
	CommandLock    = "lock"
	CommandUnlock  = "unlock"
	CommandSetTime = "settime"
	CommandCancel  = "cancel"
	CommandStatus  = "status"
)

// Callback actions. Field buttons carry "<field>_inc", "<field>_dec" or
// "<field>_ok" and parse to ActionInput.
const (
	ActionLock    = "lock"
	ActionUnlock  = "unlock"
	ActionSetTime = "set_time"
	ActionStatus  = "status"
	ActionCancel  = "cancel"
	ActionInput   = "input"
)

var inputSuffixes = map[string]core.InputKind{
	"inc": core.InputIncrement,
	"dec": core.InputDecrement,
	"ok":  core.InputAccept,
}

// CallbackData is a parsed button token
type CallbackData struct {
	Action string
	Input  core.Input // set when Action is ActionInput
}

// ParseCallback parses the opaque token carried by an inline button
func ParseCallback(data string) (CallbackData, error) {
	switch data {
	case ActionLock, ActionUnlock, ActionSetTime, ActionStatus, ActionCancel:
		return CallbackData{Action: data}, nil
	}

	idx := strings.LastIndex(data, "_")
	if idx <= 0 {
		return CallbackData{}, fmt.Errorf("unknown callback %q", data)
	}

	field, ok := core.ParseField(data[:idx])
	if !ok {
		return CallbackData{}, fmt.Errorf("unknown field in callback %q", data)
	}
	kind, ok := inputSuffixes[data[idx+1:]]
	if !ok {
		return CallbackData{}, fmt.Errorf("unknown operation in callback %q", data)
	}

	return CallbackData{
		Action: ActionInput,
		Input:  core.Input{Kind: kind, Field: field},
	}, nil
}

// fieldToken builds the token for a field button
func fieldToken(field core.Field, op string) string {
	return field.Key() + "_" + op
}

// BuildMainMenuButtons creates the action menu
func BuildMainMenuButtons() *tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔒 Lock", ActionLock),
			tgbotapi.NewInlineKeyboardButtonData("🔓 Unlock", ActionUnlock),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Set times", ActionSetTime),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", ActionStatus),
		),
	)
	return &keyboard
}

// BuildFieldButtons creates the adjust/accept keyboard for one field
func BuildFieldButtons(field core.Field) *tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", fieldToken(field, "dec")),
			tgbotapi.NewInlineKeyboardButtonData("✅ OK", fieldToken(field, "ok")),
			tgbotapi.NewInlineKeyboardButtonData("➕", fieldToken(field, "inc")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", ActionCancel),
		),
	)
	return &keyboard
}
