package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nightlock/internal/core"
	"nightlock/internal/scheduler"
)

const totalSteps = 4

// escape makes free text safe inside a Markdown message
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FormatSchedule renders the two daily times
func FormatSchedule(cfg core.ScheduleConfig) string {
	return fmt.Sprintf("🔒 Lock at *%s*\n🔓 Unlock at *%s*", cfg.LockAt(), cfg.UnlockAt())
}

// FormatHelp lists the available commands
func FormatHelp() string {
	return `*Night Lock* locks the group every night and opens it again in the morning.

*Commands* (administrator only):

/start - Show the action menu
/lock - Lock the group now
/unlock - Unlock the group now
/settime - Change the lock and unlock times
/cancel - Abort a time change
/status - Show the schedule and next triggers
/help - Show this message`
}

// FormatActuationDone confirms a manual lock or unlock
func FormatActuationDone(locked bool) string {
	if locked {
		return "🔒 The group is now locked."
	}
	return "🔓 The group is now unlocked."
}

// FormatActuationFailed reports a failed manual lock or unlock
func FormatActuationFailed(locked bool, err error) string {
	action := "unlock"
	if locked {
		action = "lock"
	}
	return fmt.Sprintf("❗ Could not %s the group: %s", action, escape(err.Error()))
}

// FormatPrompt renders the current step of a reconfiguration
func FormatPrompt(session *core.Session, problem string) string {
	field, ok := session.Current()
	if !ok {
		return FormatScheduleSaved(session.Draft)
	}

	var sb strings.Builder
	if problem != "" {
		sb.WriteString(problem)
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("⏰ *Change schedule* (step %d/%d)\n\n", int(session.Step)+1, totalSteps))
	sb.WriteString(FormatSchedule(session.Draft))
	sb.WriteString(fmt.Sprintf("\n\nSend the *%s* (0-%d) or adjust it with the buttons.\n", field.Label(), field.Max()))
	sb.WriteString(fmt.Sprintf("Current value: *%d*", session.Draft.Get(field)))

	return sb.String()
}

// FormatInputError explains why the last input was rejected
func FormatInputError(session *core.Session, err error) string {
	field, _ := session.Current()

	switch {
	case errors.Is(err, core.ErrOutOfRange):
		return fmt.Sprintf("⚠️ The %s must be between 0 and %d.", field.Label(), field.Max())
	case errors.Is(err, core.ErrNotANumber):
		return fmt.Sprintf("⚠️ Please send a whole number between 0 and %d.", field.Max())
	case errors.Is(err, core.ErrStaleButton):
		return "⚠️ That button belongs to another step."
	default:
		return "⚠️ Invalid input."
	}
}

// FormatScheduleSaved summarizes a completed reconfiguration
func FormatScheduleSaved(cfg core.ScheduleConfig) string {
	return "✅ *Schedule updated*\n\n" + FormatSchedule(cfg)
}

// FormatStatus renders the schedule, the expected chat state and the triggers
func FormatStatus(cfg core.ScheduleConfig, timezone *time.Location, now time.Time, triggers []scheduler.Trigger) string {
	window := core.NewLockWindow(cfg, timezone)

	state := "unlocked"
	if window.IsLocked(now) {
		state = "locked"
	}

	var sb strings.Builder
	sb.WriteString("📊 *Status*\n\n")
	sb.WriteString(FormatSchedule(cfg))
	sb.WriteString(fmt.Sprintf("\n🌍 Timezone: %s\n\n", escape(timezone.String())))
	sb.WriteString(fmt.Sprintf("Expected state: *%s*\n", state))
	sb.WriteString(fmt.Sprintf("Next lock: %s\n", formatTime(window.NextLock(now), timezone)))
	sb.WriteString(fmt.Sprintf("Next unlock: %s\n", formatTime(window.NextUnlock(now), timezone)))
	sb.WriteString(fmt.Sprintf("Active triggers: %d", len(triggers)))

	return sb.String()
}

// formatTime formats a time in the configured timezone
func formatTime(t time.Time, timezone *time.Location) string {
	return t.In(timezone).Format("Mon 02 Jan 15:04")
}
