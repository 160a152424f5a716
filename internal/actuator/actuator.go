package actuator

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nightlock/internal/metrics"
)

var (
	ErrPermissionChange = errors.New("failed to change chat permissions")
	ErrNotice           = errors.New("failed to send confirmation notice")
)

// ChatAPI is the part of *tgbotapi.BotAPI the actuator needs
type ChatAPI interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Actuator locks and unlocks the target group chat
type Actuator struct {
	api      ChatAPI
	chatID   int64
	timezone *time.Location
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates an actuator for chatID. Notices carry the local time in timezone.
func New(api ChatAPI, chatID int64, timezone *time.Location, m *metrics.Metrics) *Actuator {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Actuator{
		api:      api,
		chatID:   chatID,
		timezone: timezone,
		metrics:  m,
		now:      time.Now,
	}
}

// ChatID returns the chat this actuator controls
func (a *Actuator) ChatID() int64 {
	return a.chatID
}

// SetLocked changes the send permission of the chat and then posts a notice
// into it. The notice is skipped when the permission change fails. No retry.
func (a *Actuator) SetLocked(ctx context.Context, locked bool) error {
	err := a.setLocked(ctx, locked)
	a.metrics.ObserveActuation(locked, err)
	return err
}

func (a *Actuator) setLocked(ctx context.Context, locked bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionChange, err)
	}

	permissions := tgbotapi.SetChatPermissionsConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: a.chatID},
		Permissions: Permissions(locked),
	}
	if _, err := a.api.Request(permissions); err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionChange, err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotice, err)
	}

	notice := tgbotapi.NewMessage(a.chatID, Notice(locked, a.now().In(a.timezone)))
	if _, err := a.api.Send(notice); err != nil {
		return fmt.Errorf("%w: %v", ErrNotice, err)
	}

	return nil
}

// Permissions returns the member permissions for the locked or unlocked state.
// Unlocked restores what an ordinary member may send; chat management stays off.
func Permissions(locked bool) *tgbotapi.ChatPermissions {
	if locked {
		return &tgbotapi.ChatPermissions{}
	}
	return &tgbotapi.ChatPermissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendPolls:          true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
	}
}

// Notice is the one-line confirmation posted into the chat
func Notice(locked bool, at time.Time) string {
	if locked {
		return fmt.Sprintf("🔒 Group locked (%s)", at.Format("15:04"))
	}
	return fmt.Sprintf("🔓 Group unlocked (%s)", at.Format("15:04"))
}
