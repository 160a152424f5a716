package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the long polling part of *tgbotapi.BotAPI
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poll receives updates by long polling until ctx is cancelled or the
// source closes its channel. Handler errors are logged and do not stop
// the loop.
func (b *Bot) Poll(ctx context.Context, source UpdateSource, timeout int) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = timeout
	config.AllowedUpdates = []string{"message", "callback_query"}

	updates := source.GetUpdatesChan(config)
	defer source.StopReceivingUpdates()

	b.logger.Info("Polling for updates", "timeout", timeout)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				b.logger.Error("Failed to handle update",
					"update_id", update.UpdateID,
					"error", err,
				)
			}
		}
	}
}

// WebhookAPI is the raw request part of *tgbotapi.BotAPI. setWebhook goes
// through it because tgbotapi.WebhookConfig has no secret_token field.
type WebhookAPI interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// SetWebhook registers url with Telegram. A non-empty secret is echoed back
// in SecretTokenHeader on every delivery.
func (b *Bot) SetWebhook(api WebhookAPI, url, secret string) error {
	params := tgbotapi.Params{}
	params.AddNonEmpty("url", url)
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", []string{"message", "callback_query"}); err != nil {
		return fmt.Errorf("failed to build webhook params: %w", err)
	}

	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	b.logger.Info("Webhook registered", "url", url)
	return nil
}

// DeleteWebhook removes any registered webhook so long polling can run
func (b *Bot) DeleteWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
