// Package notify sends optional result notifications to the user.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kyokomi/emoji/v2"
	"github.com/rs/zerolog/log"

	"github.com/1cu/kleinanzeigen-bot/internal/config"
)

// TelegramNotifier sends messages to a single configured chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier returns a notifier, or nil when the notify section is
// not configured. A nil notifier is valid and means "don't notify".
func NewTelegramNotifier(cfg *config.Notify) (*TelegramNotifier, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: cfg.TelegramChatID}, nil
}

// Name identifies the notifier in logs.
func (n *TelegramNotifier) Name() string { return "telegram" }

// Send delivers a plain-text message. Emoji shortcodes like :rocket: are
// expanded before sending.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, emoji.Sprint(text))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send Telegram notification: %w", err)
	}
	log.Debug().Int64("chat_id", n.chatID).Msg("Notification sent")
	return nil
}
