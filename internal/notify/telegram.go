package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of the bot API used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends notifications to the configured admin chats and channel.
type Telegram struct {
	sender     Sender
	admins     []int64
	recipients []int64
	logger     *zap.Logger
}

func NewTelegram(sender Sender, adminIDs []int64, channelID int64, logger *zap.Logger) *Telegram {
	var admins []int64
	for _, id := range adminIDs {
		if id != 0 {
			admins = append(admins, id)
		}
	}
	recipients := append([]int64{}, admins...)
	if channelID != 0 {
		recipients = append(recipients, channelID)
	}
	if len(recipients) == 0 {
		logger.Warn("Admin notifications disabled - no recipients configured")
	}
	return &Telegram{sender: sender, admins: admins, recipients: recipients, logger: logger}
}

func (t *Telegram) Notify(_ context.Context, n Notification) error {
	text := Format(n)

	var errs []error
	for _, chatID := range t.recipients {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := t.sender.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("send to %d: %w", chatID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("notify.Telegram: %w", err)
	}
	return nil
}

// IsAdmin reports whether the user is one of the configured admins.
func (t *Telegram) IsAdmin(userID int64) bool {
	for _, id := range t.admins {
		if id == userID {
			return true
		}
	}
	return false
}
