package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/handlers/start"
	"alpools-bot/internal/notify"
)

// newNotification fills in who the notification is about.
func newNotification(kind notify.Kind, user *tgbotapi.User) notify.Notification {
	n := notify.Notification{Kind: kind, CreatedAt: time.Now()}
	if user != nil {
		n.UserID = user.ID
		n.DisplayName = start.DisplayName(user)
		n.Username = user.UserName
	}
	return n
}

// notifyManagers delivers n. A failed delivery is logged and never reaches
// the user: the request is already accepted.
func (b *Bot) notifyManagers(ctx context.Context, n notify.Notification) {
	if err := b.notifier.Notify(ctx, n); err != nil {
		b.logger.Error("Failed to notify managers",
			zap.String("kind", string(n.Kind)),
			zap.Int64("user_id", n.UserID),
			zap.Error(err))
		return
	}
	b.logger.Info("Managers notified",
		zap.String("kind", string(n.Kind)),
		zap.Int64("user_id", n.UserID))
}

// rememberPhone keeps the last phone the user gave for later leads.
func (b *Bot) rememberPhone(ctx context.Context, chatID int64, user *tgbotapi.User, phone string) {
	if user == nil || phone == "" {
		return
	}
	if err := b.state.RememberUser(ctx, chatID, start.DisplayName(user), user.UserName, &phone); err != nil {
		b.logger.Warn("Failed to remember user phone",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
