package start

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type StateManager interface {
	RememberUser(ctx context.Context, chatID int64, displayName, username string, phone *string) error
	ResetDialogState(ctx context.Context, chatID int64) error
}

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
