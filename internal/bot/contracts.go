package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"alpools-bot/internal/draft"
	"alpools-bot/internal/storage/redis"
)

// BotAPI is the part of tgbotapi.BotAPI the bot talks to.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type StateManager interface {
	GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error)
	SetUserDialogState(ctx context.Context, chatID int64, state *redis.UserState) error
	EnterFlow(ctx context.Context, chatID int64, flow, stage string) (*redis.UserState, error)
	ResetDialogState(ctx context.Context, chatID int64) error
	RememberUser(ctx context.Context, chatID int64, displayName, username string, phone *string) error
}

type CommandHandler interface {
	Handle(ctx context.Context, msg *tgbotapi.Message)
}

// MenuHandler answers /start and brings the user back to the main menu.
type MenuHandler interface {
	CommandHandler
	ShowMainMenu(ctx context.Context, chatID int64, text string)
}

type DraftService interface {
	Begin(ctx context.Context, userID int64) (*draft.Draft, bool, error)
	StartOver(ctx context.Context, userID int64) (*draft.Draft, error)
	Resume(ctx context.Context, id uuid.UUID) (*draft.Draft, draft.Resolution, error)
	Answer(ctx context.Context, id uuid.UUID, field draft.Field, value any) (*draft.Draft, error)
	EnterPhase(ctx context.Context, id uuid.UUID, phase draft.Phase) (*draft.Draft, error)
	Complete(ctx context.Context, id uuid.UUID) (*draft.Draft, error)
}

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

type LeadJournal interface {
	Read() ([]byte, error)
	FileName() string
}

var _ DraftService = (*draft.Service)(nil)
