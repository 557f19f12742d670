package start

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
)

const (
	welcomeMsg = "Добро пожаловать в компанию по строительству бассейнов.\n\n" +
		"Выберите интересующий раздел:"

	MenuMsg = "Выберите раздел:"
)

type StartHandler struct {
	logger       *zap.Logger
	sender       Sender
	stateManager StateManager
}

func New(
	logger *zap.Logger,
	sender Sender,
	stateManager StateManager,
) *StartHandler {
	return &StartHandler{
		logger:       logger,
		sender:       sender,
		stateManager: stateManager,
	}
}

// Handle answers /start: remembers who the user is, drops any running flow
// and shows the main menu.
func (s *StartHandler) Handle(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.From != nil {
		if err := s.stateManager.RememberUser(ctx, chatID, DisplayName(msg.From), msg.From.UserName, nil); err != nil {
			s.logger.Error("Failed to remember user",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}

	s.ShowMainMenu(ctx, chatID, welcomeMsg)
}

// ShowMainMenu resets the dialog while keeping user data and sends the menu.
func (s *StartHandler) ShowMainMenu(ctx context.Context, chatID int64, text string) {
	if err := s.stateManager.ResetDialogState(ctx, chatID); err != nil {
		s.logger.Error("Failed to reset dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		// the menu is still useful without a clean state
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.MainMenu()
	s.sendMessage(msg)
}

func (s *StartHandler) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := s.sender.Send(msg); err != nil {
		s.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

// DisplayName joins the first and last name of a Telegram user.
func DisplayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
