package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/handlers/start"
	"alpools-bot/internal/bot/keyboards"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	command := msg.Command()

	b.logger.Debug("Processing command",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("command", command))

	if handler, exists := b.commands[command]; exists {
		handler(ctx, msg)
		return
	}
	b.handleUnknownCommand(ctx, msg)
}

func (b *Bot) handleDefault(_ context.Context, msg *tgbotapi.Message) {
	b.sendHTML(msg.Chat.ID, msgFallback, keyboards.MainMenu())
}

func (b *Bot) handleUnknownCommand(_ context.Context, msg *tgbotapi.Message) {
	b.sendError(msg.Chat.ID, msgUnknownCommand)
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message) {
	b.sendMessage(tgbotapi.NewMessage(msg.Chat.ID, helpText))
}

func (b *Bot) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	b.start.ShowMainMenu(ctx, msg.Chat.ID, msgCancelled)
}

func (b *Bot) backToMenu(ctx context.Context, msg *tgbotapi.Message) {
	b.start.ShowMainMenu(ctx, msg.Chat.ID, start.MenuMsg)
}
