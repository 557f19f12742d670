package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/notify"
)

func (b *Bot) isAdmin(user *tgbotapi.User) bool {
	return user != nil && b.admins.IsAdmin(user.ID)
}

// handleExport sends the lead journal workbook to an admin.
func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.isAdmin(msg.From) {
		b.logger.Warn("Export requested by non-admin",
			zap.Int64("chat_id", chatID))
		b.sendError(chatID, msgNotAdmin)
		return
	}

	data, err := b.journal.Read()
	if errors.Is(err, notify.ErrJournalEmpty) {
		b.sendMessage(tgbotapi.NewMessage(chatID, msgJournalEmpty))
		return
	}
	if err != nil {
		b.logger.Error("Failed to read lead journal", zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: b.journal.FileName(), Bytes: data})
	doc.Caption = msgJournalCap

	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send lead journal",
			zap.Int("size", len(data)),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}

	b.logger.Info("Lead journal exported",
		zap.Int64("chat_id", chatID),
		zap.Int("size", len(data)))
}
