package bot

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/draft"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/internal/wizard"
)

func (b *Bot) sendTZDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.sendFile(chatID, b.cfg.TZDocumentPath, msgTZCaption) {
		b.sendMessage(tgbotapi.NewMessage(chatID, msgFileUnavailable))
	}

	b.askPhone(ctx, chatID, msgTZFollowUp)
}

func (b *Bot) requestConsultation(ctx context.Context, msg *tgbotapi.Message) {
	b.askPhone(ctx, msg.Chat.ID, msgConsult)
}

// askPhone switches the chat to the consultation flow and offers the
// contact button.
func (b *Bot) askPhone(ctx context.Context, chatID int64, text string) {
	if _, err := b.state.EnterFlow(ctx, chatID, flowConsult, ""); err != nil {
		b.logger.Error("Failed to enter consultation flow",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.ContactRequest()
	b.sendMessage(msg)
}

func (b *Bot) showPortfolio(ctx context.Context, msg *tgbotapi.Message) {
	b.leaveFlow(ctx, msg.Chat.ID)
	b.sendMessage(tgbotapi.NewMessage(msg.Chat.ID, msgPortfolio))
}

func (b *Bot) showContacts(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.leaveFlow(ctx, chatID)

	reply := tgbotapi.NewMessage(chatID, fmt.Sprintf(companyContacts, b.cfg.SiteURL))
	reply.ReplyMarkup = keyboards.Contacts(b.cfg.SiteURL)
	reply.DisableWebPagePreview = true
	b.sendMessage(reply)

	if _, err := b.bot.Send(tgbotapi.NewLocation(chatID, officeLatitude, officeLongitude)); err != nil {
		b.logger.Warn("Failed to send office location",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// leaveFlow drops the active flow for menu sections that ask nothing.
func (b *Bot) leaveFlow(ctx context.Context, chatID int64) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil || state.Flow == "" {
		return
	}
	b.editMarkup(chatID, state.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if err := b.state.ResetDialogState(ctx, chatID); err != nil {
		b.logger.Error("Failed to reset dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleMenuCallback(ctx context.Context, chatID int64, callback *tgbotapi.CallbackQuery, cb keyboards.Callback) {
	b.answerCallback(callback.ID, "", false)

	switch cb.Action {
	case keyboards.ActionCard:
		if !b.sendFile(chatID, b.cfg.CompanyCardPath, "") {
			b.sendMessage(tgbotapi.NewMessage(chatID, msgFileUnavailable))
		}
	case keyboards.ActionConsult:
		b.askPhone(ctx, chatID, msgConsult)
	default:
		b.logger.Warn("Unknown menu action",
			zap.Int64("chat_id", chatID),
			zap.String("action", cb.Action))
	}
}

// sendFile uploads a local document. It returns false when the file is
// missing or could not be sent.
func (b *Bot) sendFile(chatID int64, path, caption string) bool {
	if _, err := os.Stat(path); err != nil {
		b.logger.Warn("Document is not available",
			zap.String("path", path),
			zap.Error(err))
		return false
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send document",
			zap.Int64("chat_id", chatID),
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	return true
}

func (b *Bot) handleConsultText(ctx context.Context, msg *tgbotapi.Message, _ *redis.UserState) {
	if _, err := wizard.ValidatePhone(msg.Text); err != nil {
		text, _ := wizard.UserMessage(err)
		b.sendError(msg.Chat.ID, text)
		return
	}
	b.submitLead(ctx, msg, msg.Text)
}

// handleContact takes a shared contact. A flow waiting for a phone gets it
// as typed text, anything else becomes a consultation lead.
func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	phone := NormalizePhoneNumber(msg.Contact.PhoneNumber)

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.submitLead(ctx, msg, phone)
		return
	}

	if b.awaitsPhone(state) {
		typed := *msg
		typed.Text = phone
		typed.Contact = nil
		b.flows[state.Flow](ctx, &typed, state)
		return
	}

	b.submitLead(ctx, msg, phone)
}

func (b *Bot) awaitsPhone(state *redis.UserState) bool {
	switch state.Flow {
	case flowProject:
		return state.Stage == stageField && state.Project != nil &&
			draft.Field(state.Project.Field) == draft.FieldPhone
	case flowCost:
		return currentStepKey(b.costCatalog, state) == wizard.StepPhone
	case flowConfigurator:
		return state.Stage == stageContacts &&
			currentStepKey(b.contactCatalog, state) == wizard.StepPhone
	}
	return false
}

func currentStepKey(catalog *wizard.Catalog, state *redis.UserState) string {
	if state.Wizard == nil {
		return ""
	}
	step, ok := catalog.StepAt(state.Wizard.StepIndex)
	if !ok {
		return ""
	}
	return step.Key
}

// submitLead sends a consultation request and returns the user to the menu.
func (b *Bot) submitLead(ctx context.Context, msg *tgbotapi.Message, phone string) {
	chatID := msg.Chat.ID
	phone = NormalizePhoneNumber(phone)

	n := newNotification(notify.KindLead, msg.From)
	n.Phone = FormatPhoneNumber(phone)
	b.notifyManagers(ctx, n)
	b.rememberPhone(ctx, chatID, msg.From, phone)

	b.logger.Info("Consultation lead submitted", zap.Int64("chat_id", chatID))

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		state = &redis.UserState{}
	}
	b.finishFlow(ctx, chatID, state, msgLeadThanks)
}
