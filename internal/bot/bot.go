package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/config"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/internal/wizard"
)

type Bot struct {
	bot      BotAPI
	logger   *zap.Logger
	state    StateManager
	drafts   DraftService
	notifier notify.Notifier
	admins   AdminChecker
	journal  LeadJournal
	start    MenuHandler
	cfg      *config.Config

	costCatalog    *wizard.Catalog
	configCatalog  *wizard.Catalog
	contactCatalog *wizard.Catalog
	pricing        wizard.PricingConfig

	dispatcher *dispatcher
	commands   map[string]func(context.Context, *tgbotapi.Message)
	menu       map[string]func(context.Context, *tgbotapi.Message)
	flows      map[string]func(context.Context, *tgbotapi.Message, *redis.UserState)
	callbacks  map[string]func(context.Context, int64, *tgbotapi.CallbackQuery, keyboards.Callback, *redis.UserState)
}

type HandlerDependencies struct {
	BotAPI   BotAPI
	Logger   *zap.Logger
	State    StateManager
	Drafts   DraftService
	Notifier notify.Notifier
	Admins   AdminChecker
	Journal  LeadJournal
	Start    MenuHandler
	Cfg      *config.Config
}

func New(deps HandlerDependencies) *Bot {
	pricing := wizard.DefaultPricing()

	b := &Bot{
		bot:      deps.BotAPI,
		logger:   deps.Logger,
		state:    deps.State,
		drafts:   deps.Drafts,
		notifier: deps.Notifier,
		admins:   deps.Admins,
		journal:  deps.Journal,
		start:    deps.Start,
		cfg:      deps.Cfg,

		costCatalog:    wizard.CostEstimateCatalog(),
		configCatalog:  wizard.ConfiguratorCatalog(pricing),
		contactCatalog: wizard.ContactCatalog(),
		pricing:        pricing,
	}

	b.dispatcher = newDispatcher(deps.Cfg.Workers, b.handleUpdate)
	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.commands = map[string]func(context.Context, *tgbotapi.Message){
		"start":   b.start.Handle,
		"help":    b.handleHelp,
		"project": b.startProject,
		"cancel":  b.handleCancel,
		"export":  b.handleExport,
	}

	b.menu = map[string]func(context.Context, *tgbotapi.Message){
		keyboards.BtnCostEstimate: b.startCostEstimate,
		keyboards.BtnDownloadTZ:   b.sendTZDocument,
		keyboards.BtnProject:      b.startProject,
		keyboards.BtnPortfolio:    b.showPortfolio,
		keyboards.BtnConfigurator: b.startConfigurator,
		keyboards.BtnConsultation: b.requestConsultation,
		keyboards.BtnContacts:     b.showContacts,
		keyboards.BtnBackToMenu:   b.backToMenu,
	}

	b.flows = map[string]func(context.Context, *tgbotapi.Message, *redis.UserState){
		flowCost:         b.handleCostText,
		flowConfigurator: b.handleConfiguratorText,
		flowProject:      b.handleProjectText,
		flowConsult:      b.handleConsultText,
	}

	b.callbacks = map[string]func(context.Context, int64, *tgbotapi.CallbackQuery, keyboards.Callback, *redis.UserState){
		keyboards.ScopeCost:   b.handleCostCallback,
		keyboards.ScopeConfig: b.handleConfiguratorCallback,
		keyboards.ScopeDraft:  b.handleProjectCallback,
	}
}

// Start polls Telegram until ctx is cancelled, then waits for the updates
// already accepted.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.bot.StopReceivingUpdates()
			b.dispatcher.Wait()
			return nil

		case update, ok := <-updates:
			if !ok {
				b.dispatcher.Wait()
				return errors.New("updates channel closed")
			}
			chatID, ok := chatIDOf(update)
			if !ok {
				continue
			}
			if !b.dispatcher.Dispatch(ctx, chatID, update) {
				b.logger.Warn("Chat queue is full, update dropped",
					zap.Int64("chat_id", chatID),
					zap.Int("update_id", update.UpdateID))
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Update handler panicked",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r))
		}
	}()

	switch {
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Contact != nil {
		b.handleContact(ctx, msg)
		return
	}

	if handler, exists := b.menu[msg.Text]; exists {
		handler(ctx, msg)
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}

	if handler, exists := b.flows[state.Flow]; exists {
		handler(ctx, msg, state)
		return
	}

	if _, err := wizard.ValidatePhone(msg.Text); err == nil {
		b.submitLead(ctx, msg, msg.Text)
		return
	}

	b.handleDefault(ctx, msg)
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID, _ := chatIDOf(tgbotapi.Update{CallbackQuery: callback})

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	cb, err := keyboards.ParseCallback(callback.Data)
	if err != nil {
		b.logger.Warn("Malformed callback data",
			zap.Int64("chat_id", chatID),
			zap.String("data", callback.Data))
		b.answerCallback(callback.ID, "", false)
		return
	}

	if cb.Action == keyboards.ActionNoop {
		b.answerCallback(callback.ID, "", false)
		return
	}
	if cb.Scope == keyboards.ScopeMenu {
		b.handleMenuCallback(ctx, chatID, callback, cb)
		return
	}

	handler, exists := b.callbacks[cb.Scope]
	if !exists {
		b.answerCallback(callback.ID, "", false)
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.answerCallback(callback.ID, msgInternalError, true)
		return
	}

	if state.Flow != flowOfScope(cb.Scope) {
		b.answerCallback(callback.ID, msgStaleButton, true)
		return
	}

	handler(ctx, chatID, callback, cb, state)
}

func flowOfScope(scope string) string {
	switch scope {
	case keyboards.ScopeCost:
		return flowCost
	case keyboards.ScopeConfig:
		return flowConfigurator
	case keyboards.ScopeDraft:
		return flowProject
	}
	return ""
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) (tgbotapi.Message, bool) {
	sent, err := b.bot.Send(msg)
	if err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
		return tgbotapi.Message{}, false
	}
	return sent, true
}

// sendHTML sends text with optional markup in HTML parse mode.
func (b *Bot) sendHTML(chatID int64, text string, markup any) (tgbotapi.Message, bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return b.sendMessage(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "❌ "+text)
	b.sendMessage(msg)
}

func (b *Bot) answerCallback(callbackID, text string, alert bool) {
	cfg := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := b.bot.Request(cfg); err != nil {
		b.logger.Warn("Failed to answer callback",
			zap.String("callback_id", callbackID),
			zap.Error(err))
	}
}

// editMarkup replaces the inline keyboard of a sent message.
// callbackMessageID is zero for callbacks from inline-mode messages, which
// carry no message.
func callbackMessageID(callback *tgbotapi.CallbackQuery) int {
	if callback.Message == nil {
		return 0
	}
	return callback.Message.MessageID
}

func (b *Bot) editMarkup(chatID int64, messageID int, markup tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	if _, err := b.bot.Request(edit); err != nil {
		b.logger.Warn("Failed to edit message markup",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}

// sendStep replaces the previous step message: its buttons are removed and
// the new message becomes the chat's current one.
func (b *Bot) sendStep(chatID int64, state *redis.UserState, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	b.editMarkup(chatID, state.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	state.MessageID = 0

	var m any
	if markup != nil {
		m = *markup
	}
	if sent, ok := b.sendHTML(chatID, text, m); ok && markup != nil {
		state.MessageID = sent.MessageID
	}
}

// saveState stores the dialog state and tells the user when it could not.
func (b *Bot) saveState(ctx context.Context, chatID int64, state *redis.UserState) bool {
	if err := b.state.SetUserDialogState(ctx, chatID, state); err != nil {
		b.logger.Error("Failed to save user state",
			zap.Int64("chat_id", chatID),
			zap.String("flow", state.Flow),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return false
	}
	return true
}

// finishFlow drops the flow, keeping user data, and sends the closing HTML
// text with the main menu.
func (b *Bot) finishFlow(ctx context.Context, chatID int64, state *redis.UserState, text string) {
	b.editMarkup(chatID, state.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})

	if err := b.state.ResetDialogState(ctx, chatID); err != nil {
		b.logger.Error("Failed to reset dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.sendHTML(chatID, text, keyboards.MainMenu())
}
