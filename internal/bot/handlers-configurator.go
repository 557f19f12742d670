package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/internal/wizard"
)

const msgConfiguratorCancelled = "Расчёт отменён. Вы можете начать заново из меню."

func (b *Bot) startConfigurator(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	state, err := b.state.EnterFlow(ctx, chatID, flowConfigurator, stageWizard)
	if err != nil {
		b.logger.Error("Failed to start configurator",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}

	session := wizard.NewSession(b.configCatalog)
	res := session.Start()
	snap := session.Snapshot()
	state.Wizard = &snap
	state.Configurator = &redis.Configurator{}

	b.logger.Info("Configurator started", zap.Int64("chat_id", chatID))

	b.showPresentation(chatID, keyboards.ScopeConfig, state, *res.Presentation)
	b.saveState(ctx, chatID, state)
}

func (b *Bot) handleConfiguratorText(ctx context.Context, msg *tgbotapi.Message, state *redis.UserState) {
	if state.Stage != stageContacts {
		b.sendError(msg.Chat.ID, wizard.MsgUseButtons)
		return
	}
	b.applyContactEvent(ctx, msg.Chat.ID, msg.From, nil, state, wizard.Event{Type: wizard.EventText, Value: msg.Text})
}

func (b *Bot) handleConfiguratorCallback(ctx context.Context, chatID int64, callback *tgbotapi.CallbackQuery, cb keyboards.Callback, state *redis.UserState) {
	if state.Configurator == nil {
		b.answerCallback(callback.ID, msgStaleButton, true)
		return
	}

	if cb.Action == keyboards.ActionCancel {
		b.answerCallback(callback.ID, "", false)
		b.logger.Info("Configurator cancelled",
			zap.Int64("chat_id", chatID),
			zap.String("stage", state.Stage))
		b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)
		return
	}

	switch state.Stage {
	case stageWizard:
		b.applyConfiguratorEvent(ctx, chatID, callback, cb, state)
	case stageAttractions:
		b.handleAttractions(ctx, chatID, callback, cb, state)
	case stageQuote:
		if cb.Action != keyboards.ActionSend {
			b.answerCallback(callback.ID, msgStaleButton, true)
			return
		}
		b.answerCallback(callback.ID, "", false)
		b.requestQuoteContacts(ctx, chatID, state)
	case stageContacts:
		ev, ok := eventFromCallback(cb)
		if !ok {
			b.answerCallback(callback.ID, msgStaleButton, true)
			return
		}
		b.applyContactEvent(ctx, chatID, callback.From, callback, state, ev)
	default:
		b.answerCallback(callback.ID, msgStaleButton, true)
	}
}

func (b *Bot) applyConfiguratorEvent(ctx context.Context, chatID int64, callback *tgbotapi.CallbackQuery, cb keyboards.Callback, state *redis.UserState) {
	ev, ok := eventFromCallback(cb)
	if !ok {
		b.answerCallback(callback.ID, msgStaleButton, true)
		return
	}

	session, res, err := applyEvent(b.configCatalog, state, ev)
	if err != nil {
		if !b.reportStepError(chatID, callback, err) {
			b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)
		}
		return
	}
	b.answerCallback(callback.ID, "", false)

	switch {
	case res.Cancelled:
		b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)

	case res.Completed:
		state.Configurator.Choices = session.Answers()
		state.Configurator.Attractions = 0
		state.Stage = stageAttractions
		b.showAttractions(chatID, state)
		b.saveState(ctx, chatID, state)

	case res.StepChanged:
		b.showPresentation(chatID, keyboards.ScopeConfig, state, *res.Presentation)
		b.saveState(ctx, chatID, state)

	case res.Presentation != nil:
		b.refreshPresentation(chatID, callbackMessageID(callback), keyboards.ScopeConfig, *res.Presentation)
		b.saveState(ctx, chatID, state)
	}
}

func (b *Bot) showAttractions(chatID int64, state *redis.UserState) {
	markup := keyboards.Attractions(state.Configurator.Attractions)
	b.sendStep(chatID, state, fmt.Sprintf(msgAttractions, b.pricing.MaxAttractions), &markup)
}

func (b *Bot) handleAttractions(ctx context.Context, chatID int64, callback *tgbotapi.CallbackQuery, cb keyboards.Callback, state *redis.UserState) {
	counter := wizard.AttractionCounter{Count: state.Configurator.Attractions, Max: b.pricing.MaxAttractions}

	switch cb.Action {
	case keyboards.ActionPlus, keyboards.ActionMinus:
		var changed bool
		if cb.Action == keyboards.ActionPlus {
			changed = counter.Increment()
		} else {
			changed = counter.Decrement()
		}
		b.answerCallback(callback.ID, "", false)
		if !changed {
			return
		}
		state.Configurator.Attractions = counter.Count
		b.editMarkup(chatID, callbackMessageID(callback), keyboards.Attractions(counter.Count))
		b.saveState(ctx, chatID, state)

	case keyboards.ActionCalc:
		b.answerCallback(callback.ID, "", false)
		b.calculateQuote(ctx, chatID, state)

	case keyboards.ActionBack:
		// back to the last configurator step with the answers kept
		snap := wizard.Snapshot{
			StepIndex: b.configCatalog.Count() - 1,
			Status:    wizard.StatusActive,
			Answers:   state.Configurator.Choices,
		}
		session, err := wizard.Restore(b.configCatalog, snap)
		if err != nil {
			b.reportStepError(chatID, callback, err)
			b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)
			return
		}
		b.answerCallback(callback.ID, "", false)
		state.Wizard = &snap
		state.Stage = stageWizard
		b.showPresentation(chatID, keyboards.ScopeConfig, state, session.Present())
		b.saveState(ctx, chatID, state)

	default:
		b.answerCallback(callback.ID, msgStaleButton, true)
	}
}

func (b *Bot) calculateQuote(ctx context.Context, chatID int64, state *redis.UserState) {
	choices := state.Configurator.Choices
	if choices == nil {
		choices = wizard.NewAnswers()
	}
	poolType, _ := choices.Choice(wizard.StepPoolType)
	placement, _ := choices.Choice(wizard.StepPlacement)

	quote, err := wizard.CalculateQuote(b.pricing, wizard.QuoteRequest{
		Sections:    choices.Multi(wizard.StepSections),
		PoolType:    poolType,
		Placement:   placement,
		Attractions: state.Configurator.Attractions,
	})
	if err != nil {
		b.logger.Error("Failed to calculate quote",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)
		return
	}

	state.Configurator.Total = &quote.Total
	state.Stage = stageQuote

	b.logger.Info("Quote calculated",
		zap.Int64("chat_id", chatID),
		zap.Int64("total", quote.Total))

	markup := keyboards.QuoteActions()
	b.sendStep(chatID, state, formatQuote(quote), &markup)
	b.saveState(ctx, chatID, state)
}

func (b *Bot) requestQuoteContacts(ctx context.Context, chatID int64, state *redis.UserState) {
	session := wizard.NewSession(b.contactCatalog)
	res := session.Start()
	snap := session.Snapshot()
	state.Wizard = &snap
	state.Stage = stageContacts

	b.showPresentation(chatID, keyboards.ScopeConfig, state, *res.Presentation)
	b.saveState(ctx, chatID, state)
}

func (b *Bot) applyContactEvent(
	ctx context.Context,
	chatID int64,
	user *tgbotapi.User,
	callback *tgbotapi.CallbackQuery,
	state *redis.UserState,
	ev wizard.Event,
) {
	session, res, err := applyEvent(b.contactCatalog, state, ev)
	if err != nil {
		if !b.reportStepError(chatID, callback, err) {
			b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)
		}
		return
	}
	if callback != nil {
		b.answerCallback(callback.ID, "", false)
	}

	switch {
	case res.Cancelled:
		b.finishFlow(ctx, chatID, state, msgConfiguratorCancelled)

	case res.Completed:
		b.submitQuote(ctx, chatID, user, state, session.Answers())

	case res.StepChanged:
		b.showPresentation(chatID, keyboards.ScopeConfig, state, *res.Presentation)
		b.saveState(ctx, chatID, state)
	}
}

func (b *Bot) submitQuote(ctx context.Context, chatID int64, user *tgbotapi.User, state *redis.UserState, contacts *wizard.Answers) {
	phone, _ := contacts.Text(wizard.StepPhone)
	email, _ := contacts.Text(wizard.StepEmail)
	if email == wizard.EmailSkipped {
		email = msgEmailSkipped
	}

	choices := state.Configurator.Choices
	if choices == nil {
		choices = wizard.NewAnswers()
	}

	n := newNotification(notify.KindQuote, user)
	n.Phone = phone
	n.Email = email
	n.Summary = quoteSummary(b.configCatalog, choices, state.Configurator.Attractions)
	n.Total = state.Configurator.Total
	b.notifyManagers(ctx, n)
	b.rememberPhone(ctx, chatID, user, phone)

	b.logger.Info("Quote request submitted", zap.Int64("chat_id", chatID))

	b.finishFlow(ctx, chatID, state, msgQuoteSent)
}
