package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/internal/wizard"
)

func (b *Bot) startCostEstimate(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	state, err := b.state.EnterFlow(ctx, chatID, flowCost, stageWizard)
	if err != nil {
		b.logger.Error("Failed to start cost estimate",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}

	session := wizard.NewSession(b.costCatalog)
	res := session.Start()
	snap := session.Snapshot()
	state.Wizard = &snap

	b.logger.Info("Cost estimate started", zap.Int64("chat_id", chatID))

	b.showPresentation(chatID, keyboards.ScopeCost, state, *res.Presentation)
	b.saveState(ctx, chatID, state)
}

func (b *Bot) handleCostText(ctx context.Context, msg *tgbotapi.Message, state *redis.UserState) {
	ev := wizard.Event{Type: wizard.EventText, Value: msg.Text}
	b.applyCostEvent(ctx, msg.Chat.ID, msg.From, nil, state, ev)
}

func (b *Bot) handleCostCallback(ctx context.Context, chatID int64, callback *tgbotapi.CallbackQuery, cb keyboards.Callback, state *redis.UserState) {
	ev, ok := eventFromCallback(cb)
	if !ok {
		b.answerCallback(callback.ID, "", false)
		return
	}
	b.applyCostEvent(ctx, chatID, callback.From, callback, state, ev)
}

func (b *Bot) applyCostEvent(
	ctx context.Context,
	chatID int64,
	user *tgbotapi.User,
	callback *tgbotapi.CallbackQuery,
	state *redis.UserState,
	ev wizard.Event,
) {
	session, res, err := applyEvent(b.costCatalog, state, ev)
	if err != nil {
		if !b.reportStepError(chatID, callback, err) {
			b.finishFlow(ctx, chatID, state, msgCostCancelled)
		}
		return
	}
	if callback != nil {
		b.answerCallback(callback.ID, "", false)
	}

	switch {
	case res.Cancelled:
		b.logger.Info("Cost estimate cancelled", zap.Int64("chat_id", chatID))
		b.finishFlow(ctx, chatID, state, msgCostCancelled)

	case res.Escalation != nil:
		n := newNotification(notify.KindEscalation, user)
		n.Step = stepTitle(b.costCatalog, res.Escalation.StepKey)
		if state.Userdata != nil {
			n.Phone = orEmpty(state.Userdata.PhoneNumber)
		}
		b.notifyManagers(ctx, n)
		b.sendHTML(chatID, msgEscalated, nil)

	case res.Completed:
		b.completeCostEstimate(ctx, chatID, user, state, session.Answers())

	case res.StepChanged:
		b.showPresentation(chatID, keyboards.ScopeCost, state, *res.Presentation)
		b.saveState(ctx, chatID, state)

	case res.Presentation != nil:
		if callback != nil {
			b.refreshPresentation(chatID, callbackMessageID(callback), keyboards.ScopeCost, *res.Presentation)
		}
		b.saveState(ctx, chatID, state)
	}
}

func (b *Bot) completeCostEstimate(ctx context.Context, chatID int64, user *tgbotapi.User, state *redis.UserState, answers *wizard.Answers) {
	est := wizard.BuildEstimate(b.costCatalog, answers)

	n := newNotification(notify.KindEstimate, user)
	n.Phone, _ = answers.Text(wizard.StepPhone)
	n.Email, _ = answers.Text(wizard.StepEmail)
	n.Summary = estimateSummary(est)
	b.notifyManagers(ctx, n)
	b.rememberPhone(ctx, chatID, user, n.Phone)

	b.logger.Info("Cost estimate completed",
		zap.Int64("chat_id", chatID),
		zap.Int("answers", answers.Len()))

	b.finishFlow(ctx, chatID, state, formatEstimate(est))
}
