package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/internal/wizard"
)

// restoreSession rebuilds the chat's running wizard session.
func restoreSession(catalog *wizard.Catalog, state *redis.UserState) (*wizard.Session, error) {
	if state.Wizard == nil {
		return nil, fmt.Errorf("no wizard session in flow %q", state.Flow)
	}
	session, err := wizard.Restore(catalog, *state.Wizard)
	if err != nil {
		return nil, fmt.Errorf("restore wizard session: %w", err)
	}
	return session, nil
}

// applyEvent runs one event against the stored session and keeps the new
// snapshot in state. The state is not saved here.
func applyEvent(catalog *wizard.Catalog, state *redis.UserState, ev wizard.Event) (*wizard.Session, wizard.Result, error) {
	session, err := restoreSession(catalog, state)
	if err != nil {
		return nil, wizard.Result{}, err
	}

	res, err := session.Apply(ev)
	if err != nil {
		return nil, wizard.Result{}, err
	}

	snap := session.Snapshot()
	state.Wizard = &snap
	return session, res, nil
}

// eventFromCallback maps step keyboard buttons onto session events.
func eventFromCallback(cb keyboards.Callback) (wizard.Event, bool) {
	switch cb.Action {
	case keyboards.ActionSelect:
		return wizard.Event{Type: wizard.EventSelect, OptionKey: cb.Arg}, true
	case keyboards.ActionToggle:
		return wizard.Event{Type: wizard.EventToggle, OptionKey: cb.Arg}, true
	case keyboards.ActionNext:
		return wizard.Event{Type: wizard.EventControl, Action: wizard.ActionNext}, true
	case keyboards.ActionClear:
		return wizard.Event{Type: wizard.EventControl, Action: wizard.ActionClear}, true
	case keyboards.ActionBack:
		return wizard.Event{Type: wizard.EventControl, Action: wizard.ActionBack}, true
	case keyboards.ActionCancel:
		return wizard.Event{Type: wizard.EventControl, Action: wizard.ActionCancel}, true
	case keyboards.ActionEngineer:
		return wizard.Event{Type: wizard.EventControl, Action: wizard.ActionEscalate}, true
	}
	return wizard.Event{}, false
}

// showPresentation sends the step as a new message.
func (b *Bot) showPresentation(chatID int64, scope string, state *redis.UserState, p wizard.Presentation) {
	markup := keyboards.RenderStep(scope, p)
	b.sendStep(chatID, state, stepText(p), &markup)
}

// refreshPresentation redraws the keyboard of the step message in place.
func (b *Bot) refreshPresentation(chatID int64, messageID int, scope string, p wizard.Presentation) {
	b.editMarkup(chatID, messageID, keyboards.RenderStep(scope, p))
}

// reportStepError tells the user what went wrong with an event. It returns
// false for errors that are not the user's.
func (b *Bot) reportStepError(chatID int64, callback *tgbotapi.CallbackQuery, err error) bool {
	text, ok := wizard.UserMessage(err)
	if !ok {
		b.logger.Error("Wizard event failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		text = msgInternalError
	} else {
		b.logger.Debug("Wizard event rejected",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	if callback != nil {
		b.answerCallback(callback.ID, text, true)
	} else {
		b.sendError(chatID, text)
	}
	return ok
}

func stepTitle(catalog *wizard.Catalog, key string) string {
	if step, ok := catalog.StepByKey(key); ok && step.Title != "" {
		return step.Title
	}
	return key
}
