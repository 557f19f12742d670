package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/draft"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/internal/wizard"
)

// startProject opens the user's active draft or creates one.
func (b *Bot) startProject(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	d, resumed, err := b.drafts.Begin(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to begin project draft",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}

	stage := stageField
	if resumed {
		stage = stageChoice
	}
	state, err := b.state.EnterFlow(ctx, chatID, flowProject, stage)
	if err != nil {
		b.logger.Error("Failed to enter project flow",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, msgInternalError)
		return
	}
	state.Project = &redis.Project{DraftID: d.ID.String()}

	if resumed {
		b.logger.Info("Active project draft found",
			zap.Int64("chat_id", chatID),
			zap.String("draft_id", d.ID.String()))
		markup := keyboards.DraftResume()
		b.sendStep(chatID, state, msgDraftResume, &markup)
		b.saveState(ctx, chatID, state)
		return
	}

	b.askField(ctx, chatID, state, draft.FieldFullName, "")
}

func (b *Bot) handleProjectCallback(ctx context.Context, chatID int64, callback *tgbotapi.CallbackQuery, cb keyboards.Callback, state *redis.UserState) {
	id, ok := b.projectDraftID(state)
	if !ok {
		b.answerCallback(callback.ID, msgStaleButton, true)
		return
	}
	b.answerCallback(callback.ID, "", false)

	switch cb.Action {
	case keyboards.ActionContinue:
		b.resumeProject(ctx, chatID, state, id)

	case keyboards.ActionNew:
		d, err := b.drafts.StartOver(ctx, chatID)
		if err != nil {
			b.projectFailure(ctx, chatID, state, err)
			return
		}
		state.Project = &redis.Project{DraftID: d.ID.String()}
		b.askField(ctx, chatID, state, draft.FieldFullName, msgDraftNew)

	case keyboards.ActionEditGeneral:
		b.editPhase(ctx, chatID, state, id, draft.PhaseGeneralInfo, msgEditGeneral)

	case keyboards.ActionEditGeometry:
		b.editPhase(ctx, chatID, state, id, draft.PhaseGeometry, msgEditGeometry)

	case keyboards.ActionConfirm:
		b.confirmProject(ctx, chatID, callback.From, state, id)

	default:
		b.logger.Warn("Unknown project action",
			zap.Int64("chat_id", chatID),
			zap.String("action", cb.Action))
	}
}

func (b *Bot) resumeProject(ctx context.Context, chatID int64, state *redis.UserState, id uuid.UUID) {
	d, res, err := b.drafts.Resume(ctx, id)
	if err != nil {
		b.projectFailure(ctx, chatID, state, err)
		return
	}

	b.logger.Info("Project draft resumed",
		zap.Int64("chat_id", chatID),
		zap.String("draft_id", id.String()),
		zap.String("phase", string(res.Phase)),
		zap.String("field", string(res.Field)))

	if res.Review {
		b.showReview(ctx, chatID, state, d)
		return
	}
	b.askField(ctx, chatID, state, res.Field, "")
}

func (b *Bot) editPhase(ctx context.Context, chatID int64, state *redis.UserState, id uuid.UUID, phase draft.Phase, intro string) {
	if _, err := b.drafts.EnterPhase(ctx, id, phase); err != nil {
		b.projectFailure(ctx, chatID, state, err)
		return
	}

	first := draft.FieldFullName
	if phase == draft.PhaseGeometry {
		first = draft.FieldLength
	}
	state.Project.EditPhase = string(phase)
	b.askField(ctx, chatID, state, first, intro)
}

func (b *Bot) askField(ctx context.Context, chatID int64, state *redis.UserState, field draft.Field, intro string) {
	prompt := fieldPrompts[field]
	if intro != "" {
		prompt = intro + "\n" + prompt
	}

	state.Stage = stageField
	state.Project.Field = string(field)
	b.sendStep(chatID, state, prompt, nil)
	b.saveState(ctx, chatID, state)
}

func (b *Bot) handleProjectText(ctx context.Context, msg *tgbotapi.Message, state *redis.UserState) {
	chatID := msg.Chat.ID

	id, ok := b.projectDraftID(state)
	if !ok || state.Stage != stageField {
		b.sendError(chatID, msgUseButtons)
		return
	}

	field := draft.Field(state.Project.Field)
	value, err := parseFieldValue(field, msg.Text)
	if err != nil {
		if text, ok := wizard.UserMessage(err); ok {
			b.sendError(chatID, text)
			return
		}
		b.projectFailure(ctx, chatID, state, err)
		return
	}

	d, err := b.drafts.Answer(ctx, id, field, value)
	if err != nil {
		b.projectFailure(ctx, chatID, state, err)
		return
	}

	if state.Project.EditPhase != "" {
		next, ok := draft.NextField(field)
		if ok {
			if phase, _ := draft.PhaseOf(next); string(phase) == state.Project.EditPhase {
				b.askField(ctx, chatID, state, next, "")
				return
			}
		}
		state.Project.EditPhase = ""
		b.showReview(ctx, chatID, state, d)
		return
	}

	b.resumeProject(ctx, chatID, state, id)
}

// parseFieldValue validates a typed answer for a draft field.
func parseFieldValue(field draft.Field, raw string) (any, error) {
	switch field {
	case draft.FieldPhone:
		return wizard.ValidatePhone(raw)
	case draft.FieldEmail:
		return wizard.ValidateEmail(raw)
	case draft.FieldLength, draft.FieldWidth, draft.FieldAverageDepth:
		return wizard.ParsePositiveNumber(raw)
	case draft.FieldFullName, draft.FieldAddress:
		value := strings.TrimSpace(raw)
		if value == "" {
			return nil, &wizard.ValidationError{Step: string(field), Reason: msgEmptyAnswer}
		}
		return value, nil
	}
	return nil, &draft.UnknownFieldError{Field: field}
}

func (b *Bot) showReview(ctx context.Context, chatID int64, state *redis.UserState, d *draft.Draft) {
	if d.Phase != draft.PhaseReview {
		var err error
		if d, err = b.drafts.EnterPhase(ctx, d.ID, draft.PhaseReview); err != nil {
			b.projectFailure(ctx, chatID, state, err)
			return
		}
	}

	state.Stage = stageReview
	state.Project.Field = ""
	markup := keyboards.Review()
	b.sendStep(chatID, state, formatReview(d), &markup)
	b.saveState(ctx, chatID, state)
}

func (b *Bot) confirmProject(ctx context.Context, chatID int64, user *tgbotapi.User, state *redis.UserState, id uuid.UUID) {
	if state.Stage != stageReview {
		b.sendError(chatID, msgUseButtons)
		return
	}

	d, err := b.drafts.Complete(ctx, id)
	if err != nil {
		b.projectFailure(ctx, chatID, state, err)
		return
	}

	n := newNotification(notify.KindProject, user)
	n.Phone = orEmpty(d.Phone)
	n.Email = orEmpty(d.Email)
	n.Summary = draftSummary(d)
	b.notifyManagers(ctx, n)
	b.rememberPhone(ctx, chatID, user, n.Phone)

	b.logger.Info("Project draft confirmed",
		zap.Int64("chat_id", chatID),
		zap.String("draft_id", id.String()))

	b.finishFlow(ctx, chatID, state, msgDraftConfirmed)
}

func (b *Bot) projectDraftID(state *redis.UserState) (uuid.UUID, bool) {
	if state.Project == nil {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(state.Project.DraftID)
	if err != nil {
		b.logger.Warn("Invalid draft id in dialog state",
			zap.String("draft_id", state.Project.DraftID),
			zap.Error(err))
		return uuid.UUID{}, false
	}
	return id, true
}

// projectFailure ends the flow after a draft operation failed.
func (b *Bot) projectFailure(ctx context.Context, chatID int64, state *redis.UserState, err error) {
	var fieldErr *draft.UnknownFieldError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		b.logger.Warn("Project draft is gone",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.finishFlow(ctx, chatID, state, msgDraftNotFound)
		return
	case errors.As(err, &fieldErr):
		b.logger.Error("Draft field is not writable",
			zap.Int64("chat_id", chatID),
			zap.String("field", string(fieldErr.Field)),
			zap.Error(err))
	default:
		b.logger.Error("Project draft operation failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.sendError(chatID, msgInternalError)
}
