// Package notify delivers leads, escalations and completed requests to the
// company: admin chats, the lead journal and an optional CRM webhook.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"alpools-bot/internal/wizard"
)

type Kind string

const (
	KindEscalation Kind = "escalation"
	KindLead       Kind = "lead"
	KindEstimate   Kind = "estimate"
	KindQuote      Kind = "quote"
	KindProject    Kind = "project"
)

// Notification is one event worth a manager's attention.
type Notification struct {
	Kind        Kind
	UserID      int64
	DisplayName string
	Username    string
	Phone       string
	Email       string
	CreatedAt   time.Time

	// Step is the title of the step an escalation was raised on.
	Step    string
	Summary []wizard.SummaryLine
	Total   *int64
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi fans a notification out to every notifier. One failing target does
// not stop the others.
type Multi struct {
	notifiers []Notifier
	logger    *zap.Logger
}

func NewMulti(logger *zap.Logger, notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers, logger: logger}
}

func (m *Multi) Notify(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var errs []error
	for _, target := range m.notifiers {
		if err := target.Notify(ctx, n); err != nil {
			m.logger.Error("Notification delivery failed",
				zap.String("kind", string(n.Kind)),
				zap.Int64("user_id", n.UserID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
