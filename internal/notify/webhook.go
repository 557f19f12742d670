package notify

import (
	"context"
	"fmt"
	"time"

	"alpools-bot/internal/wizard"
)

// Poster is the HTTP client used to reach the CRM.
type Poster interface {
	PostJSON(ctx context.Context, payload any) error
}

type webhookPayload struct {
	Kind        Kind                 `json:"kind"`
	UserID      int64                `json:"user_id"`
	DisplayName string               `json:"display_name,omitempty"`
	Username    string               `json:"username,omitempty"`
	Phone       string               `json:"phone,omitempty"`
	Email       string               `json:"email,omitempty"`
	Step        string               `json:"step,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	Summary     []wizard.SummaryLine `json:"summary,omitempty"`
	Total       *int64               `json:"total,omitempty"`
}

// Webhook mirrors notifications to a CRM endpoint.
type Webhook struct {
	client Poster
}

func NewWebhook(client Poster) *Webhook {
	return &Webhook{client: client}
}

func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	err := w.client.PostJSON(ctx, webhookPayload{
		Kind:        n.Kind,
		UserID:      n.UserID,
		DisplayName: n.DisplayName,
		Username:    n.Username,
		Phone:       n.Phone,
		Email:       n.Email,
		Step:        n.Step,
		CreatedAt:   n.CreatedAt,
		Summary:     n.Summary,
		Total:       n.Total,
	})
	if err != nil {
		return fmt.Errorf("notify.Webhook: %w", err)
	}
	return nil
}
