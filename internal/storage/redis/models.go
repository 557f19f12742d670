package redis

import "alpools-bot/internal/wizard"

// UserState is the per-chat dialog state kept between updates.
type UserState struct {
	Flow  string `json:"flow,omitempty"`
	Stage string `json:"stage,omitempty"`

	// Wizard is the running step session of the current flow.
	Wizard *wizard.Snapshot `json:"wizard,omitempty"`

	Configurator *Configurator `json:"configurator,omitempty"`
	Project      *Project      `json:"project,omitempty"`
	Userdata     *UserData     `json:"user_data,omitempty"`

	// MessageID is the bot message carrying the current inline keyboard.
	MessageID int `json:"message_id,omitempty"`
}

type Configurator struct {
	Choices     *wizard.Answers `json:"choices,omitempty"`
	Attractions int             `json:"attractions"`
	Total       *int64          `json:"total,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
}

type Project struct {
	DraftID   string `json:"draft_id"`
	Field     string `json:"field,omitempty"`
	EditPhase string `json:"edit_phase,omitempty"`
}

type UserData struct {
	PhoneNumber *string `json:"phone_number,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Username    string  `json:"username,omitempty"`
}
