package keyboards

import (
	"errors"
	"strings"
)

// Callback scopes. Each flow owns one.
const (
	ScopeCost   = "cost"
	ScopeConfig = "cfg"
	ScopeDraft  = "draft"
	ScopeMenu   = "menu"
)

// Callback actions.
const (
	ActionSelect   = "select"
	ActionToggle   = "toggle"
	ActionNext     = "next"
	ActionClear    = "clear"
	ActionBack     = "back"
	ActionCancel   = "cancel"
	ActionEngineer = "engineer"

	ActionPlus  = "plus"
	ActionMinus = "minus"
	ActionCalc  = "calc"
	ActionSend  = "send"

	ActionContinue     = "continue"
	ActionNew          = "new"
	ActionEditGeneral  = "edit_general"
	ActionEditGeometry = "edit_geometry"
	ActionConfirm      = "confirm"

	ActionCard    = "card"
	ActionConsult = "consult"

	// ActionNoop marks buttons that only display a value.
	ActionNoop = "noop"
)

// Telegram rejects callback data longer than this.
const maxCallbackData = 64

var ErrMalformedCallback = errors.New("malformed callback data")

// Callback is decoded inline button data: "<scope>:<action>[:<arg>]".
type Callback struct {
	Scope  string
	Action string
	Arg    string
}

func Data(scope, action string, arg ...string) string {
	parts := append([]string{scope, action}, arg...)
	return strings.Join(parts, ":")
}

func ParseCallback(data string) (Callback, error) {
	if data == "" || len(data) > maxCallbackData {
		return Callback{}, ErrMalformedCallback
	}

	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Callback{}, ErrMalformedCallback
	}

	cb := Callback{Scope: parts[0], Action: parts[1]}
	if len(parts) == 3 {
		cb.Arg = parts[2]
	}
	switch cb.Action {
	case ActionSelect, ActionToggle:
		if cb.Arg == "" {
			return Callback{}, ErrMalformedCallback
		}
	}
	return cb, nil
}
