package wizard

import (
	"errors"
	"fmt"
)

// User facing texts for recoverable navigation errors.
const (
	MsgUseButtons        = "Пожалуйста, используйте кнопки для выбора варианта."
	MsgSelectionRequired = "Выберите хотя бы один вариант."
	MsgFirstStep         = "Это первый шаг."
	MsgUnknownOption     = "Такого варианта нет. Выберите один из предложенных."
)

var (
	// ErrSelectionRequired is returned when a multi-select step is confirmed
	// with nothing selected.
	ErrSelectionRequired = errors.New("selection required")
	// ErrAtFirstStep is returned by Back on the first step. State is unchanged.
	ErrAtFirstStep = errors.New("already at the first step")
	// ErrSessionClosed is returned for any event after completion or cancel.
	ErrSessionClosed = errors.New("session is closed")
)

// ValidationError is a rejected user input. It is recovered by re-prompting
// with Reason.
type ValidationError struct {
	Step   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on step %q: %s", e.Step, e.Reason)
}

// IllegalTransitionError is an event that does not apply to the current step
// kind, like free text on a select step.
type IllegalTransitionError struct {
	Step   string
	Kind   Kind
	Event  EventType
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("event %q is not allowed on %s step %q", e.Event, e.Kind, e.Step)
}

// UserMessage returns the text to show the user for a recoverable session
// error and false for anything else.
func UserMessage(err error) (string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	var terr *IllegalTransitionError
	if errors.As(err, &terr) {
		return terr.Reason, true
	}
	switch {
	case errors.Is(err, ErrSelectionRequired):
		return MsgSelectionRequired, true
	case errors.Is(err, ErrAtFirstStep):
		return MsgFirstStep, true
	}
	return "", false
}

func withStep(err error, step string) error {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Step == "" {
		return &ValidationError{Step: step, Reason: verr.Reason}
	}
	return err
}
