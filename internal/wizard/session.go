package wizard

import (
	"fmt"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type EventType string

const (
	EventText    EventType = "text"
	EventSelect  EventType = "select"
	EventToggle  EventType = "toggle"
	EventControl EventType = "control"
)

type Action string

const (
	ActionNext     Action = "next"
	ActionBack     Action = "back"
	ActionCancel   Action = "cancel"
	ActionClear    Action = "clear"
	ActionConfirm  Action = "confirm"
	ActionEscalate Action = "escalate"
)

// Event is one inbound user action for a session.
type Event struct {
	Type      EventType
	Value     string
	OptionKey string
	Action    Action
}

type PresentedOption struct {
	Key      string
	Label    string
	Selected bool
}

// Presentation describes what to show for the current step. Rendering is up
// to the transport.
type Presentation struct {
	StepKey      string
	Position     int // 1-based
	Total        int
	Prompt       string
	Comment      string
	Options      []PresentedOption
	MultiSelect  bool
	ShowBack     bool
	ShowCancel   bool
	ShowEscalate bool
}

// Escalation is a request for an engineer consultation raised on a step.
type Escalation struct {
	StepKey   string
	StepIndex int
}

// Result reports the outcome of a transition.
type Result struct {
	// Presentation is set whenever the current step must be (re-)rendered.
	Presentation *Presentation
	// StepChanged is true when the step index moved.
	StepChanged bool
	Completed   bool
	Cancelled   bool
	// Selection is the multi-select state after a toggle or clear.
	Selection  []string
	Escalation *Escalation
}

// Snapshot is the serialisable form of a session.
type Snapshot struct {
	StepIndex int      `json:"step_index"`
	Status    Status   `json:"status"`
	Answers   *Answers `json:"answers"`
}

// Session is the navigation state machine over a catalog. It is not safe for
// concurrent use; callers serialise events per conversation.
type Session struct {
	catalog *Catalog
	index   int
	status  Status
	answers *Answers
}

func NewSession(catalog *Catalog) *Session {
	return &Session{
		catalog: catalog,
		status:  StatusActive,
		answers: NewAnswers(),
	}
}

// Restore rebuilds a session from a snapshot taken over the same catalog.
func Restore(catalog *Catalog, snap Snapshot) (*Session, error) {
	if snap.StepIndex < 0 || snap.StepIndex > catalog.Count() {
		return nil, fmt.Errorf("wizard.Restore: step index %d out of range [0, %d]", snap.StepIndex, catalog.Count())
	}
	status := snap.Status
	switch status {
	case StatusActive, StatusCompleted, StatusCancelled:
	case "":
		status = StatusActive
	default:
		return nil, fmt.Errorf("wizard.Restore: unknown status %q", status)
	}
	if status == StatusActive && snap.StepIndex == catalog.Count() {
		return nil, fmt.Errorf("wizard.Restore: active session past the last step")
	}

	answers := NewAnswers()
	if snap.Answers != nil {
		answers = snap.Answers.Clone()
	}
	return &Session{
		catalog: catalog,
		index:   snap.StepIndex,
		status:  status,
		answers: answers,
	}, nil
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		StepIndex: s.index,
		Status:    s.status,
		Answers:   s.answers.Clone(),
	}
}

func (s *Session) Catalog() *Catalog { return s.catalog }
func (s *Session) Index() int        { return s.index }
func (s *Session) Status() Status    { return s.status }

// Answers returns a copy of the accumulated answers.
func (s *Session) Answers() *Answers { return s.answers.Clone() }

// Current returns the current step while the session is active.
func (s *Session) Current() (StepDefinition, bool) {
	if s.status != StatusActive {
		return StepDefinition{}, false
	}
	return s.catalog.StepAt(s.index)
}

// Start resets the session to the first step with no answers.
func (s *Session) Start() Result {
	s.index = 0
	s.status = StatusActive
	s.answers = NewAnswers()
	p := s.Present()
	return Result{Presentation: &p, StepChanged: true}
}

// Apply dispatches an inbound event to the matching transition.
func (s *Session) Apply(ev Event) (Result, error) {
	switch ev.Type {
	case EventText:
		return s.SubmitText(ev.Value)
	case EventSelect:
		return s.SelectSingle(ev.OptionKey)
	case EventToggle:
		return s.ToggleMulti(ev.OptionKey)
	case EventControl:
		switch ev.Action {
		case ActionNext, ActionConfirm:
			return s.ConfirmMulti()
		case ActionBack:
			return s.Back()
		case ActionCancel:
			return s.Cancel(), nil
		case ActionClear:
			return s.ClearMulti()
		case ActionEscalate:
			return s.Escalate()
		}
		return Result{}, fmt.Errorf("wizard: unknown action %q", ev.Action)
	}
	return Result{}, fmt.Errorf("wizard: unknown event type %q", ev.Type)
}

func (s *Session) SubmitText(raw string) (Result, error) {
	step, err := s.expect(EventText, KindFreeText)
	if err != nil {
		return Result{}, err
	}

	value, err := Validate(step, raw)
	if err != nil {
		return Result{}, err
	}

	s.answers.set(step.Key, TextAnswer(value))
	return s.advance(), nil
}

func (s *Session) SelectSingle(optionKey string) (Result, error) {
	step, err := s.expect(EventSelect, KindSingleSelect)
	if err != nil {
		return Result{}, err
	}
	if _, ok := step.Option(optionKey); !ok {
		return Result{}, s.unknownOption(step, EventSelect)
	}

	s.answers.set(step.Key, ChoiceAnswer(optionKey))
	return s.advance(), nil
}

func (s *Session) ToggleMulti(optionKey string) (Result, error) {
	step, err := s.expect(EventToggle, KindMultiSelect)
	if err != nil {
		return Result{}, err
	}
	if _, ok := step.Option(optionKey); !ok {
		return Result{}, s.unknownOption(step, EventToggle)
	}

	selection := s.answers.toggle(step.Key, optionKey)
	p := s.Present()
	return Result{Presentation: &p, Selection: selection}, nil
}

func (s *Session) ClearMulti() (Result, error) {
	step, err := s.expect(EventControl, KindMultiSelect)
	if err != nil {
		return Result{}, err
	}

	s.answers.clear(step.Key)
	p := s.Present()
	return Result{Presentation: &p, Selection: []string{}}, nil
}

func (s *Session) ConfirmMulti() (Result, error) {
	step, err := s.expect(EventControl, KindMultiSelect)
	if err != nil {
		return Result{}, err
	}
	if len(s.answers.Multi(step.Key)) == 0 {
		return Result{}, ErrSelectionRequired
	}
	return s.advance(), nil
}

// Back moves to the previous step. On the first step it returns
// ErrAtFirstStep and leaves the state untouched.
func (s *Session) Back() (Result, error) {
	if s.status != StatusActive {
		return Result{}, ErrSessionClosed
	}
	if s.index == 0 {
		return Result{}, ErrAtFirstStep
	}

	s.index--
	p := s.Present()
	return Result{Presentation: &p, StepChanged: true}, nil
}

// Cancel discards all answers. It is idempotent.
func (s *Session) Cancel() Result {
	s.status = StatusCancelled
	s.answers = NewAnswers()
	return Result{Cancelled: true}
}

// Escalate requests an engineer consultation. It never moves the step or
// touches answers.
func (s *Session) Escalate() (Result, error) {
	step, ok := s.Current()
	if !ok {
		return Result{}, ErrSessionClosed
	}
	if !step.AllowsEscalation {
		return Result{}, &IllegalTransitionError{
			Step:   step.Key,
			Kind:   step.Kind,
			Event:  EventControl,
			Reason: MsgUseButtons,
		}
	}
	return Result{Escalation: &Escalation{StepKey: step.Key, StepIndex: s.index}}, nil
}

// Present describes the current step with selection marks.
func (s *Session) Present() Presentation {
	step, ok := s.Current()
	if !ok {
		return Presentation{}
	}

	p := Presentation{
		StepKey:      step.Key,
		Position:     s.index + 1,
		Total:        s.catalog.Count(),
		Prompt:       step.Prompt,
		Comment:      step.Comment,
		MultiSelect:  step.Kind == KindMultiSelect,
		ShowBack:     true,
		ShowCancel:   true,
		ShowEscalate: step.AllowsEscalation,
	}

	var selected []string
	switch step.Kind {
	case KindMultiSelect:
		selected = s.answers.Multi(step.Key)
	case KindSingleSelect:
		if v, ok := s.answers.Choice(step.Key); ok {
			selected = []string{v}
		}
	case KindFreeText:
	}
	for _, o := range step.Options {
		p.Options = append(p.Options, PresentedOption{
			Key:      o.Key,
			Label:    o.Label,
			Selected: contains(selected, o.Key),
		})
	}
	return p
}

func (s *Session) advance() Result {
	s.index++
	if s.index >= s.catalog.Count() {
		s.index = s.catalog.Count()
		s.status = StatusCompleted
		return Result{StepChanged: true, Completed: true}
	}
	p := s.Present()
	return Result{Presentation: &p, StepChanged: true}
}

func (s *Session) expect(ev EventType, kind Kind) (StepDefinition, error) {
	step, ok := s.Current()
	if !ok {
		return StepDefinition{}, ErrSessionClosed
	}
	if step.Kind != kind {
		reason := MsgUseButtons
		if step.Kind == KindFreeText {
			reason = "Введите ответ текстом."
		}
		return StepDefinition{}, &IllegalTransitionError{
			Step:   step.Key,
			Kind:   step.Kind,
			Event:  ev,
			Reason: reason,
		}
	}
	return step, nil
}

func (s *Session) unknownOption(step StepDefinition, ev EventType) error {
	return &IllegalTransitionError{
		Step:   step.Key,
		Kind:   step.Kind,
		Event:  ev,
		Reason: MsgUnknownOption,
	}
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
