package wizard

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Answer is the value stored for one step. The concrete type follows the
// step kind: TextAnswer, ChoiceAnswer or MultiAnswer.
type Answer interface {
	kind() Kind
}

type TextAnswer string

type ChoiceAnswer string

// MultiAnswer keeps option keys in the order the user selected them.
type MultiAnswer []string

func (TextAnswer) kind() Kind   { return KindFreeText }
func (ChoiceAnswer) kind() Kind { return KindSingleSelect }
func (MultiAnswer) kind() Kind  { return KindMultiSelect }

// Answers maps step keys to typed answers.
type Answers struct {
	values map[string]Answer
}

func NewAnswers() *Answers {
	return &Answers{values: make(map[string]Answer)}
}

func (a *Answers) Get(key string) (Answer, bool) {
	v, ok := a.values[key]
	return v, ok
}

func (a *Answers) Text(key string) (string, bool) {
	v, ok := a.values[key].(TextAnswer)
	return string(v), ok
}

func (a *Answers) Choice(key string) (string, bool) {
	v, ok := a.values[key].(ChoiceAnswer)
	return string(v), ok
}

func (a *Answers) Multi(key string) []string {
	v, _ := a.values[key].(MultiAnswer)
	return slices.Clone([]string(v))
}

func (a *Answers) Len() int {
	return len(a.values)
}

func (a *Answers) set(key string, v Answer) {
	a.values[key] = v
}

// toggle flips membership of option in the step's set and returns the new
// selection.
func (a *Answers) toggle(key, option string) []string {
	cur, _ := a.values[key].(MultiAnswer)
	next := slices.Clone(cur)
	if i := slices.Index(next, option); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, option)
	}
	a.values[key] = MultiAnswer(next)
	return slices.Clone(next)
}

func (a *Answers) clear(key string) {
	a.values[key] = MultiAnswer{}
}

func (a *Answers) Clone() *Answers {
	out := NewAnswers()
	for k, v := range a.values {
		if m, ok := v.(MultiAnswer); ok {
			v = MultiAnswer(slices.Clone(m))
		}
		out.values[k] = v
	}
	return out
}

type storedAnswer struct {
	Kind  string   `json:"kind"`
	Value string   `json:"value,omitempty"`
	Keys  []string `json:"keys,omitempty"`
}

func (a *Answers) MarshalJSON() ([]byte, error) {
	out := make(map[string]storedAnswer, len(a.values))
	for k, v := range a.values {
		switch v := v.(type) {
		case TextAnswer:
			out[k] = storedAnswer{Kind: KindFreeText.String(), Value: string(v)}
		case ChoiceAnswer:
			out[k] = storedAnswer{Kind: KindSingleSelect.String(), Value: string(v)}
		case MultiAnswer:
			out[k] = storedAnswer{Kind: KindMultiSelect.String(), Keys: []string(v)}
		}
	}
	return json.Marshal(out)
}

func (a *Answers) UnmarshalJSON(data []byte) error {
	var in map[string]storedAnswer
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	a.values = make(map[string]Answer, len(in))
	for k, v := range in {
		switch v.Kind {
		case KindFreeText.String():
			a.values[k] = TextAnswer(v.Value)
		case KindSingleSelect.String():
			a.values[k] = ChoiceAnswer(v.Value)
		case KindMultiSelect.String():
			a.values[k] = MultiAnswer(v.Keys)
		default:
			return fmt.Errorf("answer %q: unknown kind %q", k, v.Kind)
		}
	}
	return nil
}
