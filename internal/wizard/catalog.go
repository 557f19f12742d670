package wizard

import (
	"fmt"
	"strings"
)

// Kind is the input kind of a step. Navigation rules in Session switch on it.
type Kind int

const (
	KindFreeText Kind = iota + 1
	KindSingleSelect
	KindMultiSelect
)

func (k Kind) String() string {
	switch k {
	case KindFreeText:
		return "free_text"
	case KindSingleSelect:
		return "single_select"
	case KindMultiSelect:
		return "multi_select"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) isSelect() bool {
	return k == KindSingleSelect || k == KindMultiSelect
}

type Option struct {
	Key   string
	Label string
}

// StepDefinition is one question of a catalog.
type StepDefinition struct {
	Key    string
	Title  string // short label used in summaries
	Prompt string
	Kind   Kind

	// Options is required for select kinds and forbidden for free text.
	Options []Option
	// Validator is only allowed on free text steps. A nil validator accepts
	// any non-empty trimmed string.
	Validator Validator

	Comment          string
	AllowsEscalation bool
}

func (s StepDefinition) Option(key string) (Option, bool) {
	for _, o := range s.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

func (s StepDefinition) label(key string) string {
	if o, ok := s.Option(key); ok {
		return o.Label
	}
	return key
}

func (s StepDefinition) validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("step has empty key")
	}

	switch s.Kind {
	case KindFreeText:
		if len(s.Options) > 0 {
			return fmt.Errorf("step %q: free text step cannot declare options", s.Key)
		}
	case KindSingleSelect, KindMultiSelect:
		if len(s.Options) == 0 {
			return fmt.Errorf("step %q: %s step requires options", s.Key, s.Kind)
		}
		if s.Validator != nil {
			return fmt.Errorf("step %q: %s step cannot declare a validator", s.Key, s.Kind)
		}
		seen := make(map[string]struct{}, len(s.Options))
		for _, o := range s.Options {
			if o.Key == "" {
				return fmt.Errorf("step %q: option with empty key", s.Key)
			}
			if _, dup := seen[o.Key]; dup {
				return fmt.Errorf("step %q: duplicate option %q", s.Key, o.Key)
			}
			seen[o.Key] = struct{}{}
		}
	default:
		return fmt.Errorf("step %q: unknown kind %d", s.Key, int(s.Kind))
	}
	return nil
}

// Catalog is the fixed, ordered list of steps. It is never mutated after
// construction and is safe for concurrent use.
type Catalog struct {
	steps []StepDefinition
	index map[string]int
}

func NewCatalog(steps ...StepDefinition) (*Catalog, error) {
	const operation = "wizard.NewCatalog"

	if len(steps) == 0 {
		return nil, fmt.Errorf("%s: catalog is empty", operation)
	}

	c := &Catalog{
		steps: make([]StepDefinition, len(steps)),
		index: make(map[string]int, len(steps)),
	}
	for i, step := range steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		if _, dup := c.index[step.Key]; dup {
			return nil, fmt.Errorf("%s: duplicate step %q", operation, step.Key)
		}
		step.Options = append([]Option(nil), step.Options...)
		c.steps[i] = step
		c.index[step.Key] = i
	}
	return c, nil
}

// MustCatalog is NewCatalog for package level catalogs.
func MustCatalog(steps ...StepDefinition) *Catalog {
	c, err := NewCatalog(steps...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) StepAt(i int) (StepDefinition, bool) {
	if i < 0 || i >= len(c.steps) {
		return StepDefinition{}, false
	}
	return c.steps[i], true
}

func (c *Catalog) StepByKey(key string) (StepDefinition, bool) {
	i, ok := c.index[key]
	if !ok {
		return StepDefinition{}, false
	}
	return c.steps[i], true
}

func (c *Catalog) Count() int {
	return len(c.steps)
}

// IndexOf returns the position of the step or -1.
func (c *Catalog) IndexOf(key string) int {
	if i, ok := c.index[key]; ok {
		return i
	}
	return -1
}
