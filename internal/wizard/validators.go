package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validator checks raw free text and returns the accepted value.
// A rejection is reported as *ValidationError.
type Validator func(raw string) (string, error)

var (
	dimensionsRe = regexp.MustCompile(
		`^\s*(\d+(?:[.,]\d+)?)\s*[xXхХ*]\s*(\d+(?:[.,]\d+)?)\s*[xXхХ*]\s*(\d+(?:[.,]\d+)?)\s*$`,
	)
	phoneRe  = regexp.MustCompile(`^\+?[\d\s\-()]{7,20}$`)
	emailRe  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	numberRe = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
)

const (
	msgDimensionsFormat   = "Введите размеры в формате: 10x4x1.6"
	msgDimensionsPositive = "Размеры должны быть больше нуля."
	msgPhone              = "Введите корректный номер телефона, например: +7 999 123-45-67"
	msgEmail              = "Введите корректный email, например: name@example.com"
	msgEmpty              = "Ответ не может быть пустым."
	msgPositiveNumber     = "Введите положительное число, например: 4.5"

	// EmailSkipped is accepted by OptionalEmail when the user has no email to give.
	EmailSkipped = "-"
)

// Dimensions is a parsed length x width x depth triple, in metres.
type Dimensions struct {
	Length float64
	Width  float64
	Depth  float64
}

// ParseDimensions parses "<n><sep><n><sep><n>" with x, Cyrillic х or * as
// separator and either '.' or ',' as decimal separator.
func ParseDimensions(raw string) (Dimensions, error) {
	m := dimensionsRe.FindStringSubmatch(raw)
	if m == nil {
		return Dimensions{}, &ValidationError{Reason: msgDimensionsFormat}
	}

	var vals [3]float64
	for i := range vals {
		v, err := parseDecimal(m[i+1])
		if err != nil {
			return Dimensions{}, &ValidationError{Reason: msgDimensionsFormat}
		}
		vals[i] = v
	}

	d := Dimensions{Length: vals[0], Width: vals[1], Depth: vals[2]}
	if d.Length <= 0 || d.Width <= 0 || d.Depth <= 0 {
		return Dimensions{}, &ValidationError{Reason: msgDimensionsPositive}
	}
	return d, nil
}

func ValidateDimensions(raw string) (string, error) {
	if _, err := ParseDimensions(raw); err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func ValidatePhone(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if !phoneRe.MatchString(value) {
		return "", &ValidationError{Reason: msgPhone}
	}
	return value, nil
}

func ValidateEmail(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if !emailRe.MatchString(value) {
		return "", &ValidationError{Reason: msgEmail}
	}
	return value, nil
}

// OptionalEmail accepts EmailSkipped in addition to a valid email.
func OptionalEmail(raw string) (string, error) {
	if strings.TrimSpace(raw) == EmailSkipped {
		return EmailSkipped, nil
	}
	return ValidateEmail(raw)
}

// ValidatePositiveNumber accepts a strictly positive decimal with '.' or ','.
func ValidatePositiveNumber(raw string) (string, error) {
	v, err := ParsePositiveNumber(raw)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// ParsePositiveNumber is ValidatePositiveNumber returning the parsed value.
func ParsePositiveNumber(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if !numberRe.MatchString(value) {
		return 0, &ValidationError{Reason: msgPositiveNumber}
	}
	v, err := parseDecimal(value)
	if err != nil || v <= 0 {
		return 0, &ValidationError{Reason: msgPositiveNumber}
	}
	return v, nil
}

func nonEmpty(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", &ValidationError{Reason: msgEmpty}
	}
	return value, nil
}

// Validate runs the acceptance rules of a free text step. Select steps never
// take free text.
func Validate(step StepDefinition, raw string) (string, error) {
	switch step.Kind {
	case KindFreeText:
		validator := step.Validator
		if validator == nil {
			validator = nonEmpty
		}
		value, err := validator(raw)
		if err != nil {
			return "", withStep(err, step.Key)
		}
		return value, nil
	case KindSingleSelect, KindMultiSelect:
		return "", &IllegalTransitionError{
			Step:   step.Key,
			Kind:   step.Kind,
			Event:  EventText,
			Reason: MsgUseButtons,
		}
	default:
		return "", fmt.Errorf("step %q: unknown kind %s", step.Key, step.Kind)
	}
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}
