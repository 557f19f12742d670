// Package draft holds the resumable project draft: its record, the resume
// resolver and the service enforcing one active draft per user.
package draft

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Active reports whether a draft in this status blocks a new one.
func (s Status) Active() bool {
	return s == StatusDraft || s == StatusInProgress
}

type Phase string

const (
	PhaseStart       Phase = "start"
	PhaseGeneralInfo Phase = "general_info"
	PhaseGeometry    Phase = "geometry"
	PhaseReview      Phase = "review"
	PhaseCompleted   Phase = "completed"
)

type ProjectType string

const (
	ProjectPool     ProjectType = "pool"
	ProjectFountain ProjectType = "fountain"
	ProjectPond     ProjectType = "pond"
)

// Field names a writable draft column.
type Field string

const (
	FieldFullName     Field = "full_name"
	FieldPhone        Field = "phone"
	FieldEmail        Field = "email"
	FieldAddress      Field = "address"
	FieldLength       Field = "length"
	FieldWidth        Field = "width"
	FieldAverageDepth Field = "average_depth"
	FieldProjectType  Field = "project_type"
)

var (
	// ErrNotFound is returned for missing or soft-deleted drafts.
	ErrNotFound = errors.New("draft not found")
	// ErrActiveDraftExists is returned when creating a second active draft.
	ErrActiveDraftExists = errors.New("user already has an active draft")
)

// UnknownFieldError is an attempt to write a column the draft does not have.
// It is an integration fault, not a user error.
type UnknownFieldError struct {
	Field Field
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown draft field %q", string(e.Field))
}

// InvalidValueError is a value of the wrong type for a known field.
type InvalidValueError struct {
	Field Field
	Value any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v (%T) for draft field %q", e.Value, e.Value, string(e.Field))
}

type Draft struct {
	ID          uuid.UUID    `db:"id"`
	UserID      int64        `db:"user_id"`
	Status      Status       `db:"status"`
	Phase       Phase        `db:"current_step"`
	ProjectType *ProjectType `db:"project_type"`

	FullName *string `db:"full_name"`
	Phone    *string `db:"phone"`
	Email    *string `db:"email"`
	Address  *string `db:"address"`

	Length       *float64 `db:"length"`
	Width        *float64 `db:"width"`
	AverageDepth *float64 `db:"average_depth"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	IsDeleted bool      `db:"is_deleted"`
}

// New returns an unsaved draft in the start phase.
func New(userID int64, now time.Time) *Draft {
	return &Draft{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    StatusDraft,
		Phase:     PhaseStart,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsSet reports whether the field has been answered.
func (d *Draft) IsSet(f Field) (bool, error) {
	switch f {
	case FieldFullName:
		return d.FullName != nil && *d.FullName != "", nil
	case FieldPhone:
		return d.Phone != nil && *d.Phone != "", nil
	case FieldEmail:
		return d.Email != nil && *d.Email != "", nil
	case FieldAddress:
		return d.Address != nil && *d.Address != "", nil
	case FieldLength:
		return d.Length != nil, nil
	case FieldWidth:
		return d.Width != nil, nil
	case FieldAverageDepth:
		return d.AverageDepth != nil, nil
	case FieldProjectType:
		return d.ProjectType != nil, nil
	}
	return false, &UnknownFieldError{Field: f}
}

// Set writes one field. Text fields take a string, geometry fields a float64.
func (d *Draft) Set(f Field, value any) error {
	switch f {
	case FieldFullName, FieldPhone, FieldEmail, FieldAddress:
		s, ok := value.(string)
		if !ok {
			return &InvalidValueError{Field: f, Value: value}
		}
		switch f {
		case FieldFullName:
			d.FullName = &s
		case FieldPhone:
			d.Phone = &s
		case FieldEmail:
			d.Email = &s
		case FieldAddress:
			d.Address = &s
		}
	case FieldLength, FieldWidth, FieldAverageDepth:
		v, ok := value.(float64)
		if !ok {
			return &InvalidValueError{Field: f, Value: value}
		}
		switch f {
		case FieldLength:
			d.Length = &v
		case FieldWidth:
			d.Width = &v
		case FieldAverageDepth:
			d.AverageDepth = &v
		}
	case FieldProjectType:
		var pt ProjectType
		switch v := value.(type) {
		case ProjectType:
			pt = v
		case string:
			pt = ProjectType(v)
		default:
			return &InvalidValueError{Field: f, Value: value}
		}
		switch pt {
		case ProjectPool, ProjectFountain, ProjectPond:
		default:
			return &InvalidValueError{Field: f, Value: value}
		}
		d.ProjectType = &pt
	default:
		return &UnknownFieldError{Field: f}
	}
	return nil
}
