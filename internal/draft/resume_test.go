package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string    { return &s }
func floatPtr(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Draft)
		want  Resolution
	}{
		{
			name:  "fresh draft asks for the name",
			setup: func(d *Draft) {},
			want:  Resolution{Phase: PhaseGeneralInfo, Field: FieldFullName, PhaseChanged: true},
		},
		{
			name: "partial general info keeps the phase",
			setup: func(d *Draft) {
				d.Phase = PhaseGeneralInfo
				d.FullName = strPtr("Иван")
				d.Phone = strPtr("+79990000000")
			},
			want: Resolution{Phase: PhaseGeneralInfo, Field: FieldEmail},
		},
		{
			name: "complete general info moves to geometry",
			setup: func(d *Draft) {
				d.Phase = PhaseGeneralInfo
				fillGeneral(d)
			},
			want: Resolution{Phase: PhaseGeometry, Field: FieldLength, PhaseChanged: true},
		},
		{
			name: "geometry resumes at the first missing dimension",
			setup: func(d *Draft) {
				d.Phase = PhaseGeometry
				fillGeneral(d)
				d.Length = floatPtr(10)
			},
			want: Resolution{Phase: PhaseGeometry, Field: FieldWidth},
		},
		{
			name: "all fields present goes to review",
			setup: func(d *Draft) {
				d.Phase = PhaseGeometry
				fillGeneral(d)
				fillGeometry(d)
			},
			want: Resolution{Phase: PhaseReview, Review: true, PhaseChanged: true},
		},
		{
			name: "geometry phase with a missing general field goes back",
			setup: func(d *Draft) {
				d.Phase = PhaseGeometry
				fillGeneral(d)
				d.Email = nil
			},
			want: Resolution{Phase: PhaseGeneralInfo, Field: FieldEmail, PhaseChanged: true},
		},
		{
			name: "empty string counts as unset",
			setup: func(d *Draft) {
				d.Phase = PhaseGeneralInfo
				d.FullName = strPtr("")
			},
			want: Resolution{Phase: PhaseGeneralInfo, Field: FieldFullName},
		},
		{
			name: "review stays in review",
			setup: func(d *Draft) {
				d.Phase = PhaseReview
			},
			want: Resolution{Phase: PhaseReview, Review: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(1, time.Unix(0, 0))
			tt.setup(d)
			assert.Equal(t, tt.want, Resolve(d))
		})
	}
}

func TestResolve_DependsOnlyOnNullness(t *testing.T) {
	a := New(1, time.Unix(0, 0))
	a.Phase = PhaseGeometry
	a.FullName = strPtr("A")
	a.Phone = strPtr("1")
	a.Email = strPtr("a@a.a")
	a.Address = strPtr("x")
	a.Length = floatPtr(1)

	b := New(2, time.Unix(100, 0))
	b.Phase = PhaseGeometry
	b.FullName = strPtr("Совсем другое имя")
	b.Phone = strPtr("+7 999 111-22-33")
	b.Email = strPtr("b@example.com")
	b.Address = strPtr("Москва")
	b.Length = floatPtr(25.5)

	assert.Equal(t, Resolve(a), Resolve(b))

	// no side effects
	before := *a
	Resolve(a)
	assert.Equal(t, before, *a)
}

func TestPhaseOfAndNextField(t *testing.T) {
	p, ok := PhaseOf(FieldAddress)
	require.True(t, ok)
	assert.Equal(t, PhaseGeneralInfo, p)

	p, ok = PhaseOf(FieldAverageDepth)
	require.True(t, ok)
	assert.Equal(t, PhaseGeometry, p)

	_, ok = PhaseOf(FieldProjectType)
	assert.False(t, ok)

	next, ok := NextField(FieldAddress)
	require.True(t, ok)
	assert.Equal(t, FieldLength, next)

	_, ok = NextField(FieldAverageDepth)
	assert.False(t, ok)
}

func TestDraftSet(t *testing.T) {
	d := New(1, time.Now())

	require.NoError(t, d.Set(FieldFullName, "Иван"))
	require.NoError(t, d.Set(FieldLength, 12.5))
	require.NoError(t, d.Set(FieldProjectType, "fountain"))
	assert.Equal(t, "Иван", *d.FullName)
	assert.Equal(t, 12.5, *d.Length)
	assert.Equal(t, ProjectFountain, *d.ProjectType)

	var unknown *UnknownFieldError
	require.ErrorAs(t, d.Set("roof_color", "red"), &unknown)
	assert.Equal(t, Field("roof_color"), unknown.Field)

	var invalid *InvalidValueError
	assert.ErrorAs(t, d.Set(FieldWidth, "wide"), &invalid)
	assert.ErrorAs(t, d.Set(FieldProjectType, "lake"), &invalid)

	_, err := d.IsSet("roof_color")
	assert.ErrorAs(t, err, &unknown)
}

func fillGeneral(d *Draft) {
	d.FullName = strPtr("Иван Петров")
	d.Phone = strPtr("+79990000000")
	d.Email = strPtr("ivan@example.com")
	d.Address = strPtr("Казань")
}

func fillGeometry(d *Draft) {
	d.Length = floatPtr(10)
	d.Width = floatPtr(4)
	d.AverageDepth = floatPtr(1.6)
}
