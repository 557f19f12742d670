package draft

// Field order inside each phase. Resume picks the first unset field.
var (
	GeneralInfoFields = []Field{FieldFullName, FieldPhone, FieldEmail, FieldAddress}
	GeometryFields    = []Field{FieldLength, FieldWidth, FieldAverageDepth}
)

// Resolution is where a draft should resume.
type Resolution struct {
	// Phase is the phase the draft should be in after resolution.
	Phase Phase
	// Field is the next field to ask for. Empty when Review is set.
	Field Field
	// Review means all fields are present and the review summary is shown.
	Review bool
	// PhaseChanged is set when Phase differs from the stored phase.
	PhaseChanged bool
}

// Resolve determines the resume position of a draft. It depends only on the
// stored phase and which fields are set, never on field values, and has no
// side effects.
//
// A fully answered phase moves on: general_info, geometry, review. A draft
// in a later phase that still misses an earlier field is sent back to that
// field.
func Resolve(d *Draft) Resolution {
	if d.Phase == PhaseReview || d.Phase == PhaseCompleted {
		return Resolution{Phase: d.Phase, Review: true}
	}

	for _, group := range []struct {
		phase  Phase
		fields []Field
	}{
		{PhaseGeneralInfo, GeneralInfoFields},
		{PhaseGeometry, GeometryFields},
	} {
		if f, ok := firstUnset(d, group.fields); ok {
			return Resolution{
				Phase:        group.phase,
				Field:        f,
				PhaseChanged: group.phase != d.Phase,
			}
		}
	}

	return Resolution{Phase: PhaseReview, Review: true, PhaseChanged: true}
}

func firstUnset(d *Draft, fields []Field) (Field, bool) {
	for _, f := range fields {
		// fields come from the fixed lists above, IsSet cannot fail on them
		if set, _ := d.IsSet(f); !set {
			return f, true
		}
	}
	return "", false
}

// PhaseOf returns the phase a field belongs to.
func PhaseOf(f Field) (Phase, bool) {
	for _, g := range GeneralInfoFields {
		if g == f {
			return PhaseGeneralInfo, true
		}
	}
	for _, g := range GeometryFields {
		if g == f {
			return PhaseGeometry, true
		}
	}
	return "", false
}

// NextField returns the field asked after f in the same phase sequence, or
// false when f is the last geometry field.
func NextField(f Field) (Field, bool) {
	all := append(append([]Field{}, GeneralInfoFields...), GeometryFields...)
	for i, g := range all {
		if g == f && i+1 < len(all) {
			return all[i+1], true
		}
	}
	return "", false
}
