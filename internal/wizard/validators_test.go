package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		in     string
		volume float64
	}{
		{"10x4x1.6", 64.0},
		{"10,5*4*1.6", 67.2},
		{"10х4х1,5", 60.0},
		{" 8 X 3 x 2 ", 48.0},
		{"2.333x1x1", 2.33},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDimensions(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.volume, d.Volume())

			v := Volume(tt.in)
			require.NotNil(t, v)
			assert.Equal(t, tt.volume, *v)
		})
	}
}

func TestParseDimensions_Rejects(t *testing.T) {
	for _, in := range []string{"", "10x4", "10x4x", "axbxc", "10/4/1.6", "10x4x1.6x2", "-1x4x2"} {
		_, err := ParseDimensions(in)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "input %q", in)
		assert.Nil(t, Volume(in), "input %q", in)
	}

	_, err := ParseDimensions("10x0x1.6")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgDimensionsPositive, verr.Reason)
}

func TestValidatePhone(t *testing.T) {
	for _, ok := range []string{"+7 999 123-45-67", "89991234567", "(495) 644-66-54", "1234567"} {
		_, err := ValidatePhone(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"123456", "phone", "+7 999 123 45 67 89 01 23", "++79991234567"} {
		_, err := ValidatePhone(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateEmail(t *testing.T) {
	_, err := ValidateEmail("a@b")
	assert.Error(t, err)

	v, err := ValidateEmail(" a@b.co ")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", v)

	_, err = ValidateEmail("a@b.c")
	assert.Error(t, err)
}

func TestOptionalEmail(t *testing.T) {
	v, err := OptionalEmail(" - ")
	require.NoError(t, err)
	assert.Equal(t, EmailSkipped, v)

	_, err = OptionalEmail("nope")
	assert.Error(t, err)
}

func TestParsePositiveNumber(t *testing.T) {
	v, err := ParsePositiveNumber("4,5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	for _, bad := range []string{"0", "-2", "NaN", "Inf", "1e3", "abc", ""} {
		_, err := ParsePositiveNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidate(t *testing.T) {
	c := CostEstimateCatalog()

	free, _ := c.StepByKey(StepDimensions)
	_, err := Validate(free, "bad")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepDimensions, verr.Step)

	sel, _ := c.StepByKey("heating")
	_, err = Validate(sel, "yes")
	var terr *IllegalTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, MsgUseButtons, terr.Reason)

	plain := StepDefinition{Key: "name", Kind: KindFreeText}
	_, err = Validate(plain, "   ")
	assert.Error(t, err)
	v, err := Validate(plain, "  Ivan ")
	require.NoError(t, err)
	assert.Equal(t, "Ivan", v)
}
