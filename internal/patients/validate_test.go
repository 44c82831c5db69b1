package patients

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegisterValidationPanicsOnBadTag(t *testing.T) {
	v := validator.New()

	for _, tag := range []string{"", "dive", "omitempty"} {
		assert.Panics(t, func() {
			mustRegisterValidation(v, tag, validatePhone)
		}, "tag %q", tag)
	}
	assert.Panics(t, func() {
		mustRegisterValidation(v, "phone", nil)
	})
}

func TestFormValidatorCustomRulesAreActive(t *testing.T) {
	fv := newFormValidator(func() time.Time { return fixedNow })

	err := fv.Check(Form{
		FirstName:   "<b>Ada</b>",
		LastName:    "Lovelace",
		DateOfBirth: "2030-01-01",
		Phone:       "call me",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "first_name")
	assert.Contains(t, validationErr.Fields, "date_of_birth")
	assert.Contains(t, validationErr.Fields, "phone")
}
