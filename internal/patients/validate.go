package patients

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{3,}$`)

type formValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func newFormValidator(now func() time.Time) *formValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	fv := &formValidator{validate: v, now: now}
	mustRegisterValidation(v, "phone", validatePhone)
	mustRegisterValidation(v, "no_html", validateNoHTML)
	mustRegisterValidation(v, "not_future", fv.validateNotFuture)
	return fv
}

func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// Check returns a *ValidationError describing every failing field, or nil.
func (fv *formValidator) Check(form Form) error {
	err := fv.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrors))}
	for _, fe := range fieldErrors {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

// validateNotFuture runs after datetime, so an unparsable value is left to it.
func (fv *formValidator) validateNotFuture(fl validator.FieldLevel) bool {
	parsed, err := time.Parse(DateLayout, fl.Field().String())
	if err != nil {
		return true
	}

	now := fv.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !parsed.After(today)
}
