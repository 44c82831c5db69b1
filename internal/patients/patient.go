package patients

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

var (
	ErrNotFound = errors.New("patient not found")
	ErrInvalid  = errors.New("invalid patient")
)

type Patient struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
	Phone       string
	Email       string
	Address     string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// AgeAt returns completed years between the date of birth and now.
func (p Patient) AgeAt(now time.Time) int {
	if p.DateOfBirth.IsZero() || now.Before(p.DateOfBirth) {
		return 0
	}

	years := now.Year() - p.DateOfBirth.Year()
	birthday := p.DateOfBirth.AddDate(years, 0, 0)
	if now.Before(birthday) {
		years--
	}
	return years
}

// Form is the user-editable part of a patient as submitted by the add and
// edit pages.
type Form struct {
	FirstName   string `form:"first_name" validate:"required,max=100,no_html"`
	LastName    string `form:"last_name" validate:"required,max=100,no_html"`
	DateOfBirth string `form:"date_of_birth" validate:"required,datetime=2006-01-02,not_future"`
	Gender      string `form:"gender" validate:"omitempty,oneof=female male other unknown"`
	Phone       string `form:"phone" validate:"omitempty,max=32,phone"`
	Email       string `form:"email" validate:"omitempty,email,max=254"`
	Address     string `form:"address" validate:"max=500"`
	Notes       string `form:"notes" validate:"max=10000"`
}

func FormFromPatient(p Patient) Form {
	dob := ""
	if !p.DateOfBirth.IsZero() {
		dob = p.DateOfBirth.Format(DateLayout)
	}

	return Form{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: dob,
		Gender:      p.Gender,
		Phone:       p.Phone,
		Email:       p.Email,
		Address:     p.Address,
		Notes:       p.Notes,
	}
}

func (f Form) Normalize() Form {
	return Form{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		DateOfBirth: strings.TrimSpace(f.DateOfBirth),
		Gender:      strings.ToLower(strings.TrimSpace(f.Gender)),
		Phone:       strings.TrimSpace(f.Phone),
		Email:       strings.ToLower(strings.TrimSpace(f.Email)),
		Address:     strings.TrimSpace(f.Address),
		Notes:       strings.TrimSpace(f.Notes),
	}
}

// ValidationError maps form field names to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "datetime":
		return "Use the YYYY-MM-DD format."
	case "not_future":
		return "Date cannot be in the future."
	case "oneof":
		return "Choose one of the listed options."
	case "email":
		return "Enter a valid email address."
	case "phone":
		return "Use digits, spaces and + ( ) - only."
	case "no_html":
		return "HTML is not allowed."
	default:
		return "Invalid value."
	}
}
