package appcore

import (
	"html/template"
	"strings"
	"time"

	"patientdesk/framework/router"
	"patientdesk/internal/markdown"
	"patientdesk/internal/patients"
)

const (
	HomePath           = "/"
	AddPatientPath     = "/add-patient"
	EditPatientPattern = "/edit-patient/:id"

	// ContentSelectorID is the element id every page's root carries. Live
	// responses patch it in place.
	ContentSelectorID = "content"
)

type FlashKind string

const (
	FlashSaved   FlashKind = "saved"
	FlashDeleted FlashKind = "deleted"
)

// LayoutView is what the root layout needs from every page view.
type LayoutView interface {
	LayoutPageTitle() string
	LayoutActivePath() string
}

type NavItem struct {
	Label  string
	Href   string
	Active bool
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type PatientRow struct {
	ID           string
	Name         string
	DateOfBirth  string
	Age          int
	Gender       string
	Contact      string
	NotesExcerpt string
	EditPath     string
}

type HomePageView struct {
	PageTitle string
	Flash     FlashKind
	Patients  []PatientRow
	AddPath   string
}

func (v HomePageView) LayoutPageTitle() string  { return v.PageTitle }
func (v HomePageView) LayoutActivePath() string { return HomePath }

func (v HomePageView) FlashMessage() string {
	switch v.Flash {
	case FlashSaved:
		return "Patient saved."
	case FlashDeleted:
		return "Patient deleted."
	default:
		return ""
	}
}

type PatientFormView struct {
	PageTitle   string
	ActivePath  string
	Action      string
	SubmitLabel string
	PatientName string
	UpdatedAt   string
	CanDelete   bool
	Form        patients.Form
	Errors      *patients.ValidationError
	NotesHTML   template.HTML
	Genders     []Option
	CancelPath  string
}

func (v PatientFormView) LayoutPageTitle() string  { return v.PageTitle }
func (v PatientFormView) LayoutActivePath() string { return v.ActivePath }

func (v PatientFormView) FieldError(name string) string {
	return v.Errors.Field(name)
}

func (v PatientFormView) HasErrors() bool {
	return v.Errors != nil && len(v.Errors.Fields) > 0
}

type NotFoundView struct {
	PageTitle   string
	RequestPath string
}

func (v NotFoundView) LayoutPageTitle() string  { return v.PageTitle }
func (v NotFoundView) LayoutActivePath() string { return "" }

func NavItems(activePath string) []NavItem {
	return []NavItem{
		{Label: "Patients", Href: HomePath, Active: activePath == HomePath},
		{Label: "Add patient", Href: AddPatientPath, Active: activePath == AddPatientPath},
	}
}

func EditPatientPath(id string) string {
	path, err := router.Build(EditPatientPattern, map[string]string{"id": id})
	if err != nil {
		return HomePath
	}
	return path
}

func newPatientRow(p patients.Patient, now time.Time, excerptLen int) PatientRow {
	contact := p.Phone
	if contact == "" {
		contact = p.Email
	}

	return PatientRow{
		ID:           p.ID.String(),
		Name:         p.FullName(),
		DateOfBirth:  p.DateOfBirth.Format(patients.DateLayout),
		Age:          p.AgeAt(now),
		Gender:       genderLabel(p.Gender),
		Contact:      contact,
		NotesExcerpt: markdown.Excerpt(p.Notes, excerptLen),
		EditPath:     EditPatientPath(p.ID.String()),
	}
}

var genderOptions = []Option{
	{Value: "", Label: "Not recorded"},
	{Value: "female", Label: "Female"},
	{Value: "male", Label: "Male"},
	{Value: "other", Label: "Other"},
	{Value: "unknown", Label: "Unknown"},
}

func genderChoices(selected string) []Option {
	out := make([]Option, len(genderOptions))
	for idx, option := range genderOptions {
		option.Selected = option.Value == strings.ToLower(strings.TrimSpace(selected))
		out[idx] = option
	}
	return out
}

func genderLabel(value string) string {
	for _, option := range genderOptions {
		if option.Value == value && value != "" {
			return option.Label
		}
	}
	return ""
}
