package appcore

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"patientdesk/framework"
	"patientdesk/internal/markdown"
	"patientdesk/internal/patients"
)

const (
	intentField  = "intent"
	intentDelete = "delete"
	flashParam   = "flash"
)

func LoadHomePage(
	ctx context.Context,
	appCtx *Context,
	r *http.Request,
	_ framework.EmptyParams,
) (HomePageView, error) {
	service, err := patientService(appCtx)
	if err != nil {
		return HomePageView{}, err
	}

	list, err := service.List(ctx)
	if err != nil {
		return HomePageView{}, err
	}

	now := service.Now()
	rows := make([]PatientRow, 0, len(list))
	for _, patient := range list {
		rows = append(rows, newPatientRow(patient, now, appCtx.notesExcerpt))
	}

	return HomePageView{
		PageTitle: "Patients",
		Flash:     parseFlash(r.URL.Query().Get(flashParam)),
		Patients:  rows,
		AddPath:   AddPatientPath,
	}, nil
}

func LoadAddPatientPage(
	_ context.Context,
	_ *Context,
	_ *http.Request,
	_ framework.EmptyParams,
) (PatientFormView, error) {
	return newAddPatientView(patients.Form{}, nil), nil
}

func SubmitAddPatient(
	ctx context.Context,
	appCtx *Context,
	r *http.Request,
	_ framework.EmptyParams,
) (framework.ActionResult[PatientFormView], error) {
	service, err := patientService(appCtx)
	if err != nil {
		return framework.ActionResult[PatientFormView]{}, err
	}

	form := formFromRequest(r)
	if _, err := service.Create(ctx, form); err != nil {
		var validationErr *patients.ValidationError
		if errors.As(err, &validationErr) {
			return framework.ActionResult[PatientFormView]{
				View:   newAddPatientView(form, validationErr),
				Status: http.StatusUnprocessableEntity,
			}, nil
		}
		return framework.ActionResult[PatientFormView]{}, err
	}

	return framework.ActionResult[PatientFormView]{RedirectTo: flashPath(FlashSaved)}, nil
}

func LoadEditPatientPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	params framework.IDParams,
) (PatientFormView, error) {
	service, err := patientService(appCtx)
	if err != nil {
		return PatientFormView{}, err
	}

	patient, err := service.Get(ctx, params.ID)
	if err != nil {
		return PatientFormView{}, err
	}

	return newEditPatientView(patient, patients.FormFromPatient(patient), nil), nil
}

func SubmitEditPatient(
	ctx context.Context,
	appCtx *Context,
	r *http.Request,
	params framework.IDParams,
) (framework.ActionResult[PatientFormView], error) {
	service, err := patientService(appCtx)
	if err != nil {
		return framework.ActionResult[PatientFormView]{}, err
	}

	if strings.TrimSpace(r.PostForm.Get(intentField)) == intentDelete {
		if err := service.Delete(ctx, params.ID); err != nil {
			return framework.ActionResult[PatientFormView]{}, err
		}
		return framework.ActionResult[PatientFormView]{RedirectTo: flashPath(FlashDeleted)}, nil
	}

	form := formFromRequest(r)
	if _, err := service.Update(ctx, params.ID, form); err != nil {
		var validationErr *patients.ValidationError
		if !errors.As(err, &validationErr) {
			return framework.ActionResult[PatientFormView]{}, err
		}

		patient, getErr := service.Get(ctx, params.ID)
		if getErr != nil {
			return framework.ActionResult[PatientFormView]{}, getErr
		}
		return framework.ActionResult[PatientFormView]{
			View:   newEditPatientView(patient, form, validationErr),
			Status: http.StatusUnprocessableEntity,
		}, nil
	}

	return framework.ActionResult[PatientFormView]{RedirectTo: flashPath(FlashSaved)}, nil
}

func newAddPatientView(form patients.Form, validationErr *patients.ValidationError) PatientFormView {
	return PatientFormView{
		PageTitle:   "Add patient",
		ActivePath:  AddPatientPath,
		Action:      AddPatientPath,
		SubmitLabel: "Add patient",
		Form:        form,
		Errors:      validationErr,
		Genders:     genderChoices(form.Gender),
		CancelPath:  HomePath,
	}
}

func newEditPatientView(
	patient patients.Patient,
	form patients.Form,
	validationErr *patients.ValidationError,
) PatientFormView {
	return PatientFormView{
		PageTitle:   "Edit " + patient.FullName(),
		ActivePath:  EditPatientPattern,
		Action:      EditPatientPath(patient.ID.String()),
		SubmitLabel: "Save changes",
		PatientName: patient.FullName(),
		UpdatedAt:   patient.UpdatedAt.UTC().Format("2006-01-02 15:04 MST"),
		CanDelete:   true,
		Form:        form,
		Errors:      validationErr,
		NotesHTML:   markdown.ToHTML(patient.Notes),
		Genders:     genderChoices(form.Gender),
		CancelPath:  HomePath,
	}
}

func formFromRequest(r *http.Request) patients.Form {
	values := r.PostForm
	return patients.Form{
		FirstName:   values.Get("first_name"),
		LastName:    values.Get("last_name"),
		DateOfBirth: values.Get("date_of_birth"),
		Gender:      values.Get("gender"),
		Phone:       values.Get("phone"),
		Email:       values.Get("email"),
		Address:     values.Get("address"),
		Notes:       values.Get("notes"),
	}
}

func flashPath(kind FlashKind) string {
	return HomePath + "?" + url.Values{flashParam: []string{string(kind)}}.Encode()
}

func parseFlash(raw string) FlashKind {
	switch kind := FlashKind(strings.TrimSpace(raw)); kind {
	case FlashSaved, FlashDeleted:
		return kind
	default:
		return ""
	}
}
