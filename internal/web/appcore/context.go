package appcore

import (
	"errors"

	"patientdesk/internal/patients"
)

const defaultNotesExcerpt = 140

var errPatientServiceUnavailable = errors.New("patient service unavailable")

type Context struct {
	service      *patients.Service
	notesExcerpt int
}

func NewContext(service *patients.Service, notesExcerpt int) *Context {
	if notesExcerpt < 1 {
		notesExcerpt = defaultNotesExcerpt
	}
	return &Context{service: service, notesExcerpt: notesExcerpt}
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, patients.ErrNotFound)
}

func patientService(appCtx *Context) (*patients.Service, error) {
	if appCtx == nil || appCtx.service == nil {
		return nil, errPatientServiceUnavailable
	}
	return appCtx.service, nil
}
