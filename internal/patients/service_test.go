package patients

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	next := 0
	ids := []uuid.UUID{
		uuid.MustParse("00000000-0000-4000-8000-000000000001"),
		uuid.MustParse("00000000-0000-4000-8000-000000000002"),
		uuid.MustParse("00000000-0000-4000-8000-000000000003"),
	}

	service := NewService(store,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() uuid.UUID {
			id := ids[next]
			next++
			return id
		}),
	)
	return service, store
}

func validForm() Form {
	return Form{
		FirstName:   " Ada ",
		LastName:    "Lovelace",
		DateOfBirth: "1990-12-10",
		Gender:      "Female",
		Phone:       "+44 20 7946 0958",
		Email:       "Ada@Example.com",
		Address:     "12 St James's Square, London",
		Notes:       "Allergic to **penicillin**.",
	}
}

func TestServiceCreate(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	patient, err := service.Create(ctx, validForm())
	require.NoError(t, err)

	assert.Equal(t, "00000000-0000-4000-8000-000000000001", patient.ID.String())
	assert.Equal(t, "Ada", patient.FirstName)
	assert.Equal(t, "female", patient.Gender)
	assert.Equal(t, "ada@example.com", patient.Email)
	assert.Equal(t, time.Date(1990, time.December, 10, 0, 0, 0, 0, time.UTC), patient.DateOfBirth)
	assert.Equal(t, fixedNow, patient.CreatedAt)
	assert.Equal(t, fixedNow, patient.UpdatedAt)
	assert.Equal(t, 33, patient.AgeAt(fixedNow))

	stored, err := store.Get(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient, stored)
}

func TestServiceCreateValidation(t *testing.T) {
	service, store := newTestService(t)

	form := Form{
		FirstName:   "<b>Ada</b>",
		DateOfBirth: "2030-01-01",
		Gender:      "robot",
		Phone:       "call me",
		Email:       "not-an-email",
	}

	_, err := service.Create(context.Background(), form)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, map[string]string{
		"first_name":    "HTML is not allowed.",
		"last_name":     "This field is required.",
		"date_of_birth": "Date cannot be in the future.",
		"gender":        "Choose one of the listed options.",
		"phone":         "Use digits, spaces and + ( ) - only.",
		"email":         "Enter a valid email address.",
	}, validationErr.Fields)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServiceCreateRejectsMalformedDate(t *testing.T) {
	service, _ := newTestService(t)

	form := validForm()
	form.DateOfBirth = "10/12/1990"

	_, err := service.Create(context.Background(), form)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "Use the YYYY-MM-DD format.", validationErr.Field("date_of_birth"))
}

func TestServiceListOrdersByName(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range [][2]string{{"Grace", "Hopper"}, {"Alan", "turing"}, {"Ada", "Hopper"}} {
		form := validForm()
		form.FirstName = name[0]
		form.LastName = name[1]
		_, err := service.Create(ctx, form)
		require.NoError(t, err)
	}

	list, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Ada Hopper", list[0].FullName())
	assert.Equal(t, "Grace Hopper", list[1].FullName())
	assert.Equal(t, "Alan turing", list[2].FullName())
}

func TestServiceUpdate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, validForm())
	require.NoError(t, err)

	form := FormFromPatient(created)
	form.Phone = "555-0100"
	form.Notes = ""

	updated, err := service.Update(ctx, created.ID.String(), form)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Empty(t, updated.Notes)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := service.Get(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestServiceNotFound(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.Update(ctx, uuid.NewString(), validForm())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, service.Delete(ctx, uuid.NewString()), ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, ""), ErrNotFound)
}

func TestServiceGetRequiresCanonicalID(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, validForm())
	require.NoError(t, err)
	canonical := created.ID.String()

	_, err = service.Get(ctx, canonical)
	require.NoError(t, err)

	aliases := []string{
		"urn:uuid:" + canonical,
		"{" + canonical + "}",
		strings.ReplaceAll(canonical, "-", ""),
		" " + canonical + " ",
		strings.ToUpper(canonical),
	}
	for _, alias := range aliases {
		_, err := service.Get(ctx, alias)
		assert.ErrorIs(t, err, ErrNotFound, "alias %q", alias)
	}
}

func TestServiceDelete(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, validForm())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID.String()))

	_, err = service.Get(ctx, created.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatientAgeAt(t *testing.T) {
	patient := Patient{DateOfBirth: time.Date(2000, time.March, 16, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 23, patient.AgeAt(fixedNow))
	assert.Equal(t, 24, patient.AgeAt(fixedNow.AddDate(0, 0, 1)))
	assert.Equal(t, 0, Patient{}.AgeAt(fixedNow))
}
