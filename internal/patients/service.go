package patients

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store     Store
	validator *formValidator
	now       func() time.Time
	newID     func() uuid.UUID
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = newFormValidator(s.now)
	return s
}

func (s *Service) Now() time.Time {
	return s.now()
}

// List returns all patients ordered by last name, then first name.
func (s *Service) List(ctx context.Context) ([]Patient, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i int, j int) bool {
		left := strings.ToLower(list[i].LastName)
		right := strings.ToLower(list[j].LastName)
		if left != right {
			return left < right
		}
		left = strings.ToLower(list[i].FirstName)
		right = strings.ToLower(list[j].FirstName)
		if left != right {
			return left < right
		}
		return list[i].ID.String() < list[j].ID.String()
	})
	return list, nil
}

// Get accepts the raw route parameter; a malformed ID is reported as
// ErrNotFound.
func (s *Service) Get(ctx context.Context, rawID string) (Patient, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Patient{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form Form) (Patient, error) {
	form = form.Normalize()
	dob, err := s.check(form)
	if err != nil {
		return Patient{}, err
	}

	now := s.now().UTC()
	patient := applyForm(Patient{ID: s.newID(), CreatedAt: now}, form, dob)
	patient.UpdatedAt = now

	if err := s.store.Insert(ctx, patient); err != nil {
		return Patient{}, fmt.Errorf("create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, rawID string, form Form) (Patient, error) {
	existing, err := s.Get(ctx, rawID)
	if err != nil {
		return Patient{}, err
	}

	form = form.Normalize()
	dob, err := s.check(form)
	if err != nil {
		return Patient{}, err
	}

	patient := applyForm(existing, form, dob)
	patient.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, patient); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Patient{}, err
		}
		return Patient{}, fmt.Errorf("update patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// ParseID accepts only the canonical lowercase hyphenated form, so every
// patient has exactly one edit URL.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id.String() != raw {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	return id, nil
}

func (s *Service) check(form Form) (time.Time, error) {
	if err := s.validator.Check(form); err != nil {
		return time.Time{}, err
	}

	dob, err := time.Parse(DateLayout, form.DateOfBirth)
	if err != nil {
		return time.Time{}, &ValidationError{Fields: map[string]string{"date_of_birth": "Use the YYYY-MM-DD format."}}
	}
	return dob, nil
}

func applyForm(p Patient, form Form, dob time.Time) Patient {
	p.FirstName = form.FirstName
	p.LastName = form.LastName
	p.DateOfBirth = dob
	p.Gender = form.Gender
	p.Phone = form.Phone
	p.Email = form.Email
	p.Address = form.Address
	p.Notes = form.Notes
	return p
}
