package patients

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists patients. Get, Update and Delete return ErrNotFound for
// unknown IDs.
type Store interface {
	List(ctx context.Context) ([]Patient, error)
	Get(ctx context.Context, id uuid.UUID) (Patient, error)
	Insert(ctx context.Context, patient Patient) error
	Update(ctx context.Context, patient Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemoryStore struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]Patient
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{patients: make(map[uuid.UUID]Patient)}
}

func (s *MemoryStore) List(_ context.Context) ([]Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Patient, 0, len(s.patients))
	for _, patient := range s.patients {
		out = append(out, patient)
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patient, ok := s.patients[id]
	if !ok {
		return Patient{}, ErrNotFound
	}
	return patient, nil
}

func (s *MemoryStore) Insert(_ context.Context, patient Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients[patient.ID] = patient
	return nil
}

func (s *MemoryStore) Update(_ context.Context, patient Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.patients[patient.ID]
	if !ok {
		return ErrNotFound
	}
	patient.CreatedAt = existing.CreatedAt
	s.patients[patient.ID] = patient
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[id]; !ok {
		return ErrNotFound
	}
	delete(s.patients, id)
	return nil
}
