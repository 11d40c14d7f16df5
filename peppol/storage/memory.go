package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alapierre/go-peppol-client/peppol/model"
)

// MemoryStore keeps transmission records in process memory. Suitable for
// tests and single-node setups; production deployments plug in their own
// Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.TransmissionRecord
	byDoc   map[docKey]string
	locks   keyedMutex[string]
}

type docKey struct {
	provider   string
	documentID string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.TransmissionRecord),
		byDoc:   make(map[docKey]string),
	}
}

func (s *MemoryStore) CreateTransmission(_ context.Context, record *model.TransmissionRecord) (string, error) {

	now := time.Now().UTC()

	stored := *record
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.mu.Lock()
	s.records[stored.ID] = &stored
	s.byDoc[docKey{provider: stored.Provider, documentID: stored.DocumentID}] = stored.ID
	s.mu.Unlock()

	record.ID = stored.ID
	record.CreatedAt = now
	record.UpdatedAt = now

	return stored.ID, nil
}

func (s *MemoryStore) FindByProviderDocumentID(_ context.Context, provider, documentID string) (*model.TransmissionRecord, error) {

	s.mu.RLock()
	id, ok := s.byDoc[docKey{provider: provider, documentID: documentID}]
	rec := s.records[id]
	s.mu.RUnlock()

	if !ok || rec == nil {
		return nil, ErrNotFound
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to model.Status, errorDetail string) (bool, error) {

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return false, ErrNotFound
	}

	// per-record lock keeps the compare-and-set atomic against concurrent
	// webhook deliveries for the same document
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	if rec.Status != from {
		return false, nil
	}

	rec.Status = to
	if errorDetail != "" {
		rec.LastError = errorDetail
	}
	rec.UpdatedAt = time.Now().UTC()

	return true, nil
}
