// Package storage defines the persistence collaborator consumed by the
// orchestrator and the delivery tracker, plus an in-memory reference
// implementation.
//
// Implementations must be safe for concurrent use. UpdateStatus has
// compare-and-set semantics so concurrent webhook deliveries for the same
// document serialize instead of racing.
package storage

import (
	"context"
	"errors"

	"github.com/alapierre/go-peppol-client/peppol/model"
)

// ErrNotFound is returned when no transmission matches the lookup key.
var ErrNotFound = errors.New("transmission not found")

type Store interface {
	// CreateTransmission persists a new record and returns its id. The
	// record's ID, CreatedAt and UpdatedAt are assigned by the store.
	CreateTransmission(ctx context.Context, record *model.TransmissionRecord) (string, error)

	// FindByProviderDocumentID looks a record up by the composite key
	// (provider, documentID). Document ids are only unique per provider.
	FindByProviderDocumentID(ctx context.Context, provider, documentID string) (*model.TransmissionRecord, error)

	// UpdateStatus moves the record to status to only if its current status
	// equals from, recording errorDetail when non-empty. Returns whether the
	// update was applied.
	UpdateStatus(ctx context.Context, id string, from, to model.Status, errorDetail string) (bool, error)
}
