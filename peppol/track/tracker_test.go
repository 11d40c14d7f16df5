package track

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alapierre/go-peppol-client/peppol/model"
	"github.com/alapierre/go-peppol-client/peppol/storage"
)

var secret = []byte("whsec_test")

func newRecord(t *testing.T, store storage.Store, status model.Status) *model.TransmissionRecord {
	t.Helper()

	record := &model.TransmissionRecord{
		InvoiceID:  "INV-1",
		Provider:   "storecove",
		DocumentID: "doc-1",
		Status:     model.StatusSubmitted,
	}
	_, err := store.CreateTransmission(context.Background(), record)
	require.NoError(t, err)

	if status != model.StatusSubmitted {
		applied, err := store.UpdateStatus(context.Background(), record.ID, model.StatusSubmitted, status, "")
		require.NoError(t, err)
		require.True(t, applied)
	}
	return record
}

func signedEvent(eventType string) ([]byte, string) {
	payload := []byte(`{"provider":"storecove","document_id":"doc-1","event":"` + eventType + `"}`)
	return payload, Sign(secret, payload)
}

func TestIngestAdvancesStatus(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, secret)

	payload, sig := signedEvent("delivered")
	result, err := ingestor.Ingest(context.Background(), payload, sig)
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, model.StatusDelivered, result.Status)

	record, err := store.FindByProviderDocumentID(context.Background(), "storecove", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, record.Status)
}

func TestIngestDuplicateIsNoop(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, secret)

	payload, sig := signedEvent("delivered")

	first, err := ingestor.Ingest(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, first.Outcome)

	second, err := ingestor.Ingest(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, second.Outcome)
	assert.Equal(t, model.StatusDelivered, second.Status)
}

func TestIngestNeverRegresses(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusDelivered)
	ingestor := NewIngestor(store, secret)

	payload, sig := signedEvent("processing")
	result, err := ingestor.Ingest(context.Background(), payload, sig)
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoop, result.Outcome)

	record, err := store.FindByProviderDocumentID(context.Background(), "storecove", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, record.Status)
}

func TestIngestRejectsBadSignature(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, secret)

	payload, _ := signedEvent("delivered")

	_, err := ingestor.Ingest(context.Background(), payload, "deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)

	// the status-update step must not have been reached
	record, err := store.FindByProviderDocumentID(context.Background(), "storecove", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, record.Status)
}

func TestIngestRejectsMissingSignature(t *testing.T) {

	ingestor := NewIngestor(storage.NewMemoryStore(), secret)

	payload, _ := signedEvent("delivered")
	_, err := ingestor.Ingest(context.Background(), payload, "")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestIngestWithoutSecretSkipsVerification(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, nil)

	payload, _ := signedEvent("delivered")
	result, err := ingestor.Ingest(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, result.Outcome)
}

func TestIngestToleratesPrefixedSignature(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, secret)

	payload, sig := signedEvent("delivered")
	result, err := ingestor.Ingest(context.Background(), payload, "sha256="+sig)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, result.Outcome)
}

func TestIngestMalformedPayload(t *testing.T) {

	ingestor := NewIngestor(storage.NewMemoryStore(), nil)

	_, err := ingestor.Ingest(context.Background(), []byte("{nope"), "")
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ingestor.Ingest(context.Background(), []byte(`{"event":"delivered"}`), "")
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestIngestUnknownTransmission(t *testing.T) {

	ingestor := NewIngestor(storage.NewMemoryStore(), nil)

	payload := []byte(`{"provider":"storecove","document_id":"ghost","event":"delivered"}`)
	result, err := ingestor.Ingest(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownTransmission, result.Outcome)
}

func TestIngestUnknownEventType(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, nil)

	payload := []byte(`{"provider":"storecove","document_id":"doc-1","event":"sharpened"}`)
	result, err := ingestor.Ingest(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, result.Outcome)
}

func TestIngestFailureCapturesDetail(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, nil)

	payload := []byte(`{"provider":"storecove","document_id":"doc-1","event":"failed","detail":"recipient not registered"}`)
	result, err := ingestor.Ingest(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, result.Outcome)

	record, err := store.FindByProviderDocumentID(context.Background(), "storecove", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, record.Status)
	assert.Equal(t, "recipient not registered", record.LastError)
}

func TestIngestCustomEventMapping(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, nil)
	ingestor.MapEvent("handed_over", model.StatusSent)

	payload := []byte(`{"provider":"storecove","document_id":"doc-1","event":"handed_over"}`)
	result, err := ingestor.Ingest(context.Background(), payload, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, result.Outcome)
	assert.Equal(t, model.StatusSent, result.Status)
}

func TestIngestConcurrentDeliveriesApplyOnce(t *testing.T) {

	store := storage.NewMemoryStore()
	newRecord(t, store, model.StatusSubmitted)
	ingestor := NewIngestor(store, nil)

	payload := []byte(`{"provider":"storecove","document_id":"doc-1","event":"delivered"}`)

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := ingestor.Ingest(context.Background(), payload, "")
			if !assert.NoError(t, err) {
				return
			}
			if result.Outcome == OutcomeApplied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)

	record, err := store.FindByProviderDocumentID(context.Background(), "storecove", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, record.Status)
}
