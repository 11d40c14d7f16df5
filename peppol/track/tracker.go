// Package track reconciles asynchronous delivery confirmations from
// access-point webhooks with existing transmission records.
package track

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-peppol-client/peppol/model"
	"github.com/alapierre/go-peppol-client/peppol/storage"
)

var logger = logrus.WithField("component", "peppol.track")

var (
	// ErrInvalidSignature rejects a webhook whose HMAC does not match, or
	// which carries none while a secret is configured. The HTTP boundary
	// maps it to 401; treat occurrences as potential security events.
	ErrInvalidSignature = errors.New("webhook signature mismatch")

	// ErrMalformedPayload rejects a webhook body the ingestor cannot decode.
	// The HTTP boundary maps it to 400.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// Outcome classifies what ingesting one event did.
type Outcome int

const (
	// OutcomeApplied means the record advanced to the event's status.
	OutcomeApplied Outcome = iota
	// OutcomeNoop means the event was a duplicate or a regression; the
	// record is unchanged.
	OutcomeNoop
	// OutcomeIgnored means the event type is not recognized.
	OutcomeIgnored
	// OutcomeUnknownTransmission means no record matches the document id.
	// Records are never created from webhooks alone.
	OutcomeUnknownTransmission
)

type Result struct {
	Outcome Outcome
	Status  model.Status
	Record  *model.TransmissionRecord
}

// Ingestor validates and applies provider status callbacks. The secret is
// injected, never read from ambient state; pass nil to disable signature
// checking (e.g. providers that do not sign).
type Ingestor struct {
	store  storage.Store
	secret []byte
	events map[string]model.Status
}

func NewIngestor(store storage.Store, secret []byte) *Ingestor {
	return &Ingestor{
		store:  store,
		secret: secret,
		events: map[string]model.Status{
			"accepted":   model.StatusProcessing,
			"processing": model.StatusProcessing,
			"sent":       model.StatusSent,
			"forwarded":  model.StatusSent,
			"delivered":  model.StatusDelivered,
			"read":       model.StatusRead,
			"failed":     model.StatusFailed,
		},
	}
}

// MapEvent registers an additional provider-specific event type. Call
// during setup, before serving webhooks.
func (i *Ingestor) MapEvent(eventType string, status model.Status) {
	i.events[strings.ToLower(eventType)] = status
}

// Ingest verifies, parses and applies one raw webhook delivery.
//
// Unknown event types and unknown document ids are logged and discarded
// with a nil error so the provider side never sees a hard failure it would
// retry-storm on. Signature and decode failures come back as distinct
// error kinds for the HTTP boundary to map to status codes.
func (i *Ingestor) Ingest(ctx context.Context, payload []byte, signature string) (*Result, error) {

	if len(i.secret) > 0 {
		if signature == "" {
			return nil, errors.Wrap(ErrInvalidSignature, "signature header missing")
		}
		if !verifySignature(i.secret, payload, signature) {
			return nil, ErrInvalidSignature
		}
	}

	var event model.StatusEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}
	if event.Provider == "" || event.DocumentID == "" {
		return nil, errors.Wrap(ErrMalformedPayload, "provider or document id missing")
	}

	status, known := i.events[strings.ToLower(event.EventType)]
	if !known {
		logger.WithFields(logrus.Fields{
			"provider": event.Provider,
			"event":    event.EventType,
		}).Warn("unrecognized webhook event type, discarding")
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	record, err := i.store.FindByProviderDocumentID(ctx, event.Provider, event.DocumentID)
	if errors.Is(err, storage.ErrNotFound) {
		logger.WithFields(logrus.Fields{
			"provider":    event.Provider,
			"document_id": event.DocumentID,
		}).Warn("webhook for untracked transmission, discarding")
		return &Result{Outcome: OutcomeUnknownTransmission}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "transmission lookup")
	}

	detail := ""
	if status == model.StatusFailed {
		detail = event.Detail
	}

	for {
		if !record.Status.CanAdvance(status) {
			return &Result{Outcome: OutcomeNoop, Status: record.Status, Record: record}, nil
		}

		applied, err := i.store.UpdateStatus(ctx, record.ID, record.Status, status, detail)
		if err != nil {
			return nil, errors.Wrap(err, "status update")
		}
		if applied {
			logger.WithFields(logrus.Fields{
				"provider":    event.Provider,
				"document_id": event.DocumentID,
				"status":      status.Name(),
			}).Debug("transmission status advanced")
			record.Status = status
			if detail != "" {
				record.LastError = detail
			}
			return &Result{Outcome: OutcomeApplied, Status: status, Record: record}, nil
		}

		// lost a compare-and-set race; reload and re-evaluate
		record, err = i.store.FindByProviderDocumentID(ctx, event.Provider, event.DocumentID)
		if err != nil {
			return nil, errors.Wrap(err, "transmission reload")
		}
	}
}

// verifySignature checks a hex-encoded HMAC-SHA256 over the raw payload.
// An optional "sha256=" prefix is tolerated. Comparison is constant time.
func verifySignature(secret, payload []byte, signature string) bool {

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, provided)
}

// Sign computes the signature a provider would attach for the given secret.
// Exposed for integrations and tests that need to produce valid callbacks.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
