package peppol

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/alapierre/go-peppol-client/peppol/model"
	"github.com/alapierre/go-peppol-client/peppol/storage"
	"github.com/alapierre/go-peppol-client/peppol/ubl"
)

// Sender is the transmission orchestrator: it builds the document once and
// walks the provider order sequentially until one accepts it. Providers are
// never raced in parallel; that would risk duplicate submissions into the
// network.
type Sender struct {
	factory *Factory
	store   storage.Store
}

func NewSender(factory *Factory, store storage.Store) *Sender {
	return &Sender{factory: factory, store: store}
}

// TransmissionResult reports the accepted submission plus every failed
// attempt that preceded it, for observability. Attempts are not persisted
// on the record.
type TransmissionResult struct {
	Provider    Provider
	DocumentID  string
	SecondaryID string
	Record      *model.TransmissionRecord
	Attempts    []AttemptError
}

// Send transmits the invoice through the first provider in order that
// accepts it. Document assembly and routing errors abort before any network
// call; per-provider failures roll over to the next provider; if every
// provider fails the aggregate *AllProvidersFailedError is returned and no
// record is created.
func (s *Sender) Send(ctx context.Context, invoice *model.InvoiceSnapshot, order []Provider) (*TransmissionResult, error) {

	document, err := ubl.Build(invoice)
	if err != nil {
		return nil, err
	}

	if invoice.Buyer.EndpointID == "" {
		return nil, ErrMissingRoutingInfo
	}

	var attempts []AttemptError
	for _, p := range order {

		client, err := s.factory.Create(p)
		if err != nil {
			attempts = append(attempts, AttemptError{Provider: p, Err: err})
			continue
		}

		payload := submissionPayload(p, document, invoice)
		res, err := client.Request(ctx, http.MethodPost, p.SubmitPath(), payload)
		if err != nil {
			logger.WithField("provider", p.Name()).Warnf("submission failed: %v", err)
			attempts = append(attempts, AttemptError{Provider: p, Err: err})
			continue
		}

		documentID, secondaryID := submissionIDs(p, res)

		record := &model.TransmissionRecord{
			InvoiceID:   invoice.Number,
			Provider:    p.Name(),
			DocumentID:  documentID,
			SecondaryID: secondaryID,
			Status:      model.StatusSubmitted,
		}
		if _, err := s.store.CreateTransmission(ctx, record); err != nil {
			return nil, errors.Wrap(err, "persist transmission")
		}

		logger.WithField("provider", p.Name()).
			Debugf("invoice %s submitted as document %s", invoice.Number, documentID)

		return &TransmissionResult{
			Provider:    p,
			DocumentID:  documentID,
			SecondaryID: secondaryID,
			Record:      record,
			Attempts:    attempts,
		}, nil
	}

	return nil, &AllProvidersFailedError{Attempts: attempts}
}

// Status fetches the provider's own view of a submitted document.
func (s *Sender) Status(ctx context.Context, p Provider, documentID string) (map[string]any, error) {
	client, err := s.factory.Create(p)
	if err != nil {
		return nil, err
	}
	return client.Request(ctx, http.MethodGet, p.StatusPath(documentID), nil)
}

// submissionPayload maps the canonical document and routing profile onto
// the request body shape each provider expects.
func submissionPayload(p Provider, document []byte, invoice *model.InvoiceSnapshot) map[string]any {

	encoded := base64.StdEncoding.EncodeToString(document)
	buyer := invoice.Buyer

	switch p {
	case Storecove:
		return map[string]any{
			"routing": map[string]any{
				"eIdentifiers": []map[string]any{
					{"scheme": buyer.EndpointScheme, "id": buyer.EndpointID},
				},
			},
			"document": map[string]any{
				"documentType": "invoice",
				"rawDocumentData": map[string]any{
					"document": encoded,
					"mimeType": "application/xml",
				},
			},
		}
	case Unimaze:
		return map[string]any{
			"receiver":       buyer.EndpointScheme + ":" + buyer.EndpointID,
			"documentFormat": "UBL",
			"content":        encoded,
		}
	case Qvalia:
		return map[string]any{
			"type": "invoice",
			"recipient": map[string]any{
				"identifier": buyer.EndpointID,
				"scheme":     buyer.EndpointScheme,
			},
			"payload": encoded,
		}
	case Banqup:
		return map[string]any{
			"customerEndpoint": map[string]any{
				"identifier": buyer.EndpointID,
				"scheme":     buyer.EndpointScheme,
			},
			"invoice": encoded,
		}
	}
	panic("invalid provider")
}

// submissionIDs pulls the provider-assigned primary and secondary ids out
// of the submission response.
func submissionIDs(p Provider, res map[string]any) (documentID, secondaryID string) {

	switch p {
	case Storecove:
		documentID, secondaryID = str(res["id"]), str(res["guid"])
	case Unimaze:
		documentID, secondaryID = str(res["invoiceId"]), str(res["trackingId"])
	case Qvalia:
		documentID, secondaryID = str(res["transmissionId"]), str(res["reference"])
	case Banqup:
		documentID, secondaryID = str(res["submissionId"]), str(res["uuid"])
	}
	if documentID == "" {
		documentID = str(res["id"])
	}
	if documentID == "" {
		documentID = secondaryID
	}
	return documentID, secondaryID
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
