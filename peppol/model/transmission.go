package model

import (
	"fmt"
	"strings"
	"time"
)

// Status of a transmission on the Peppol network. Submitted is set once by
// the orchestrator; every later transition comes from a provider webhook.
type Status int

const (
	StatusSubmitted Status = iota
	StatusProcessing
	StatusSent
	StatusDelivered
	StatusRead
	StatusFailed
)

func (s Status) Name() string {
	switch s {
	case StatusSubmitted:
		return "submitted"
	case StatusProcessing:
		return "processing"
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	case StatusFailed:
		return "failed"
	}
	panic("invalid status")
}

func (s Status) String() string {
	return s.Name()
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.Name()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	val := strings.ToLower(strings.TrimSpace(string(text)))

	switch val {
	case "submitted":
		*s = StatusSubmitted
	case "processing":
		*s = StatusProcessing
	case "sent":
		*s = StatusSent
	case "delivered":
		*s = StatusDelivered
	case "read":
		*s = StatusRead
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("invalid transmission status: %q", val)
	}
	return nil
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusRead || s == StatusFailed
}

// CanAdvance reports whether moving to next is forward progress. Duplicate
// events and regressions both return false, so applying them is a no-op.
func (s Status) CanAdvance(next Status) bool {
	if s.Terminal() || s == next {
		return false
	}
	if next == StatusFailed {
		return true
	}
	return next.rank() > s.rank()
}

func (s Status) rank() int {
	switch s {
	case StatusSubmitted:
		return 0
	case StatusProcessing:
		return 1
	case StatusSent:
		return 2
	case StatusDelivered, StatusRead:
		return 3
	}
	return 0
}

// TransmissionRecord is the durable trace of one accepted submission.
// Created by the orchestrator in StatusSubmitted; advanced only by the
// delivery tracker. Never deleted by the core.
type TransmissionRecord struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id"`
	Provider    string    `json:"provider"`
	DocumentID  string    `json:"document_id"`
	SecondaryID string    `json:"secondary_id,omitempty"`
	Status      Status    `json:"status"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
