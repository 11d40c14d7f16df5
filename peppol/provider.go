package peppol

import (
	"fmt"
	"strings"
	"time"
)

// Provider identifies one supported Peppol access point.
type Provider int

const (
	// Storecove authenticates with a static bearer token.
	Storecove Provider = iota
	// Unimaze authenticates with a static API key.
	Unimaze
	// Qvalia authenticates with an OAuth2 client-credentials grant.
	Qvalia
	// Banqup requires both a bearer token and an API key.
	Banqup
)

func (p Provider) Name() string {
	switch p {
	case Storecove:
		return "storecove"
	case Unimaze:
		return "unimaze"
	case Qvalia:
		return "qvalia"
	case Banqup:
		return "banqup"
	}
	panic("invalid provider")
}

func (p Provider) String() string {
	return p.Name()
}

func (p *Provider) UnmarshalText(text []byte) error {
	val := strings.ToLower(strings.TrimSpace(string(text)))

	switch val {
	case "storecove":
		*p = Storecove
	case "unimaze":
		*p = Unimaze
	case "qvalia":
		*p = Qvalia
	case "banqup":
		*p = Banqup
	default:
		return fmt.Errorf("%w: %q (allowed: storecove, unimaze, qvalia, banqup)", ErrUnknownProvider, val)
	}
	return nil
}

// SubmitPath is the provider's document submission endpoint.
func (p Provider) SubmitPath() string {
	switch p {
	case Storecove:
		return "/document_submissions"
	case Unimaze:
		return "/v1/invoices"
	case Qvalia:
		return "/api/transmissions"
	case Banqup:
		return "/api/v1/invoices/submit"
	}
	panic("invalid provider")
}

// StatusPath is the provider's delivery status endpoint for a submitted
// document.
func (p Provider) StatusPath(documentID string) string {
	switch p {
	case Storecove:
		return "/document_submissions/" + documentID
	case Unimaze:
		return "/v1/invoices/" + documentID + "/status"
	case Qvalia:
		return "/api/transmissions/" + documentID + "/status"
	case Banqup:
		return "/api/v1/invoices/submissions/" + documentID
	}
	panic("invalid provider")
}

// Credential holds the authentication material for one provider. Which
// fields matter depends on the provider's auth variant. Owned by
// configuration, read-only to the core and never persisted here.
type Credential struct {
	Token        string
	APIKey       string
	ClientID     string
	ClientSecret string
}

// ProviderConfig configures one access point connection.
type ProviderConfig struct {
	BaseURL    string
	Credential Credential

	// Timeout bounds a single provider attempt; on expiry the attempt
	// counts as failed and failover proceeds.
	Timeout time.Duration
}
