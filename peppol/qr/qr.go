// Package qr renders verification QR codes pointing at a provider's status
// page for a submitted document, for inclusion on printed or archived
// invoices.
package qr

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/alapierre/go-peppol-client/peppol"
)

// VerificationLink composes the absolute status URL for a transmitted
// document at the given provider.
func VerificationLink(cfg peppol.ProviderConfig, p peppol.Provider, documentID string) (string, error) {

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return "", fmt.Errorf("base URL is empty")
	}
	if documentID == "" {
		return "", fmt.Errorf("document id is empty")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL must include scheme and host, got: %q", base)
	}

	return strings.TrimSuffix(u.String(), "/") + p.StatusPath(documentID), nil
}

// Generate renders the link as a PNG QR code of the given pixel size.
func Generate(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = 300
	}
	return qrcode.Encode(link, qrcode.Medium, size)
}
