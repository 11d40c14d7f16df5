package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alapierre/go-peppol-client/peppol"
)

func TestVerificationLink(t *testing.T) {

	cfg := peppol.ProviderConfig{BaseURL: "https://api.unimaze.com/"}

	link, err := VerificationLink(cfg, peppol.Unimaze, "doc-42")
	require.NoError(t, err)
	assert.Equal(t, "https://api.unimaze.com/v1/invoices/doc-42/status", link)
}

func TestVerificationLinkRejectsBadInput(t *testing.T) {

	_, err := VerificationLink(peppol.ProviderConfig{}, peppol.Storecove, "doc-1")
	require.Error(t, err)

	_, err = VerificationLink(peppol.ProviderConfig{BaseURL: "https://x.test"}, peppol.Storecove, "")
	require.Error(t, err)

	_, err = VerificationLink(peppol.ProviderConfig{BaseURL: "api.storecove.com"}, peppol.Storecove, "doc-1")
	require.Error(t, err)
}

func TestGeneratePNG(t *testing.T) {

	png, err := Generate("https://api.storecove.com/document_submissions/doc-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
