package peppol

import (
	"github.com/go-faster/errors"

	"github.com/alapierre/go-peppol-client/peppol/api"
)

// Factory builds provider clients from injected configuration. Every call
// yields a fresh client with its own transport and, for the OAuth2 variant,
// its own empty token cache, so concurrent callers never share credential
// state.
type Factory struct {
	configs map[Provider]ProviderConfig
}

func NewFactory(configs map[Provider]ProviderConfig) *Factory {
	return &Factory{configs: configs}
}

func (f *Factory) Create(p Provider) (api.Client, error) {

	cfg, ok := f.configs[p]
	if !ok {
		return nil, errors.Wrap(ErrProviderNotConfigured, p.Name())
	}

	opts := api.Options{Timeout: cfg.Timeout}

	switch p {
	case Storecove:
		return api.NewBearerClient(p.Name(), cfg.BaseURL, cfg.Credential.Token, opts), nil
	case Unimaze:
		return api.NewAPIKeyClient(p.Name(), cfg.BaseURL, cfg.Credential.APIKey, opts), nil
	case Qvalia:
		return api.NewOAuth2Client(p.Name(), cfg.BaseURL, cfg.Credential.ClientID, cfg.Credential.ClientSecret, opts), nil
	case Banqup:
		return api.NewBearerAPIKeyClient(p.Name(), cfg.BaseURL, cfg.Credential.Token, cfg.Credential.APIKey, opts), nil
	}
	panic("invalid provider")
}

// CreateFromName resolves a provider by name first; unrecognized names
// return ErrUnknownProvider.
func (f *Factory) CreateFromName(name string) (api.Client, error) {
	var p Provider
	if err := p.UnmarshalText([]byte(name)); err != nil {
		return nil, err
	}
	return f.Create(p)
}
