package api

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	tokenEndpoint = "/oauth/token"

	// applied when the identity provider omits expires_in
	defaultTokenTTL = 3600 * time.Second

	// refresh this long before the token actually expires
	refreshSkew = 30 * time.Second
)

// NewOAuth2Client builds a client for providers using the OAuth2
// client-credentials grant. No static secret is sent with requests; an
// access token is fetched lazily before the first request and cached until
// shortly before expiry. The cache lives in this instance only.
func NewOAuth2Client(provider, baseURL, clientID, clientSecret string, opts Options) Client {
	rc := newRestClient(baseURL, opts)
	c := &oauthClient{
		client: client{rest: rc, provider: provider},
		tokens: &tokenSource{
			rest:         rc,
			provider:     provider,
			clientID:     clientID,
			clientSecret: clientSecret,
			clock:        clockwork.NewRealClock(),
		},
	}
	return c
}

type oauthClient struct {
	client
	tokens *tokenSource
}

func (c *oauthClient) Request(ctx context.Context, method, path string, payload map[string]any) (map[string]any, error) {

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	// header set per request, not on the transport: the token can rotate
	return c.do(ctx, method, path, payload, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// tokenSource caches one access token for one client instance. Refresh is
// single-flight: concurrent callers wait for the in-flight grant instead of
// each hitting the identity provider.
type tokenSource struct {
	rest         *resty.Client
	provider     string
	clientID     string
	clientSecret string
	clock        clockwork.Clock
	group        singleflight.Group

	mu      sync.Mutex
	token   string
	expires time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {

	if token, ok := s.currentIfValid(); ok {
		return token, nil
	}

	v, err, _ := s.group.Do("token", func() (any, error) {
		// double check: another caller may have refreshed while we queued
		if token, ok := s.currentIfValid(); ok {
			return token, nil
		}
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *tokenSource) currentIfValid() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.expires.IsZero() {
		return "", false
	}
	if s.expires.Sub(s.clock.Now().UTC()) <= refreshSkew {
		return "", false
	}
	return s.token, true
}

func (s *tokenSource) fetch(ctx context.Context) (string, error) {

	log.WithField("component", "peppol.api").Debugf("%s: requesting access token", s.provider)

	var res tokenResponse
	resp, err := s.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     s.clientID,
			"client_secret": s.clientSecret,
		}).
		SetResult(&res).
		Post(tokenEndpoint)

	if err := checkError(s.provider, resp, err); err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", &RequestError{
			Provider:   s.provider,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
			Err:        errMissingAccessToken,
		}
	}

	ttl := defaultTokenTTL
	if res.ExpiresIn > 0 {
		ttl = time.Duration(res.ExpiresIn) * time.Second
	}

	s.mu.Lock()
	s.token = res.AccessToken
	s.expires = s.clock.Now().UTC().Add(ttl)
	s.mu.Unlock()

	return res.AccessToken, nil
}
