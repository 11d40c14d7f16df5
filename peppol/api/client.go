package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alapierre/go-peppol-client/peppol/util"
)

// Client is the uniform capability every access point client exposes. The
// four concrete variants differ only in authentication; request handling is
// identical delegate-to-transport behaviour.
type Client interface {
	// Request issues one JSON request against the provider's base address.
	// Any transport error or non-2xx status comes back as *RequestError.
	Request(ctx context.Context, method, path string, payload map[string]any) (map[string]any, error)

	// GetTransport exposes the underlying resty client so tests can install
	// their own transport or inspect configuration.
	GetTransport() *resty.Client
}

// Options tune a client at construction time.
type Options struct {
	// Timeout bounds one provider attempt; zero means no client timeout.
	Timeout time.Duration
}

type client struct {
	rest     *resty.Client
	provider string
}

// NewBearerClient authenticates with a static bearer token.
func NewBearerClient(provider, baseURL, token string, opts Options) Client {
	rc := newRestClient(baseURL, opts)
	rc.SetHeader("Authorization", "Bearer "+token)
	return &client{rest: rc, provider: provider}
}

// NewAPIKeyClient authenticates with a static X-API-Key header.
func NewAPIKeyClient(provider, baseURL, key string, opts Options) Client {
	rc := newRestClient(baseURL, opts)
	rc.SetHeader("X-API-Key", key)
	return &client{rest: rc, provider: provider}
}

// NewBearerAPIKeyClient sets both the bearer and the API key header, for
// providers that demand the pair.
func NewBearerAPIKeyClient(provider, baseURL, token, key string, opts Options) Client {
	rc := newRestClient(baseURL, opts)
	rc.SetHeader("Authorization", "Bearer "+token)
	rc.SetHeader("X-API-Key", key)
	return &client{rest: rc, provider: provider}
}

func newRestClient(baseURL string, opts Options) *resty.Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	return rc
}

func (c *client) Request(ctx context.Context, method, path string, payload map[string]any) (map[string]any, error) {
	return c.do(ctx, method, path, payload, nil)
}

func (c *client) GetTransport() *resty.Client {
	return c.rest
}

func (c *client) do(ctx context.Context, method, path string, payload map[string]any, headers map[string]string) (map[string]any, error) {

	r := c.rest.R().SetContext(ctx)
	if util.HttpTraceEnabled() {
		r.EnableTrace()
	}
	if payload != nil {
		r.SetBody(payload)
	}
	for k, v := range headers {
		r.SetHeader(k, v)
	}

	var result map[string]any
	r.SetResult(&result)

	resp, err := r.Execute(method, path)
	printTraceInfo(c.provider, path, err, resp)

	if err := checkError(c.provider, resp, err); err != nil {
		return nil, err
	}
	return result, nil
}

func checkError(provider string, resp *resty.Response, err error) error {

	if err != nil {
		re := &RequestError{Provider: provider, Err: err}
		if resp != nil {
			re.StatusCode = resp.StatusCode()
		}
		return re
	}

	if resp.IsError() {

		body := resp.String()
		var errorMap map[string]any
		if body != "" {
			_ = json.Unmarshal([]byte(body), &errorMap)
		}

		return &RequestError{
			Provider:     provider,
			StatusCode:   resp.StatusCode(),
			Body:         body,
			ErrorDetails: errorMap,
		}
	}
	return nil
}

func printTraceInfo(provider, endpoint string, err error, resp *resty.Response) {

	if !util.HttpTraceEnabled() || resp == nil {
		return
	}

	fmt.Println("Response Info:")
	fmt.Println("  Provider   :", provider)
	fmt.Println("  Endpoint   :", endpoint)
	fmt.Println("  Error      :", err)
	fmt.Println("  Status Code:", resp.StatusCode())
	fmt.Println("  Status     :", resp.Status())
	fmt.Println("  Time       :", resp.Time())
	fmt.Println("  Received At:", resp.ReceivedAt())
	fmt.Println("  Body       :\n", resp)
	fmt.Println()

	ti := resp.Request.TraceInfo()
	fmt.Println("Request Trace Info:")
	fmt.Println("  DNSLookup    :", ti.DNSLookup)
	fmt.Println("  ConnTime     :", ti.ConnTime)
	fmt.Println("  TLSHandshake :", ti.TLSHandshake)
	fmt.Println("  ServerTime   :", ti.ServerTime)
	fmt.Println("  ResponseTime :", ti.ResponseTime)
	fmt.Println("  TotalTime    :", ti.TotalTime)
}
