package api

import (
	"errors"
	"fmt"
)

// errMissingAccessToken signals a 2xx token response without an access_token.
var errMissingAccessToken = errors.New("token response has no access_token")

// RequestError is returned for any transport failure or non-2xx response
// from an access point. Provider carries the access point name so failover
// reports stay attributable.
type RequestError struct {
	Provider     string
	StatusCode   int
	Err          error
	Body         string
	ErrorDetails map[string]any
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("%s: status: %d err: %v message: %s", r.Provider, r.StatusCode, r.Err, r.Body)
}

func (r *RequestError) Unwrap() error {
	return r.Err
}
