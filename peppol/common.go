// Package peppol orchestrates e-invoice transmission through interchangeable
// Peppol access points: provider selection, ordered failover and the
// resulting transmission records.
package peppol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("component", "peppol")

var (
	// ErrMissingRoutingInfo fails a send before any provider is contacted.
	ErrMissingRoutingInfo = errors.New("buyer routing profile has no endpoint identifier")

	// ErrUnknownProvider marks a provider name outside the known set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrProviderNotConfigured means the factory has no configuration for
	// the requested provider.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// AttemptError records one failed provider attempt during failover.
type AttemptError struct {
	Provider Provider
	Err      error
}

func (a AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", a.Provider.Name(), a.Err)
}

func (a AttemptError) Unwrap() error {
	return a.Err
}

// AllProvidersFailedError aggregates every attempt of a fully failed send,
// in the order the providers were tried. The invoice itself may be retried
// later, e.g. after an operator fixes a credential.
type AllProvidersFailedError struct {
	Attempts []AttemptError
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("all %d providers failed: %s", len(e.Attempts), strings.Join(parts, "; "))
}
