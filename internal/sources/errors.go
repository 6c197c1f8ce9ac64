package sources

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FailureKind classifies an invocation failure for retry decisions.
type FailureKind int

const (

	// FailureTransient covers timeouts, rate limiting, and server-side errors.
	// Transient failures are worth retrying.
	FailureTransient FailureKind = iota

	// FailurePermanent covers authentication problems, malformed requests, and
	// unusable responses. Permanent failures are not retried.
	FailurePermanent
)

// Failure describes why a service invocation failed.
type Failure struct {
	Service string
	Kind    FailureKind
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Service, f.Err.Error())
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Transient reports whether the error is a transient service failure.
func Transient(err error) bool {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind == FailureTransient
	}
	return false
}

func transient(service string, err error) *Failure {
	return &Failure{Service: service, Kind: FailureTransient, Err: err}
}

func permanent(service string, err error) *Failure {
	return &Failure{Service: service, Kind: FailurePermanent, Err: err}
}

// mapHTTPStatus classifies a non-2xx response status.
func mapHTTPStatus(service string, status int, body string) *Failure {
	err := errors.Errorf("unexpected HTTP status %d: %s", status, body)
	switch {
	case status == http.StatusTooManyRequests:
		return transient(service, errors.Wrap(err, "rate limited"))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return permanent(service, errors.Wrap(err, "authentication rejected"))
	case status == http.StatusBadRequest:
		return permanent(service, errors.Wrap(err, "request rejected"))
	case status == http.StatusRequestTimeout || status >= 500:
		return transient(service, err)
	default:
		return permanent(service, err)
	}
}
