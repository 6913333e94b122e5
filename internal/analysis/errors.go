package analysis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
)

// Kind classifies an analysis failure. Transient kinds are retried with
// backoff; the rest surface immediately.
type Kind string

const (
	KindRateLimited Kind = "rate_limited"
	KindTimeout     Kind = "timeout"
	KindServer      Kind = "server_error"
	KindMalformed   Kind = "malformed_response"
	KindExhausted   Kind = "retries_exhausted"
	KindAuth        Kind = "auth"
	KindOther       Kind = "other"
)

// Error is an analysis failure tagged with its kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error chain. Unclassified errors
// report KindOther.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindOther
}

// transient reports whether a failure kind is worth retrying.
func transient(k Kind) bool {
	return k == KindRateLimited || k == KindTimeout || k == KindServer
}

// classify maps an SDK or transport error to a failure kind.
func classify(err error) Kind {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return KindRateLimited
		case apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden:
			return KindAuth
		case apierr.StatusCode == http.StatusRequestTimeout:
			return KindTimeout
		case apierr.StatusCode >= 500:
			return KindServer
		default:
			return KindOther
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindOther
}
