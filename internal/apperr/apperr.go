// Package apperr defines the error taxonomy shared by the provider clients
// and the HTTP layer: configuration, session, validation, provider and
// response-contract failures, each with a fixed HTTP status mapping.
package apperr

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

type Kind int

const (
	// KindConfiguration means a required credential or setting is absent.
	// Surfaced as a generic 500 so no credential detail leaks.
	KindConfiguration Kind = iota
	// KindSession means the session is unknown, expired, or has no
	// provider-user association yet.
	KindSession
	// KindValidation means a required request field is missing or malformed.
	KindValidation
	// KindProvider means an upstream call returned a non-success status or
	// failed at the transport level.
	KindProvider
	// KindContract means the upstream response arrived but violated the
	// expected JSON shape. Never retryable.
	KindContract
)

type Error struct {
	Kind Kind
	Msg  string
	// UpstreamStatus carries the provider's HTTP status for KindProvider
	// errors; zero for transport-level failures.
	UpstreamStatus int
	// RawContent holds the offending payload for KindContract errors so it
	// can be logged for diagnostics.
	RawContent string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Msg: msg}
}

func Session(msg string) *Error {
	return &Error{Kind: KindSession, Msg: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Provider wraps an upstream failure. status is the upstream HTTP status, or
// zero when the request never completed (err then holds the transport error).
func Provider(msg string, status int, err error) *Error {
	return &Error{Kind: KindProvider, Msg: msg, UpstreamStatus: status, Err: err}
}

func Contract(msg, rawContent string) *Error {
	return &Error{Kind: KindContract, Msg: msg, RawContent: rawContent}
}

// HTTPStatus maps the taxonomy onto response codes. Provider and contract
// failures are 502 to distinguish "their fault" from "our fault".
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindConfiguration:
		return http.StatusInternalServerError
	case KindSession:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindProvider, KindContract:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a failed generation call may be attempted again:
// provider status 429 or >=500, or a transient network error (timeout,
// connection reset). Contract violations are never retryable since a retry
// cannot fix a malformed response shape.
func Retryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind != KindProvider {
			return false
		}
		if ae.UpstreamStatus == http.StatusTooManyRequests || ae.UpstreamStatus >= 500 {
			return true
		}
		if ae.UpstreamStatus == 0 {
			return isTransient(ae.Err)
		}
		return false
	}
	return isTransient(err)
}

// isTransient matches timeouts and connection resets only. Permanent
// transport failures (unknown host, bad certificate) are excluded: retrying
// them cannot succeed.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET)
}

// Is lets errors.Is match on kind through sentinel comparison.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Kind == te.Kind
}

var _ fmt.Stringer = Kind(0)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindSession:
		return "session"
	case KindValidation:
		return "validation"
	case KindProvider:
		return "provider"
	case KindContract:
		return "contract"
	default:
		return "unknown"
	}
}
