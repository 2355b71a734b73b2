package apperr

import (
	"errors"
	"net/http"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

// timeoutErr fakes a timed-out dial for retry classification.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Configuration("missing key"), http.StatusInternalServerError},
		{Session("unknown session"), http.StatusNotFound},
		{Validation("field required"), http.StatusBadRequest},
		{Provider("upstream 503", 503, nil), http.StatusBadGateway},
		{Contract("bad shape", "{}"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Kind.String())
	}
}

func TestRetryable(t *testing.T) {
	timeout := &url.Error{Op: "Post", URL: "https://api.example.com", Err: timeoutErr{}}
	reset := &url.Error{Op: "Post", URL: "https://api.example.com", Err: syscall.ECONNRESET}
	noSuchHost := &url.Error{Op: "Post", URL: "https://api.example.com", Err: errors.New("no such host")}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", Provider("429", http.StatusTooManyRequests, nil), true},
		{"server error", Provider("503", http.StatusServiceUnavailable, nil), true},
		{"bad request", Provider("400", http.StatusBadRequest, nil), false},
		{"unauthorized", Provider("401", http.StatusUnauthorized, nil), false},
		{"timeout before status", Provider("request failed", 0, timeout), true},
		{"connection reset before status", Provider("request failed", 0, reset), true},
		{"permanent transport failure", Provider("request failed", 0, noSuchHost), false},
		{"contract violation", Contract("missing field", "{}"), false},
		{"validation", Validation("empty prompt"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestIsMatchesOnKind(t *testing.T) {
	err := Provider("upstream 503", 503, nil)
	assert.ErrorIs(t, err, &Error{Kind: KindProvider})
	assert.NotErrorIs(t, err, &Error{Kind: KindSession})
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("boom")
	assert.ErrorIs(t, Provider("request failed", 0, inner), inner)
}
