// Package apierr classifies failures talking to the storefront backend and
// derives the single human readable message stores surface to the UI.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/storefront/internal/envelope"
)

// Kind is the coarse failure category.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindAuthRejected
	KindBackendRejected
	KindValidationGap
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthRejected:
		return "auth_rejected"
	case KindBackendRejected:
		return "backend_rejected"
	case KindValidationGap:
		return "validation_gap"
	default:
		return "unknown"
	}
}

// StatusError is a non-2xx response. The body is kept verbatim.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if msg, ok := envelope.Message(e.Body); ok {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: request failed with status code %d", e.Method, e.Path, e.StatusCode)
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError is an outcome the client refuses even though HTTP succeeded:
// a declared non-success envelope, or a response missing required data.
// Err is the operation's sentinel so callers can use errors.Is.
type RejectedError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Message
}

func (e *RejectedError) Unwrap() error { return e.Err }

// Reject builds a RejectedError.
func Reject(kind Kind, sentinel error, message string) error {
	return &RejectedError{Kind: kind, Message: message, Err: sentinel}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	var status *StatusError
	if errors.As(err, &status) {
		if status.StatusCode == http.StatusUnauthorized {
			return KindAuthRejected
		}
		return KindBackendRejected
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Kind
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return KindTransport
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindAuthRejected
}

// Message derives one display string from err. Precedence: a message the
// backend declared (nested error object first, then top level), then a short
// plain-text body, then the transport failure text, then fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var status *StatusError
	if errors.As(err, &status) {
		if msg, ok := envelope.Message(status.Body); ok {
			return msg
		}
		if text := plainBody(status.Body); text != "" {
			return text
		}
		return fallback
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		if rejected.Message != "" {
			return rejected.Message
		}
		return fallback
	}

	var transport *TransportError
	if errors.As(err, &transport) && transport.Err != nil {
		return transport.Err.Error()
	}

	return fallback
}

// plainBody returns a short non-JSON body, or a JSON string body unquoted.
func plainBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" || !utf8.ValidString(text) || len(text) > 300 {
		return ""
	}
	switch text[0] {
	case '{', '[', '<':
		return ""
	case '"':
		return strings.Trim(text, `"`)
	}
	return text
}
