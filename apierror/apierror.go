// Package apierror defines the single canonical error shape surfaced at every
// boundary of the SDK.
//
// Every failure — transport, validation, identity provider, simulated store —
// is converted into an *Error before it reaches a caller. Callers classify with
// the Is* predicates and render with UserMessage; they never inspect the
// underlying transport or library error types.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a normalized error.
type Kind string

const (
	KindNetwork      Kind = "network"      // no response received
	KindValidation   Kind = "validation"   // payload failed a schema check
	KindUnauthorized Kind = "unauthorized" // 401
	KindForbidden    Kind = "forbidden"    // 403
	KindNotFound     Kind = "not_found"    // 404
	KindServer       Kind = "server"       // >= 500
	KindUnclassified Kind = "unclassified"
)

// Error is the normalized error surfaced to callers.
type Error struct {
	Message    string         `json:"message"`
	Kind       Kind           `json:"kind"`
	Status     int            `json:"status,omitempty"`
	Code       string         `json:"code,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Network    bool           `json:"network,omitempty"`
	Validation bool           `json:"validation,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// kindForStatus maps an HTTP status code to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindUnclassified
	}
}

// FromNetwork normalizes a transport failure where no response was received
// (connection refused, timeout, DNS failure). No status code is set.
func FromNetwork(err error) *Error {
	if e := asError(err); e != nil {
		return e
	}
	return &Error{
		Message: "network request failed",
		Kind:    KindNetwork,
		Network: true,
	}
}

// FromResponse normalizes a transport failure that carries an HTTP response.
// backendMessage is the structured message extracted from the response body;
// when empty, fallbackMessage (the transport's own description) is used.
func FromResponse(status int, backendMessage, fallbackMessage string) *Error {
	msg := backendMessage
	if msg == "" {
		msg = fallbackMessage
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{
		Message: msg,
		Kind:    kindForStatus(status),
		Status:  status,
	}
}

// FromValidation normalizes a go-playground validation failure. The message
// names only the first failing field and its reason; reporting every field
// would produce unbounded messages, so first-only is the policy.
func FromValidation(err error) *Error {
	if e := asError(err); e != nil {
		return e
	}

	norm := &Error{
		Message:    "request validation failed",
		Kind:       KindValidation,
		Status:     http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Validation: true,
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		norm.Message = fmt.Sprintf("field %q failed on the %q rule", first.Field(), first.Tag())
		norm.Details = map[string]any{
			"field": first.Field(),
			"rule":  first.Tag(),
		}
	} else if err != nil {
		norm.Message = err.Error()
	}
	return norm
}

// FromIdentity normalizes a failure from the identity provider. Provider
// failures that already carry a status use the status classification;
// anything else is unclassified with the provider's message.
func FromIdentity(err error) *Error {
	if e := asError(err); e != nil {
		return e
	}
	if err == nil {
		return nil
	}
	return &Error{
		Message: err.Error(),
		Kind:    KindUnclassified,
	}
}

// NotFound builds the normalized error a live 404 produces. The simulated
// store uses it so that missing records look identical on both backends.
func NotFound(resource string, id int64) *Error {
	return &Error{
		Message: fmt.Sprintf("%s %d not found", resource, id),
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
	}
}

// FromAny is the type-guard normalizer: an *Error passes through unchanged,
// anything else becomes an unclassified *Error. Normalizing twice is a no-op.
func FromAny(err error) *Error {
	if err == nil {
		return nil
	}
	if e := asError(err); e != nil {
		return e
	}
	return &Error{
		Message: err.Error(),
		Kind:    KindUnclassified,
	}
}

// asError unwraps err to *Error if it is one, otherwise nil.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsNetwork reports whether err is a normalized network failure.
func IsNetwork(err error) bool {
	e := asError(err)
	return e != nil && e.Network
}

// IsValidation reports whether err is a normalized validation failure.
func IsValidation(err error) bool {
	e := asError(err)
	return e != nil && e.Validation
}

// IsUnauthorized reports whether err carries a 401 classification.
func IsUnauthorized(err error) bool {
	e := asError(err)
	return e != nil && e.Kind == KindUnauthorized
}

// IsForbidden reports whether err carries a 403 classification.
func IsForbidden(err error) bool {
	e := asError(err)
	return e != nil && e.Kind == KindForbidden
}

// IsNotFound reports whether err carries a 404 classification.
func IsNotFound(err error) bool {
	e := asError(err)
	return e != nil && e.Kind == KindNotFound
}

// IsServer reports whether err carries a 5xx classification.
func IsServer(err error) bool {
	e := asError(err)
	return e != nil && e.Kind == KindServer
}

// Retryable reports whether err belongs to a transient class (network or
// server). All other classes must surface immediately.
func Retryable(err error) bool {
	return IsNetwork(err) || IsServer(err)
}

// userMessages maps each classification to exactly one short, non-technical
// string. Raw internal messages never reach the UI layer through this path.
var userMessages = map[Kind]string{
	KindNetwork:      "Unable to reach the server. Check your connection and try again.",
	KindValidation:   "Some of the entered information is invalid.",
	KindUnauthorized: "Your session has expired. Please sign in again.",
	KindForbidden:    "You don't have permission to do that.",
	KindNotFound:     "The requested item could not be found.",
	KindServer:       "The server ran into a problem. Please try again later.",
}

const genericUserMessage = "Something went wrong. Please try again."

// UserMessage returns the human-facing string for any error. Unknown or
// unclassified errors map to a generic fallback.
func UserMessage(err error) string {
	e := asError(err)
	if e == nil {
		return genericUserMessage
	}
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return genericUserMessage
}
