// Package domain holds the error taxonomy shared by the account service and
// its delivery layer.
package domain

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindNotFound
	KindMail
	KindSession
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindMail:
		return "mail"
	case KindSession:
		return "session"
	default:
		return "server"
	}
}

// Error is a failure with a message that is safe to show to clients. Err, when
// set, carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode is the HTTP status the error maps to.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewAuthError(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

func NewNotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewMailError(message string, err error) error {
	return &Error{Kind: KindMail, Message: message, Err: err}
}

func NewSessionError(message string, err error) error {
	return &Error{Kind: KindSession, Message: message, Err: err}
}

func NewServerError(err error) error {
	return &Error{Kind: KindServer, Message: "Server Error", Err: err}
}

// AsError unwraps err to a *Error if there is one in its chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}
