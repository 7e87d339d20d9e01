// Package apperror holds the error kinds surfaced to API clients and renders
// them as {"error": message} JSON envelopes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindConflict
	KindNotFound
	KindUpstream
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func InvalidCredentials(msg string) *Error        { return newf(KindInvalidCredentials, "%s", msg) }
func Unauthenticated(msg string) *Error           { return newf(KindUnauthenticated, "%s", msg) }
func Forbidden(msg string) *Error                 { return newf(KindForbidden, "%s", msg) }
func Conflict(msg string) *Error                  { return newf(KindConflict, "%s", msg) }
func NotFound(msg string) *Error                  { return newf(KindNotFound, "%s", msg) }

// Upstream reports a failure of a third-party service.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Internal wraps an unexpected error. Only msg reaches the client.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From returns err as an *Error, treating anything else as internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("Internal server error", err)
}

// Respond writes the error envelope.
func Respond(c *gin.Context, err error) {
	ae := From(err)
	_ = c.Error(ae)
	c.JSON(ae.Kind.Status(), gin.H{"error": ae.Message})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	ae := From(err)
	_ = c.Error(ae)
	c.AbortWithStatusJSON(ae.Kind.Status(), gin.H{"error": ae.Message})
}
