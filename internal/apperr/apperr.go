package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	InvalidArgument    Kind = "invalid-argument"
	FailedPrecondition Kind = "failed-precondition"
	Unauthenticated    Kind = "unauthenticated"
	PermissionDenied   Kind = "permission-denied"
	ResourceExhausted  Kind = "resource-exhausted"
	NotFound           Kind = "not-found"
	Unimplemented      Kind = "unimplemented"
	Internal           Kind = "internal"
)

const defaultPublicMsg = "An unexpected error occurred."

type Error struct {
	Kind      Kind
	PublicMsg string // safe to show to the caller
	Err       error  // internal cause, logged only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.PublicMsg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidErr(publicMsg string) *Error {
	return &Error{Kind: InvalidArgument, PublicMsg: publicMsg}
}

func PreconditionErr(publicMsg string) *Error {
	return &Error{Kind: FailedPrecondition, PublicMsg: publicMsg}
}

func UnauthenticatedErr(publicMsg string) *Error {
	return &Error{Kind: Unauthenticated, PublicMsg: publicMsg}
}

func PermissionDeniedErr(publicMsg string) *Error {
	return &Error{Kind: PermissionDenied, PublicMsg: publicMsg}
}

func ResourceExhaustedErr(publicMsg string) *Error {
	return &Error{Kind: ResourceExhausted, PublicMsg: publicMsg}
}

func NotFoundErr(publicMsg string) *Error {
	return &Error{Kind: NotFound, PublicMsg: publicMsg}
}

// UnimplementedErr is a known path asked for with a method it does not serve.
func UnimplementedErr(publicMsg string) *Error {
	return &Error{Kind: Unimplemented, PublicMsg: publicMsg}
}

// Wrap tags err as internal. An empty publicMsg falls back to a generic message.
func Wrap(err error, publicMsg string) *Error {
	if err == nil {
		return nil
	}
	if publicMsg == "" {
		publicMsg = defaultPublicMsg
	}
	return &Error{Kind: Internal, PublicMsg: publicMsg, Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns Internal for errors that were never tagged.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidArgument, FailedPrecondition:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case ResourceExhausted:
		return http.StatusTooManyRequests
	case NotFound:
		return http.StatusNotFound
	case Unimplemented:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return defaultPublicMsg
}
