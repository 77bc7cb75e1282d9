// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindInvalidState
	KindExpired
	KindAlreadyUsed
	KindUnauthorized
	KindAmbiguousIdentity
	KindBrandNotFound
	KindConflict
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindExpired:
		return "expired"
	case KindAlreadyUsed:
		return "already_used"
	case KindUnauthorized:
		return "unauthorized"
	case KindAmbiguousIdentity:
		return "ambiguous_identity"
	case KindBrandNotFound:
		return "brand_not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the kind to the status code rendered by the API.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound, KindBrandNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindExpired, KindAlreadyUsed:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict, KindAmbiguousIdentity:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error returned by the engine. Message is safe to show
// to callers, Err carries the underlying cause when there is one.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrExpired) works
// regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "invite not found"}
	ErrInvalidState      = &Error{Kind: KindInvalidState, Message: "invite is not active"}
	ErrExpired           = &Error{Kind: KindExpired, Message: "invite has expired"}
	ErrAlreadyUsed       = &Error{Kind: KindAlreadyUsed, Message: "invite has already been used"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrAmbiguousIdentity = &Error{Kind: KindAmbiguousIdentity, Message: "identity matches more than one user"}
	ErrBrandNotFound     = &Error{Kind: KindBrandNotFound, Message: "brand not found"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "user already belongs to another brand"}
	ErrTransient         = &Error{Kind: KindTransient, Message: "invite is busy, try again"}
)

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
