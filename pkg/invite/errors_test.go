// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKind(t *testing.T) {
	testCases := []struct {
		err    *Error
		name   string
		status int
	}{
		{err: ErrNotFound, name: "not_found", status: http.StatusNotFound},
		{err: ErrInvalidState, name: "invalid_state", status: http.StatusBadRequest},
		{err: ErrExpired, name: "expired", status: http.StatusBadRequest},
		{err: ErrAlreadyUsed, name: "already_used", status: http.StatusBadRequest},
		{err: ErrUnauthorized, name: "unauthorized", status: http.StatusUnauthorized},
		{err: ErrAmbiguousIdentity, name: "ambiguous_identity", status: http.StatusConflict},
		{err: ErrBrandNotFound, name: "brand_not_found", status: http.StatusNotFound},
		{err: ErrConflict, name: "conflict", status: http.StatusConflict},
		{err: ErrTransient, name: "transient", status: http.StatusServiceUnavailable},
		{err: &Error{Message: "zero kind"}, name: "unknown", status: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Kind.String(); got != tc.name {
				t.Fatalf("expected %q, got %q", tc.name, got)
			}
			if got := tc.err.Kind.HTTPStatus(); got != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, got)
			}
		})
	}
}

func TestErrorMatchesByKind(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", newError(KindInvalidState, "invite is revoked", cause))

	if !errors.Is(err, ErrInvalidState) {
		t.Fatal("expected kind match through wrapping")
	}
	if errors.Is(err, ErrExpired) {
		t.Fatal("unexpected match with a different kind")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to be reachable")
	}

	var e *Error
	if !errors.As(err, &e) || e.Message != "invite is revoked" {
		t.Fatalf("unexpected error value %+v", e)
	}
	if e.Error() != "invite is revoked: boom" {
		t.Fatalf("unexpected message %q", e.Error())
	}
}
