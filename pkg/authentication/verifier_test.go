// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"testing"

	"github.com/canonical/brand-invite-service/internal/types"
)

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name     string
		claims   map[string]any
		claim    string
		expected types.Identity
	}{
		{
			name:     "subject and email",
			claims:   map[string]any{"sub": "user-1", "email": " Person@Example.com "},
			claim:    "sub",
			expected: types.Identity{UserID: "user-1", Email: "person@example.com"},
		},
		{
			name:     "custom user id claim",
			claims:   map[string]any{"sub": "client-1", "uid": "user-9"},
			claim:    "uid",
			expected: types.Identity{UserID: "user-9"},
		},
		{
			name:     "non string claims are ignored",
			claims:   map[string]any{"sub": 42.0, "email": true},
			claim:    "sub",
			expected: types.Identity{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := identityFromClaims(test.claims, test.claim); got != test.expected {
				t.Fatalf("expected %+v, got %+v", test.expected, got)
			}
		})
	}
}

func TestHasScope(t *testing.T) {
	tests := []struct {
		name     string
		claims   map[string]any
		expected bool
	}{
		{name: "scope string", claims: map[string]any{"scope": "openid invites:accept"}, expected: true},
		{name: "scp array", claims: map[string]any{"scp": []any{"openid", "invites:accept"}}, expected: true},
		{name: "missing", claims: map[string]any{"scope": "openid"}, expected: false},
		{name: "no claims", claims: map[string]any{}, expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := hasScope(test.claims, "invites:accept"); got != test.expected {
				t.Fatalf("expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestNoopVerifier(t *testing.T) {
	v := NewNoopVerifier()

	identity, err := v.VerifyToken(context.Background(), "user-1")
	if err != nil || identity.UserID != "user-1" || identity.Email != "" {
		t.Fatalf("unexpected identity %+v, err %v", identity, err)
	}

	identity, err = v.VerifyToken(context.Background(), "a@example.com")
	if err != nil || identity.Email != "a@example.com" || identity.UserID != "" {
		t.Fatalf("unexpected identity %+v, err %v", identity, err)
	}
}
