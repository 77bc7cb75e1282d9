// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/brand-invite-service/internal/types"
)

type contextKey struct{}

var identityContextKey = contextKey{}

// WithIdentity returns a copy of ctx carrying the caller's identity.
func WithIdentity(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// GetIdentity returns the identity stored in ctx. It reports false when there
// is none or when it asserts neither a user id nor an email.
func GetIdentity(ctx context.Context) (types.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(types.Identity)
	if !ok || (identity.UserID == "" && identity.Email == "") {
		return types.Identity{}, false
	}
	return identity, true
}
