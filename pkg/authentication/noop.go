// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"strings"

	"github.com/canonical/brand-invite-service/internal/types"
)

type NoopVerifier struct{}

// NewNoopVerifier returns a no-op token verifier that allows all requests.
func NewNoopVerifier() *NoopVerifier {
	return &NoopVerifier{}
}

// VerifyToken treats the token as the user ID for development purposes, or as
// an email when it contains an @.
func (n *NoopVerifier) VerifyToken(ctx context.Context, rawIDToken string) (types.Identity, error) {
	if strings.Contains(rawIDToken, "@") {
		return types.Identity{Email: rawIDToken}, nil
	}
	return types.Identity{UserID: rawIDToken}, nil
}
