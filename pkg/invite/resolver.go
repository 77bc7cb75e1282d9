// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"strings"

	"github.com/canonical/brand-invite-service/internal/types"
)

// ResolveUserID prefers the user id asserted by the session and falls back to
// an email lookup. Two or more users sharing the email is reported as
// ErrAmbiguousIdentity instead of picking one.
func (s *Service) ResolveUserID(ctx context.Context, identity types.Identity) (string, error) {
	ctx, span := s.tracer.Start(ctx, "invite.Service.ResolveUserID")
	defer span.End()

	if id := strings.TrimSpace(identity.UserID); id != "" {
		return id, nil
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return "", ErrUnauthorized
	}

	ids, err := s.storage.FindUserIDsByEmail(ctx, email, 2)
	if err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", ErrUnauthorized
	case 1:
		return ids[0], nil
	default:
		s.logger.Warnf("email fallback matched %d users", len(ids))
		return "", ErrAmbiguousIdentity
	}
}
