// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/types"
)

// checkInvite applies the redemption rules in order and stops at the first
// failure: status, then expiry, then the usage cap.
func checkInvite(inv *types.Invite, now time.Time) error {
	switch inv.Status {
	case types.InviteStatusActive:
	case types.InviteStatusConsumed:
		return ErrAlreadyUsed
	default:
		return newError(KindInvalidState, fmt.Sprintf("invite is %s", inv.Status), nil)
	}

	if inv.ExpiresAt != nil && inv.ExpiresAt.Before(now) {
		return ErrExpired
	}

	if inv.UsedCount() >= inv.EffectiveMaxUses() {
		return ErrAlreadyUsed
	}

	return nil
}

// ValidateInvite is a pre-flight check with no side effects. AcceptInvite
// never relies on its result.
func (s *Service) ValidateInvite(ctx context.Context, token string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "invite.Service.ValidateInvite")
	defer span.End()

	inv, err := s.storage.GetInvite(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := checkInvite(inv, s.now()); err != nil {
		return nil, err
	}

	return inv, nil
}
