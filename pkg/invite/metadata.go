// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"errors"
	"time"

	"github.com/canonical/brand-invite-service/internal/storage"
)

const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

type Metadata struct {
	Token     string  `json:"token"`
	BrandID   string  `json:"brand_id"`
	BrandName *string `json:"brand_name"`
	Status    string  `json:"status"`
	UsedCount int     `json:"used_count"`
	MaxUses   int     `json:"max_uses"`
	ExpiresAt *string `json:"expires_at"`
}

// GetInviteMetadata projects an invite for display. Only a missing invite is
// an error; when the brand cannot be read BrandName is left nil.
func (s *Service) GetInviteMetadata(ctx context.Context, token string) (*Metadata, error) {
	ctx, span := s.tracer.Start(ctx, "invite.Service.GetInviteMetadata")
	defer span.End()

	inv, err := s.storage.GetInvite(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := &Metadata{
		Token:     inv.Token,
		BrandID:   inv.BrandID,
		Status:    inv.Status,
		UsedCount: inv.UsedCount(),
		MaxUses:   inv.EffectiveMaxUses(),
		ExpiresAt: formatTimestamp(inv.ExpiresAt),
	}

	brand, err := s.storage.GetBrand(ctx, inv.BrandID)
	switch {
	case err == nil:
		name := brand.Name
		m.BrandName = &name
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.logger.Warnf("failed to read brand %s for invite metadata: %v", inv.BrandID, err)
	}

	return m, nil
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(isoTimestamp)
	return &v
}
