// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/brand-invite-service/internal/types"
)

type StorageInterface interface {
	GetInvite(ctx context.Context, token string) (*types.Invite, error)
	GetInviteForUpdate(ctx context.Context, token string) (*types.Invite, error)
	GetBrand(ctx context.Context, id string) (*types.Brand, error)
	GetUserForUpdate(ctx context.Context, id string) (*types.User, error)
	FindUserIDsByEmail(ctx context.Context, email string, limit uint64) ([]string, error)
	UpsertUserMembership(ctx context.Context, userID, brandID string, profile types.Profile, now time.Time) error
	AddBrandMember(ctx context.Context, brandID, userID string, now time.Time) error
	UpdateInviteUsage(ctx context.Context, token string, usedBy []string, status string, now time.Time) error
	UpsertUserIdentity(ctx context.Context, userID, email string, profile types.Profile, now time.Time) error
	WithTx(ctx context.Context, fn func(context.Context) error) error
	Ping(ctx context.Context) error
}
