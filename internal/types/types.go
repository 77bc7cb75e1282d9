// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"slices"
	"time"
)

const (
	InviteStatusActive   = "active"
	InviteStatusConsumed = "consumed"

	// DefaultMaxUses applies when an invite carries no usable cap.
	DefaultMaxUses = 1
)

type Invite struct {
	Token     string     `db:"token"`
	BrandID   string     `db:"brand_id"`
	Status    string     `db:"status"`
	ExpiresAt *time.Time `db:"expires_at"`
	UsedBy    []string   `db:"used_by"`
	MaxUses   *int       `db:"max_uses"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// EffectiveMaxUses returns the usage cap, defaulting to DefaultMaxUses when
// the stored value is absent or not positive.
func (i *Invite) EffectiveMaxUses() int {
	if i.MaxUses == nil || *i.MaxUses < 1 {
		return DefaultMaxUses
	}
	return *i.MaxUses
}

func (i *Invite) UsedCount() int {
	return len(i.UsedBy)
}

func (i *Invite) UsedByUser(userID string) bool {
	return slices.Contains(i.UsedBy, userID)
}

type Brand struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	UserIDs   []string  `db:"user_ids"`
	UpdatedAt time.Time `db:"updated_at"`
}

type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	BrandID   string    `db:"brand_id"`
	Name      string    `db:"name"`
	Image     string    `db:"image"`
	AuthType  string    `db:"auth_type"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Profile carries optional user fields; nil fields leave stored values untouched.
type Profile struct {
	Name     *string `json:"name,omitempty"`
	Image    *string `json:"image,omitempty"`
	AuthType *string `json:"auth_type,omitempty"`
}

// Identity is what an authenticated session asserts about its caller.
type Identity struct {
	UserID string
	Email  string
}
