// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

type KratosIdentity struct {
	ID     string       `json:"id" validate:"required"`
	Traits KratosTraits `json:"traits"`
}

type KratosTraits struct {
	Email   string  `json:"email" validate:"required,email"`
	Name    *string `json:"name,omitempty" validate:"omitempty,max=256"`
	Picture *string `json:"picture,omitempty" validate:"omitempty,url,max=2048"`
}
