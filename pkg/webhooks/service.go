// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
)

type Service struct {
	storage StorageInterface
	now     func() time.Time
	tracer  tracing.TracingInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tracer tracing.TracingInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
		tracer:  tracer,
		logger:  logger,
	}
}

// HandleRegistration records a newly registered identity so it can later be
// resolved by email. Existing profile fields are kept.
func (s *Service) HandleRegistration(ctx context.Context, identity KratosIdentity) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(identity.Traits.Email))

	s.logger.Debugf("Handling registration for identity %s", identity.ID)

	if identity.ID == "" || email == "" {
		return fmt.Errorf("identity ID or email is empty")
	}

	profile := types.Profile{
		Name:  identity.Traits.Name,
		Image: identity.Traits.Picture,
	}

	if err := s.storage.UpsertUserIdentity(ctx, identity.ID, email, profile, s.now()); err != nil {
		return fmt.Errorf("failed to record identity: %w", err)
	}

	s.logger.Infof("Recorded identity %s", identity.ID)
	return nil
}
