// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
)

const (
	defaultMaxAttempts     uint = 4
	defaultInitialInterval      = 20 * time.Millisecond
	defaultMaxInterval          = 250 * time.Millisecond
)

// RetryConfig bounds how many times an acceptance is replayed after the store
// aborts it because of concurrent access.
type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     defaultMaxAttempts,
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
	}
}

type Acceptance struct {
	BrandID string `json:"brand_id"`
	// Replayed is set when the user had already redeemed the invite and
	// nothing was written.
	Replayed bool `json:"-"`
}

type Service struct {
	storage StorageInterface
	retry   RetryConfig
	now     func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// AcceptInvite links userID to the invite's brand and records the usage, all
// in one transaction. The invite is re-read and re-validated inside that
// transaction on every attempt.
func (s *Service) AcceptInvite(ctx context.Context, token, userID string, profile types.Profile) (acceptance *Acceptance, err error) {
	ctx, span := s.tracer.Start(ctx, "invite.Service.AcceptInvite")
	defer span.End()
	defer func() { s.observe(span, acceptance, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.MaxInterval = s.retry.MaxInterval

	operation := func() (*Acceptance, error) {
		var res *Acceptance

		err := s.storage.WithTx(ctx, func(ctx context.Context) error {
			var err error
			res, err = s.accept(ctx, token, userID, profile)
			return err
		})

		if err == nil {
			return res, nil
		}

		if storage.IsRetryableError(err) {
			return nil, err
		}

		return nil, backoff.Permanent(err)
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.retry.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Debugf("acceptance of invite aborted by concurrent access, retrying in %s: %v", next, err)
		}),
	)

	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}

		if storage.IsRetryableError(err) {
			s.logger.Warnf("giving up on invite acceptance after %d attempts: %v", s.retry.MaxAttempts, err)
			return nil, newError(KindTransient, ErrTransient.Message, err)
		}

		var domainErr *Error
		if !errors.As(err, &domainErr) {
			s.logger.Errorf("failed to accept invite: %v", err)
		}

		return nil, err
	}

	if !res.Replayed {
		s.logger.Security().MembershipGranted(userID, res.BrandID)
	}

	return res, nil
}

// observe records the outcome of an acceptance on the span and in the
// acceptance counter. Domain refusals are labelled by kind, anything else
// is "error".
func (s *Service) observe(span trace.Span, res *Acceptance, err error) {
	outcome := "granted"

	switch {
	case err != nil:
		outcome = "error"

		var domainErr *Error
		if errors.As(err, &domainErr) {
			outcome = domainErr.Kind.String()
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	case res != nil && res.Replayed:
		outcome = "replayed"
	}

	span.SetAttributes(attribute.String("invite.outcome", outcome))

	if err := s.monitor.IncrementAcceptance(map[string]string{"outcome": outcome}); err != nil {
		s.logger.Debugf("error recording acceptance outcome: %v", err)
	}
}

// accept is one attempt. Reads and writes follow the order invite, brand,
// user so concurrent attempts lock rows in the same sequence.
func (s *Service) accept(ctx context.Context, token, userID string, profile types.Profile) (*Acceptance, error) {
	now := s.now()

	inv, err := s.storage.GetInviteForUpdate(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := checkInvite(inv, now); err != nil {
		if errors.Is(err, ErrAlreadyUsed) && inv.UsedByUser(userID) {
			return s.replay(ctx, inv, userID, err)
		}
		return nil, err
	}

	if _, err := s.storage.GetBrand(ctx, inv.BrandID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}

	user, err := s.storage.GetUserForUpdate(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if user != nil && user.BrandID != "" && user.BrandID != inv.BrandID {
		return nil, ErrConflict
	}

	if err := s.storage.UpsertUserMembership(ctx, userID, inv.BrandID, profile, now); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.storage.AddBrandMember(ctx, inv.BrandID, userID, now); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}

	usedBy := types.AddToSet(inv.UsedBy, userID)

	status := types.InviteStatusActive
	if len(usedBy) >= inv.EffectiveMaxUses() {
		status = types.InviteStatusConsumed
	}

	if err := s.storage.UpdateInviteUsage(ctx, inv.Token, usedBy, status, now); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &Acceptance{BrandID: inv.BrandID}, nil
}

// replay handles a user redeeming an exhausted invite they already used. It
// succeeds without writing when the user is still linked to the brand.
func (s *Service) replay(ctx context.Context, inv *types.Invite, userID string, cause error) (*Acceptance, error) {
	user, err := s.storage.GetUserForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, cause
		}
		return nil, err
	}

	switch user.BrandID {
	case inv.BrandID:
		return &Acceptance{BrandID: inv.BrandID, Replayed: true}, nil
	case "":
		return nil, cause
	default:
		return nil, ErrConflict
	}
}

func NewService(
	storage StorageInterface,
	retry RetryConfig,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	if retry.MaxAttempts == 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}

	if retry.InitialInterval <= 0 {
		retry.InitialInterval = defaultInitialInterval
	}

	if retry.MaxInterval <= 0 {
		retry.MaxInterval = defaultMaxInterval
	}
	if retry.MaxInterval < retry.InitialInterval {
		retry.MaxInterval = retry.InitialInterval
	}

	return &Service{
		storage: storage,
		retry:   retry,
		now:     time.Now,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
