// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"net/http"
	"strings"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
	"github.com/canonical/brand-invite-service/pkg/authentication"
)

const (
	// HeaderName is the header used to pass the authenticated identity ID
	HeaderName = "X-Kratos-Authenticated-Identity-Id"
	// EmailHeaderName carries the identity's email when the proxy knows it
	EmailHeaderName = "X-Kratos-Authenticated-Identity-Email"
)

// Middleware trusts identity headers set by an authenticating proxy in front
// of the service.
type Middleware struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.HTTPMiddleware")
		defer span.End()

		identity := types.Identity{
			UserID: strings.TrimSpace(r.Header.Get(HeaderName)),
			Email:  strings.ToLower(strings.TrimSpace(r.Header.Get(EmailHeaderName))),
		}

		if identity.UserID != "" || identity.Email != "" {
			ctx = authentication.WithIdentity(ctx, identity)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
