// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/brand-invite-service/internal/db"
	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/pkg/invite"
	"github.com/canonical/brand-invite-service/pkg/metrics"
	"github.com/canonical/brand-invite-service/pkg/status"
	"github.com/canonical/brand-invite-service/pkg/webhooks"
)

// NewRouter wires the HTTP API. authMiddleware populates the caller identity
// for the routes that need one. The registration webhook is only mounted when
// webhookAPIKey is set.
func NewRouter(
	s storage.StorageInterface,
	retry invite.RetryConfig,
	authMiddleware func(http.Handler) http.Handler,
	webhookAPIKey string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
	)

	router.Use(middlewares...)

	inviteAPI := invite.NewAPI(
		invite.NewService(s, retry, tracer, monitor, logger),
		tracer,
		logger,
	)

	inviteAPI.RegisterEndpoints(router)
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		inviteAPI.RegisterAuthenticatedEndpoints(r)
	})

	if webhookAPIKey != "" {
		router.Group(func(r chi.Router) {
			r.Use(webhooks.NewAPIKeyMiddleware(webhookAPIKey, logger).Authenticate)
			r.Use(db.TransactionMiddleware(s, logger))
			webhooks.NewAPI(webhooks.NewService(s, tracer, logger), logger).RegisterEndpoints(r)
		})
	} else {
		logger.Warn("WEBHOOK_API_KEY is not set, the registration webhook is disabled")
	}

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(s, tracer, monitor, logger).RegisterEndpoints(router)

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
