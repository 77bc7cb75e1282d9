// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canonical/brand-invite-service/internal/logging"
)

type API struct {
	handler http.Handler
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/metrics", a.handler.ServeHTTP)
}

func NewAPI(logger logging.LoggerInterface) *API {
	return &API{
		handler: promhttp.Handler(),
		logger:  logger,
	}
}
