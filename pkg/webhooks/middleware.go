// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/canonical/brand-invite-service/internal/logging"
)

// APIKeyMiddleware admits webhook calls that carry the shared key configured
// on the identity provider, either as the raw Authorization header value or
// as a bearer token.
type APIKeyMiddleware struct {
	key []byte

	logger logging.LoggerInterface
}

func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		if len(m.key) == 0 || subtle.ConstantTimeCompare([]byte(presented), m.key) != 1 {
			m.logger.Security().AuthnFailure("invalid webhook api key")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewAPIKeyMiddleware(key string, logger logging.LoggerInterface) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		key:    []byte(key),
		logger: logger,
	}
}
