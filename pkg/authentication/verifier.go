// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
)

const defaultUserIDClaim = "sub"

type JWTVerifier struct {
	verifier      *oidc.IDTokenVerifier
	userIDClaim   string
	requiredScope string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (types.Identity, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return types.Identity{}, err
	}

	claims := make(map[string]any)
	if err := token.Claims(&claims); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		return types.Identity{}, err
	}

	identity := identityFromClaims(claims, v.userIDClaim)

	if v.requiredScope != "" && !hasScope(claims, v.requiredScope) {
		v.logger.Security().AuthzFailure(identity.UserID, "invite_api_access")
		return types.Identity{}, fmt.Errorf("unauthorized: missing required scope")
	}

	if identity.UserID == "" && identity.Email == "" {
		return types.Identity{}, fmt.Errorf("token carries neither %s nor email", v.userIDClaim)
	}

	return identity, nil
}

func identityFromClaims(claims map[string]any, userIDClaim string) types.Identity {
	var identity types.Identity

	if id, ok := claims[userIDClaim].(string); ok {
		identity.UserID = id
	}

	if email, ok := claims["email"].(string); ok {
		identity.Email = strings.ToLower(strings.TrimSpace(email))
	}

	return identity
}

// hasScope accepts both the space separated "scope" claim and the "scp" array.
func hasScope(claims map[string]any, scope string) bool {
	if s, ok := claims["scope"].(string); ok && slices.Contains(strings.Fields(s), scope) {
		return true
	}

	if scp, ok := claims["scp"].([]any); ok {
		for _, v := range scp {
			if s, ok := v.(string); ok && s == scope {
				return true
			}
		}
	}

	return false
}

func NewJWTVerifier(
	provider ProviderInterface,
	userIDClaim string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	config := &oidc.Config{
		SkipClientIDCheck: true,
		SkipIssuerCheck:   false,
	}

	return NewJWTVerifierDirect(provider.Verifier(config), userIDClaim, requiredScope, tracer, monitor, logger)
}

func NewJWTVerifierDirect(
	verifier *oidc.IDTokenVerifier,
	userIDClaim string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	if userIDClaim == "" {
		userIDClaim = defaultUserIDClaim
	}

	return &JWTVerifier{
		verifier:      verifier,
		userIDClaim:   userIDClaim,
		requiredScope: requiredScope,
		tracer:        tracer,
		monitor:       monitor,
		logger:        logger,
	}
}
