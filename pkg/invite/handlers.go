// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
	"github.com/canonical/brand-invite-service/pkg/authentication"
)

const maxBodyBytes = 1 << 16

type AcceptRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=256"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url,max=2048"`
	AuthType *string `json:"auth_type,omitempty" validate:"omitempty,max=64,printascii"`
}

func (r AcceptRequest) profile() types.Profile {
	return types.Profile{Name: r.Name, Image: r.Image, AuthType: r.AuthType}
}

type ValidationResponse struct {
	Valid     bool    `json:"valid"`
	BrandID   string  `json:"brand_id"`
	Status    string  `json:"status"`
	UsedCount int     `json:"used_count"`
	MaxUses   int     `json:"max_uses"`
	ExpiresAt *string `json:"expires_at"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

type API struct {
	service   ServiceInterface
	validator *validator.Validate

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// RegisterEndpoints mounts the read-only endpoints, usable before the caller
// has signed in.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/invites/{token}", a.handleGetInvite)
	mux.Get("/api/v0/invites/{token}/validation", a.handleValidateInvite)
}

// RegisterAuthenticatedEndpoints mounts the endpoints that need an identity in
// the request context.
func (a *API) RegisterAuthenticatedEndpoints(mux chi.Router) {
	mux.Post("/api/v0/invites/{token}/accept", a.handleAcceptInvite)
}

func (a *API) handleGetInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invite.API.handleGetInvite")
	defer span.End()

	m, err := a.service.GetInviteMetadata(ctx, chi.URLParam(r, "token"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, m)
}

func (a *API) handleValidateInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invite.API.handleValidateInvite")
	defer span.End()

	inv, err := a.service.ValidateInvite(ctx, chi.URLParam(r, "token"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, ValidationResponse{
		Valid:     true,
		BrandID:   inv.BrandID,
		Status:    inv.Status,
		UsedCount: inv.UsedCount(),
		MaxUses:   inv.EffectiveMaxUses(),
		ExpiresAt: formatTimestamp(inv.ExpiresAt),
	})
}

func (a *API) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "invite.API.handleAcceptInvite")
	defer span.End()

	identity, ok := authentication.GetIdentity(ctx)
	if !ok {
		a.writeError(w, ErrUnauthorized)
		return
	}

	var req AcceptRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: http.StatusBadRequest, Message: "invalid request body"})
		return
	}

	if err := a.validator.StructCtx(ctx, req); err != nil {
		a.logger.Debugf("invalid accept request: %v", err)
		a.writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	userID, err := a.service.ResolveUserID(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			a.logger.Security().AuthnFailure("no user matches the session identity")
		}
		a.writeError(w, err)
		return
	}

	res, err := a.service.AcceptInvite(ctx, chi.URLParam(r, "token"), userID, req.profile())
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, res)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		a.logger.Errorf("unexpected error: %v", err)
		a.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Status:  http.StatusInternalServerError,
			Message: "internal server error",
		})
		return
	}

	status := e.Kind.HTTPStatus()
	a.writeJSON(w, status, ErrorResponse{Status: status, Message: e.Message, Kind: e.Kind.String()})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		tracer:    tracer,
		logger:    logger,
	}
}
