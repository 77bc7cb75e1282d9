// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/types"
	"github.com/canonical/brand-invite-service/pkg/authentication"
)

func setupAPI(t *testing.T) (*chi.Mux, *MockServiceInterface, *MockLoggerInterface) {
	ctrl := gomock.NewController(t)

	mockService := NewMockServiceInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	).AnyTimes()

	api := NewAPI(mockService, mockTracer, mockLogger)

	mux := chi.NewMux()
	api.RegisterEndpoints(mux)
	api.RegisterAuthenticatedEndpoints(mux)

	return mux, mockService, mockLogger
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var res ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func TestAPI_GetInvite(t *testing.T) {
	testCases := []struct {
		name           string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
		expectedKind   string
	}{
		{
			name: "found",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().GetInviteMetadata(gomock.Any(), "tok").Return(&Metadata{Token: "tok", BrandID: "brand-a", BrandName: strPtr("Acme"), Status: "active", MaxUses: 1}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().GetInviteMetadata(gomock.Any(), "tok").Return(nil, ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedKind:   "not_found",
		},
		{
			name: "unexpected failure",
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().GetInviteMetadata(gomock.Any(), "tok").Return(nil, errDB)
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux, mockService, mockLogger := setupAPI(t)
			tc.setupMocks(mockService, mockLogger)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/invites/tok", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tc.expectedStatus == http.StatusOK {
				var m map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&m))
				require.Equal(t, "Acme", m["brand_name"])
				require.Contains(t, m, "expires_at")
				require.Nil(t, m["expires_at"])
				return
			}

			res := decodeError(t, w)
			require.Equal(t, tc.expectedStatus, res.Status)
			require.Equal(t, tc.expectedKind, res.Kind)
			if tc.expectedStatus == http.StatusInternalServerError {
				require.NotContains(t, res.Message, errDB.Error())
			}
		})
	}
}

func TestAPI_ValidateInvite(t *testing.T) {
	expires := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectedKind   string
	}{
		{
			name: "valid",
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().ValidateInvite(gomock.Any(), "tok").Return(&types.Invite{Token: "tok", BrandID: "brand-a", Status: "active", ExpiresAt: &expires}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "expired",
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().ValidateInvite(gomock.Any(), "tok").Return(nil, ErrExpired)
			},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   "expired",
		},
		{
			name: "revoked",
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().ValidateInvite(gomock.Any(), "tok").Return(nil, newError(KindInvalidState, "invite is revoked", nil))
			},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   "invalid_state",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux, mockService, _ := setupAPI(t)
			tc.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/invites/tok/validation", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusOK {
				var res ValidationResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
				require.True(t, res.Valid)
				require.Equal(t, "brand-a", res.BrandID)
				require.Equal(t, 1, res.MaxUses)
				require.Equal(t, "2026-04-01T00:00:00.000Z", *res.ExpiresAt)
				return
			}

			require.Equal(t, tc.expectedKind, decodeError(t, w).Kind)
		})
	}
}

func TestAPI_AcceptInvite(t *testing.T) {
	name := "Person"

	testCases := []struct {
		name           string
		identity       *types.Identity
		body           string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
		expectedKind   string
	}{
		{
			name:     "accepted",
			identity: &types.Identity{UserID: "u-1"},
			body:     `{"name":"Person"}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().ResolveUserID(gomock.Any(), types.Identity{UserID: "u-1"}).Return("u-1", nil)
				mockService.EXPECT().AcceptInvite(gomock.Any(), "tok", "u-1", types.Profile{Name: &name}).Return(&Acceptance{BrandID: "brand-a"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "empty body",
			identity: &types.Identity{Email: "person@example.com"},
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().ResolveUserID(gomock.Any(), types.Identity{Email: "person@example.com"}).Return("u-1", nil)
				mockService.EXPECT().AcceptInvite(gomock.Any(), "tok", "u-1", types.Profile{}).Return(&Acceptance{BrandID: "brand-a", Replayed: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no identity",
			body:           `{}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusUnauthorized,
			expectedKind:   "unauthorized",
		},
		{
			name:           "malformed body",
			identity:       &types.Identity{UserID: "u-1"},
			body:           `{"name":`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "invalid image url",
			identity: &types.Identity{UserID: "u-1"},
			body:     `{"image":"not a url"}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "unknown email",
			identity: &types.Identity{Email: "nobody@example.com"},
			body:     `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().ResolveUserID(gomock.Any(), gomock.Any()).Return("", ErrUnauthorized)
				mockLogger.EXPECT().Security().Return(logging.NewNoopLogger().Security())
			},
			expectedStatus: http.StatusUnauthorized,
			expectedKind:   "unauthorized",
		},
		{
			name:     "ambiguous email",
			identity: &types.Identity{Email: "shared@example.com"},
			body:     `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().ResolveUserID(gomock.Any(), gomock.Any()).Return("", ErrAmbiguousIdentity)
			},
			expectedStatus: http.StatusConflict,
			expectedKind:   "ambiguous_identity",
		},
		{
			name:     "cross brand conflict",
			identity: &types.Identity{UserID: "u-1"},
			body:     `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().ResolveUserID(gomock.Any(), gomock.Any()).Return("u-1", nil)
				mockService.EXPECT().AcceptInvite(gomock.Any(), "tok", "u-1", types.Profile{}).Return(nil, ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedKind:   "conflict",
		},
		{
			name:     "contention",
			identity: &types.Identity{UserID: "u-1"},
			body:     `{}`,
			setupMocks: func(mockService *MockServiceInterface, mockLogger *MockLoggerInterface) {
				mockService.EXPECT().ResolveUserID(gomock.Any(), gomock.Any()).Return("u-1", nil)
				mockService.EXPECT().AcceptInvite(gomock.Any(), "tok", "u-1", types.Profile{}).Return(nil, newError(KindTransient, ErrTransient.Message, fmt.Errorf("serialization failure")))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedKind:   "transient",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux, mockService, mockLogger := setupAPI(t)
			tc.setupMocks(mockService, mockLogger)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/invites/tok/accept", strings.NewReader(tc.body))
			if tc.identity != nil {
				req = req.WithContext(authentication.WithIdentity(req.Context(), *tc.identity))
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code, w.Body.String())

			if tc.expectedStatus == http.StatusOK {
				var res map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
				require.Equal(t, map[string]any{"brand_id": "brand-a"}, res)
				return
			}

			if tc.expectedKind != "" {
				require.Equal(t, tc.expectedKind, decodeError(t, w).Kind)
			}
		})
	}
}
