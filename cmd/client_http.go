// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/brand-invite-service/internal/identity"
	"github.com/canonical/brand-invite-service/internal/types"
	"github.com/canonical/brand-invite-service/pkg/invite"
)

type apiError struct {
	StatusCode int
	Body       invite.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Kind != "" {
		return fmt.Sprintf("api error (status %d, %s): %s", e.StatusCode, e.Body.Kind, e.Body.Message)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Body.Message)
}

// httpInviteClient talks to the invite endpoints of a running server.
type httpInviteClient struct {
	endpoint string
	identity types.Identity
	token    string
	client   *http.Client
}

func newHTTPInviteClient(endpoint string, caller types.Identity, token string) *httpInviteClient {
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}

	return &httpInviteClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		identity: caller,
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpInviteClient) GetInvite(ctx context.Context, token string) (*invite.Metadata, error) {
	out := new(invite.Metadata)
	if err := c.do(ctx, http.MethodGet, c.invitePath(token, ""), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpInviteClient) ValidateInvite(ctx context.Context, token string) (*invite.ValidationResponse, error) {
	out := new(invite.ValidationResponse)
	if err := c.do(ctx, http.MethodGet, c.invitePath(token, "/validation"), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpInviteClient) AcceptInvite(ctx context.Context, token string, req invite.AcceptRequest) (*invite.Acceptance, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	out := new(invite.Acceptance)
	if err := c.do(ctx, http.MethodPost, c.invitePath(token, "/accept"), bytes.NewReader(body), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpInviteClient) invitePath(token, suffix string) string {
	return fmt.Sprintf("%s/api/v0/invites/%s%s", c.endpoint, url.PathEscape(token), suffix)
}

func (c *httpInviteClient) do(ctx context.Context, method, u string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.identity.UserID != "" {
		req.Header.Set(identity.HeaderName, c.identity.UserID)
	}
	if c.identity.Email != "" {
		req.Header.Set(identity.EmailHeaderName, c.identity.Email)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		e := &apiError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, &e.Body); err != nil || e.Body.Message == "" {
			e.Body.Message = strings.TrimSpace(string(raw))
		}
		return e
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
