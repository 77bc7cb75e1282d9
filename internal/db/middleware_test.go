// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/brand-invite-service/internal/logging"
)

type txRecorder struct {
	calls int
	err   error
}

func (r *txRecorder) WithTx(ctx context.Context, fn func(context.Context) error) error {
	r.calls++
	r.err = fn(ctx)
	return r.err
}

func TestTransactionMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		status     int
		expectTx   bool
		expectFail bool
	}{
		{name: "read is not wrapped", method: http.MethodGet, status: http.StatusOK},
		{name: "successful write commits", method: http.MethodPost, status: http.StatusOK, expectTx: true},
		{name: "failed write rolls back", method: http.MethodPost, status: http.StatusBadRequest, expectTx: true, expectFail: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := new(txRecorder)

			handler := TransactionMiddleware(rec, logging.NewNoopLogger())(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
				}),
			)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tc.method, "/webhooks/registration", nil))

			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, w.Code)
			}
			if tc.expectTx != (rec.calls == 1) {
				t.Fatalf("expected transaction=%v, got %d calls", tc.expectTx, rec.calls)
			}
			if tc.expectFail != (rec.err != nil) {
				t.Fatalf("expected rollback=%v, got %v", tc.expectFail, rec.err)
			}
		})
	}
}
