// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package docstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil", err: nil, retryable: false},
		{name: "plain", err: errors.New("boom"), retryable: false},
		{
			name:      "transient transaction label",
			err:       mongo.CommandError{Code: 251, Labels: []string{labelTransientTransaction}},
			retryable: true,
		},
		{
			name:      "unknown commit result",
			err:       fmt.Errorf("failed to commit transaction: %w", mongo.CommandError{Code: 50, Labels: []string{labelUnknownCommitResult}}),
			retryable: true,
		},
		{
			name:      "write conflict",
			err:       fmt.Errorf("failed to update invite: %w", mongo.CommandError{Code: codeWriteConflict}),
			retryable: true,
		},
		{
			name:      "other command error",
			err:       mongo.CommandError{Code: 2, Message: "bad value"},
			retryable: false,
		},
		{
			name:      "already marked",
			err:       storage.ErrTxConflict,
			retryable: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := classify(test.err)

			if got := storage.IsRetryableError(err); got != test.retryable {
				t.Fatalf("expected retryable %v, got %v for %v", test.retryable, got, err)
			}

			if test.err != nil && !strings.Contains(err.Error(), test.err.Error()) {
				t.Fatalf("classified error lost the original: %v", err)
			}
		})
	}
}

func TestInviteDocDecode(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":        "tok",
		"brand_id":   "brand-a",
		"expires_at": "2030-01-02T03:04:05Z",
		"used_by":    bson.A{"u-1"},
		"max_uses":   int32(3),
		"updated_at": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc inviteDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv := doc.toInvite()

	if inv.Status != types.InviteStatusActive {
		t.Fatalf("expected missing status to read as active, got %q", inv.Status)
	}

	if inv.ExpiresAt == nil || !inv.ExpiresAt.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected expiry %v", inv.ExpiresAt)
	}

	if inv.EffectiveMaxUses() != 3 {
		t.Fatalf("expected max uses 3, got %d", inv.EffectiveMaxUses())
	}

	if !inv.UsedByUser("u-1") {
		t.Fatalf("expected u-1 in used by, got %v", inv.UsedBy)
	}
}

func TestInviteDocDecodeWithoutOptionalFields(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": "tok", "brand_id": "brand-a", "status": "consumed", "expires_at": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc inviteDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inv := doc.toInvite()

	if inv.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", inv.ExpiresAt)
	}

	if inv.MaxUses != nil || inv.EffectiveMaxUses() != types.DefaultMaxUses {
		t.Fatalf("expected default cap, got %v", inv.MaxUses)
	}

	if inv.UsedCount() != 0 {
		t.Fatalf("expected no uses, got %d", inv.UsedCount())
	}
}
