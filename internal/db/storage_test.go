// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"errors"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func TestFailedRunnerPropagatesError(t *testing.T) {
	beginErr := errors.New("begin failed")
	b := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(failedRunner{err: beginErr})

	var token string
	err := b.Select("token").From("brand_invites").Where(sq.Eq{"token": "abc"}).
		QueryRowContext(context.Background()).
		Scan(&token)
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error from QueryRowContext, got %v", err)
	}

	_, err = b.Update("brands").Set("name", "x").Where(sq.Eq{"id": "b"}).ExecContext(context.Background())
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error from ExecContext, got %v", err)
	}
}

func TestTxFromContext(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Fatalf("expected no transaction, got %v", tx)
	}
	if lt := lazyTxFromContext(context.Background()); lt != nil {
		t.Fatalf("expected no lazy transaction, got %v", lt)
	}

	lt := &lazyTx{}
	ctx := contextWithLazyTx(context.Background(), lt)
	if got := lazyTxFromContext(ctx); got != lt {
		t.Fatal("expected lazy transaction to round trip through context")
	}
	if lt.isStarted() {
		t.Fatal("lazy transaction must not start before first use")
	}
}
