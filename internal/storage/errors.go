// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is returned when a guarded write finds the record owned by another brand.
	ErrConflict = errors.New("conflicting record state")
	// ErrTxConflict marks a transaction aborted by the store because of concurrent access.
	ErrTxConflict = errors.New("transaction conflict")
)

// PostgreSQL error codes
const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeLockNotAvailable     = "55P03"
)

// IsRetryableError reports whether err was caused by concurrent access and the
// whole transaction can be replayed.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTxConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected, pgErrCodeLockNotAvailable:
			return true
		}
	}

	return false
}
