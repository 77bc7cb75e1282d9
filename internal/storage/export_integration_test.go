// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

//go:build integration

package storage

// SetupPostgres exposes the seeded container store to storage_test, which
// drives it through the invite engine.
var SetupPostgres = setupPostgres
