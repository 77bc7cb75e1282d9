// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

//go:build integration

package docstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
	"github.com/canonical/brand-invite-service/pkg/invite"
)

// setupMongo starts a single node replica set, which transactions require,
// and seeds two brands, a user with an email and three invites.
func setupMongo(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		Cmd:          []string{"--replSet", "rs0", "--bind_ip_all", "--setParameter", "enableTestCommands=1"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	code, _, err := container.Exec(ctx, []string{
		"mongosh", "--quiet", "--eval",
		"rs.initiate({_id: 'rs0', members: [{_id: 0, host: 'localhost:27017'}]})",
	})
	require.NoError(t, err)
	require.Zero(t, code, "rs.initiate failed")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("brand-invite-service", logger)

	client, err := NewClient(ctx, Config{
		URI:      fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()),
		Database: "brand_invites",
	}, tracer, logger)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close(context.Background()) })

	// a direct connection answers pings before the election finishes
	require.Eventually(t, func() bool {
		var hello struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		err := client.Database().RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
		return err == nil && hello.IsWritablePrimary
	}, 30*time.Second, 200*time.Millisecond)

	s := NewStorage(client, tracer, monitor, logger)

	_, err = s.brands.InsertMany(ctx, []any{
		bson.M{"_id": "brand-a", "name": "Acme", "user_ids": bson.A{}},
		bson.M{"_id": "brand-b", "name": "Other", "user_ids": bson.A{}},
	})
	require.NoError(t, err)

	_, err = s.invites.InsertMany(ctx, []any{
		bson.M{"_id": "tok-shared", "brand_id": "brand-a", "status": types.InviteStatusActive, "used_by": bson.A{}, "max_uses": 3},
		bson.M{"_id": "tok-once", "brand_id": "brand-a", "status": types.InviteStatusActive, "used_by": bson.A{}},
		bson.M{"_id": "tok-flaky", "brand_id": "brand-a", "status": types.InviteStatusActive, "used_by": bson.A{}},
	})
	require.NoError(t, err)

	_, err = s.users.InsertOne(ctx, bson.M{"_id": "u-seed", "email": "Person@Example.com"})
	require.NoError(t, err)

	return s
}

func newInviteService(s *Storage) *invite.Service {
	logger := logging.NewNoopLogger()

	return invite.NewService(
		s,
		invite.RetryConfig{MaxAttempts: 20, InitialInterval: 5 * time.Millisecond, MaxInterval: 50 * time.Millisecond},
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("brand-invite-service", logger),
		logger,
	)
}

func TestMongoAcceptConcurrentDistinctUsers(t *testing.T) {
	const (
		maxUses = 3
		callers = 12
	)

	s := setupMongo(t)
	svc := newInviteService(s)
	ctx := context.Background()

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AcceptInvite(ctx, "tok-shared", fmt.Sprintf("racer-%02d", i), types.Profile{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, invite.ErrAlreadyUsed)
	}
	require.Equal(t, maxUses, succeeded)

	inv, err := s.GetInvite(ctx, "tok-shared")
	require.NoError(t, err)
	require.Len(t, inv.UsedBy, maxUses)
	require.Equal(t, types.InviteStatusConsumed, inv.Status)

	b, err := s.GetBrand(ctx, "brand-a")
	require.NoError(t, err)
	require.ElementsMatch(t, inv.UsedBy, b.UserIDs)

	for _, id := range inv.UsedBy {
		u, err := s.GetUserForUpdate(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "brand-a", u.BrandID)
	}
}

func TestMongoAcceptConcurrentSameUser(t *testing.T) {
	const callers = 8

	s := setupMongo(t)
	svc := newInviteService(s)
	ctx := context.Background()

	results := make([]*invite.Acceptance, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.AcceptInvite(ctx, "tok-once", "racer", types.Profile{})
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range errs {
		require.NoError(t, errs[i])
		require.Equal(t, "brand-a", results[i].BrandID)
		if !results[i].Replayed {
			fresh++
		}
	}
	require.Equal(t, 1, fresh)

	inv, err := s.GetInvite(ctx, "tok-once")
	require.NoError(t, err)
	require.Equal(t, []string{"racer"}, inv.UsedBy)

	b, err := s.GetBrand(ctx, "brand-a")
	require.NoError(t, err)
	require.Equal(t, []string{"racer"}, b.UserIDs)
}

func TestMongoAcceptRetriesTransientTransactionError(t *testing.T) {
	s := setupMongo(t)
	svc := newInviteService(s)
	ctx := context.Background()

	admin := s.client.client.Database("admin")
	err := admin.RunCommand(ctx, bson.D{
		{Key: "configureFailPoint", Value: "failCommand"},
		{Key: "mode", Value: bson.M{"times": 1}},
		{Key: "data", Value: bson.M{
			"failCommands": bson.A{"update"},
			"errorCode":    codeWriteConflict,
			"errorLabels":  bson.A{labelTransientTransaction},
		}},
	}).Err()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = admin.RunCommand(context.Background(), bson.D{
			{Key: "configureFailPoint", Value: "failCommand"},
			{Key: "mode", Value: "off"},
		}).Err()
	})

	res, err := svc.AcceptInvite(ctx, "tok-flaky", "u-flaky", types.Profile{})
	require.NoError(t, err)
	require.Equal(t, "brand-a", res.BrandID)
	require.False(t, res.Replayed)

	inv, err := s.GetInvite(ctx, "tok-flaky")
	require.NoError(t, err)
	require.Equal(t, []string{"u-flaky"}, inv.UsedBy)
	require.Equal(t, types.InviteStatusConsumed, inv.Status)

	b, err := s.GetBrand(ctx, "brand-a")
	require.NoError(t, err)
	require.Equal(t, []string{"u-flaky"}, b.UserIDs)
}

func TestMongoUpsertUserIdentityKeepsEmail(t *testing.T) {
	s := setupMongo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.UpsertUserIdentity(ctx, "u-seed", "mallory@example.com", types.Profile{}, now))

	u, err := s.GetUserForUpdate(ctx, "u-seed")
	require.NoError(t, err)
	require.Equal(t, "Person@Example.com", u.Email)

	ids, err := s.FindUserIDsByEmail(ctx, "mallory@example.com", 2)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, s.UpsertUserMembership(ctx, "u-new", "brand-a", types.Profile{}, now))
	require.NoError(t, s.UpsertUserIdentity(ctx, "u-new", " New@Example.com ", types.Profile{}, now))

	u, err = s.GetUserForUpdate(ctx, "u-new")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)
	require.Equal(t, "brand-a", u.BrandID)
}
