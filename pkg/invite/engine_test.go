// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
)

var engineNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEngine(store *memStore) *Service {
	logger := logging.NewNoopLogger()
	s := NewService(
		store,
		RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond},
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("invite-test", logger),
		logger,
	)
	s.now = func() time.Time { return engineNow }
	return s
}

func intPtr(v int) *int { return &v }

func TestEngine_AcceptIsIdempotentForSameUser(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	engine := newEngine(store)

	first, err := engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
	require.NoError(t, err)
	require.Equal(t, "brand-a", first.BrandID)
	require.False(t, first.Replayed)

	before := store.snapshot()

	second, err := engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
	require.NoError(t, err)
	require.Equal(t, "brand-a", second.BrandID)
	require.True(t, second.Replayed)

	after := store.snapshot()
	require.Equal(t, before.invites["tok"], after.invites["tok"])
	require.Equal(t, before.brands["brand-a"], after.brands["brand-a"])
	require.Equal(t, []string{"u-1"}, after.invites["tok"].UsedBy)
	require.Equal(t, types.InviteStatusConsumed, after.invites["tok"].Status)
}

func TestEngine_CapIsEnforced(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a", MaxUses: intPtr(3)})
	engine := newEngine(store)

	for i, user := range []string{"u-1", "u-2", "u-3"} {
		_, err := engine.AcceptInvite(context.Background(), "tok", user, types.Profile{})
		require.NoError(t, err)

		inv := store.snapshot().invites["tok"]
		require.Len(t, inv.UsedBy, i+1)
		if i < 2 {
			require.Equal(t, types.InviteStatusActive, inv.Status)
		} else {
			require.Equal(t, types.InviteStatusConsumed, inv.Status)
		}
	}

	_, err := engine.AcceptInvite(context.Background(), "tok", "u-4", types.Profile{})
	require.ErrorIs(t, err, ErrAlreadyUsed)

	state := store.snapshot()
	require.Equal(t, []string{"u-1", "u-2", "u-3"}, state.invites["tok"].UsedBy)
	require.ElementsMatch(t, []string{"u-1", "u-2", "u-3"}, state.brands["brand-a"].UserIDs)
	require.NotContains(t, state.users, "u-4")

	res, err := engine.AcceptInvite(context.Background(), "tok", "u-2", types.Profile{})
	require.NoError(t, err)
	require.True(t, res.Replayed)
}

func TestEngine_CrossBrandConflict(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addBrand("brand-b", "Other", "u-1")
	store.addUser("u-1", "person@example.com", "brand-b")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	engine := newEngine(store)

	_, err := engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
	require.ErrorIs(t, err, ErrConflict)

	state := store.snapshot()
	require.Equal(t, "brand-b", state.users["u-1"].BrandID)
	require.Empty(t, state.invites["tok"].UsedBy)
	require.Equal(t, types.InviteStatusActive, state.invites["tok"].Status)
	require.Empty(t, state.brands["brand-a"].UserIDs)
}

func TestEngine_SameBrandSecondInvite(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme", "u-1")
	store.addUser("u-1", "person@example.com", "brand-a")
	store.addInvite(types.Invite{Token: "tok-2", BrandID: "brand-a"})
	engine := newEngine(store)

	res, err := engine.AcceptInvite(context.Background(), "tok-2", "u-1", types.Profile{})
	require.NoError(t, err)
	require.Equal(t, "brand-a", res.BrandID)
	require.False(t, res.Replayed)

	state := store.snapshot()
	require.Equal(t, []string{"u-1"}, state.brands["brand-a"].UserIDs)
	require.Equal(t, []string{"u-1"}, state.invites["tok-2"].UsedBy)
	require.Equal(t, types.InviteStatusConsumed, state.invites["tok-2"].Status)
}

func TestEngine_ProfileIsAppliedWithMembership(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	engine := newEngine(store)

	name, authType := "Person", "google"
	_, err := engine.AcceptInvite(context.Background(), "tok", "u-new", types.Profile{Name: &name, AuthType: &authType})
	require.NoError(t, err)

	u := store.snapshot().users["u-new"]
	require.Equal(t, "brand-a", u.BrandID)
	require.Equal(t, "Person", u.Name)
	require.Equal(t, "google", u.AuthType)
	require.Empty(t, u.Image)
}

func TestEngine_FailedWriteLeavesNoPartialState(t *testing.T) {
	for _, op := range []string{"UpsertUserMembership", "AddBrandMember", "UpdateInviteUsage"} {
		t.Run(op, func(t *testing.T) {
			store := newMemStore()
			store.addBrand("brand-a", "Acme")
			store.addUser("u-1", "person@example.com", "")
			store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
			store.failOn = op
			engine := newEngine(store)

			before := store.snapshot()

			_, err := engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
			require.ErrorIs(t, err, errInjected)

			require.Equal(t, before, store.snapshot())
		})
	}
}

func TestEngine_MissingBrand(t *testing.T) {
	store := newMemStore()
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-gone"})
	engine := newEngine(store)

	inv, err := engine.ValidateInvite(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "brand-gone", inv.BrandID)

	m, err := engine.GetInviteMetadata(context.Background(), "tok")
	require.NoError(t, err)
	require.Nil(t, m.BrandName)

	_, err = engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
	require.ErrorIs(t, err, ErrBrandNotFound)

	state := store.snapshot()
	require.Empty(t, state.invites["tok"].UsedBy)
	require.NotContains(t, state.users, "u-1")
}

func TestEngine_ConcurrentDistinctUsers(t *testing.T) {
	const (
		maxUses = 3
		callers = 12
	)

	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a", MaxUses: intPtr(maxUses)})
	engine := newEngine(store)

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.AcceptInvite(context.Background(), "tok", fmt.Sprintf("u-%02d", i), types.Profile{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrAlreadyUsed)
	}
	require.Equal(t, maxUses, succeeded)

	state := store.snapshot()
	inv := state.invites["tok"]
	require.Len(t, inv.UsedBy, maxUses)
	require.Equal(t, types.InviteStatusConsumed, inv.Status)
	require.ElementsMatch(t, inv.UsedBy, state.brands["brand-a"].UserIDs)
	for _, id := range inv.UsedBy {
		require.Equal(t, "brand-a", state.users[id].BrandID)
	}
	require.Len(t, state.users, maxUses)
}

func TestEngine_ConcurrentSameUser(t *testing.T) {
	const callers = 8

	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	engine := newEngine(store)

	results := make([]*Acceptance, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
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

	state := store.snapshot()
	require.Equal(t, []string{"u-1"}, state.invites["tok"].UsedBy)
	require.Equal(t, []string{"u-1"}, state.brands["brand-a"].UserIDs)
}

func TestEngine_RetriesTransactionConflicts(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	store.conflicts = 2
	engine := newEngine(store)

	res, err := engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
	require.NoError(t, err)
	require.Equal(t, "brand-a", res.BrandID)
	require.Equal(t, 0, store.conflicts)
}

func TestEngine_GivesUpAfterMaxAttempts(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	store.conflicts = 10
	engine := newEngine(store)

	_, err := engine.AcceptInvite(context.Background(), "tok", "u-1", types.Profile{})
	require.ErrorIs(t, err, ErrTransient)
	require.Equal(t, 7, store.conflicts)

	require.Empty(t, store.snapshot().invites["tok"].UsedBy)
}

func TestEngine_ResolveByEmailThenAccept(t *testing.T) {
	store := newMemStore()
	store.addBrand("brand-a", "Acme")
	store.addUser("u-1", "Person@Example.com", "")
	store.addInvite(types.Invite{Token: "tok", BrandID: "brand-a"})
	engine := newEngine(store)

	userID, err := engine.ResolveUserID(context.Background(), types.Identity{Email: "person@example.COM"})
	require.NoError(t, err)
	require.Equal(t, "u-1", userID)

	_, err = engine.AcceptInvite(context.Background(), "tok", userID, types.Profile{})
	require.NoError(t, err)
	require.Equal(t, "brand-a", store.snapshot().users["u-1"].BrandID)
}
