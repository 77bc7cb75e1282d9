// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invite

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/types"
)

var errInjected = errors.New("injected fault")

type memState struct {
	invites map[string]types.Invite
	brands  map[string]types.Brand
	users   map[string]types.User
}

func (s *memState) clone() *memState {
	c := &memState{
		invites: maps.Clone(s.invites),
		brands:  maps.Clone(s.brands),
		users:   maps.Clone(s.users),
	}
	for k, v := range c.invites {
		v.UsedBy = slices.Clone(v.UsedBy)
		c.invites[k] = v
	}
	for k, v := range c.brands {
		v.UserIDs = slices.Clone(v.UserIDs)
		c.brands[k] = v
	}
	return c
}

type txKey struct{}

// memStore serialises transactions behind a single mutex and commits a
// transaction's working copy only when fn succeeds.
type memStore struct {
	mu    sync.Mutex
	state *memState

	// conflicts is the number of upcoming transactions that abort with
	// storage.ErrTxConflict before running.
	conflicts int
	// failOn names a write that returns errInjected.
	failOn string
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		invites: map[string]types.Invite{},
		brands:  map[string]types.Brand{},
		users:   map[string]types.User{},
	}}
}

func (m *memStore) addBrand(id, name string, members ...string) {
	m.state.brands[id] = types.Brand{ID: id, Name: name, UserIDs: members}
}

func (m *memStore) addUser(id, email, brandID string) {
	m.state.users[id] = types.User{ID: id, Email: email, BrandID: brandID}
}

func (m *memStore) addInvite(inv types.Invite) {
	if inv.Status == "" {
		inv.Status = types.InviteStatusActive
	}
	m.state.invites[inv.Token] = inv
}

func (m *memStore) snapshot() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *memStore) read(ctx context.Context, f func(*memState)) {
	if tx, ok := ctx.Value(txKey{}).(*memState); ok {
		f(tx)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f(m.state)
}

func (m *memStore) write(ctx context.Context, op string, f func(*memState) error) error {
	tx, ok := ctx.Value(txKey{}).(*memState)
	if !ok {
		return errors.New("write outside transaction")
	}
	if m.failOn == op {
		return errInjected
	}
	return f(tx)
}

func (m *memStore) WithTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts > 0 {
		m.conflicts--
		return storage.ErrTxConflict
	}

	tx := m.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	m.state = tx
	return nil
}

func (m *memStore) GetInvite(ctx context.Context, token string) (*types.Invite, error) {
	var (
		inv types.Invite
		ok  bool
	)
	m.read(ctx, func(s *memState) { inv, ok = s.invites[token] })
	if !ok {
		return nil, storage.ErrNotFound
	}
	inv.UsedBy = slices.Clone(inv.UsedBy)
	return &inv, nil
}

func (m *memStore) GetInviteForUpdate(ctx context.Context, token string) (*types.Invite, error) {
	return m.GetInvite(ctx, token)
}

func (m *memStore) GetBrand(ctx context.Context, id string) (*types.Brand, error) {
	var (
		b  types.Brand
		ok bool
	)
	m.read(ctx, func(s *memState) { b, ok = s.brands[id] })
	if !ok {
		return nil, storage.ErrNotFound
	}
	b.UserIDs = slices.Clone(b.UserIDs)
	return &b, nil
}

func (m *memStore) GetUserForUpdate(ctx context.Context, id string) (*types.User, error) {
	var (
		u  types.User
		ok bool
	)
	m.read(ctx, func(s *memState) { u, ok = s.users[id] })
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) FindUserIDsByEmail(ctx context.Context, email string, limit uint64) ([]string, error) {
	var ids []string
	m.read(ctx, func(s *memState) {
		for id, u := range s.users {
			if strings.EqualFold(u.Email, email) {
				ids = append(ids, id)
			}
		}
	})
	sort.Strings(ids)
	if uint64(len(ids)) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *memStore) UpsertUserMembership(ctx context.Context, userID, brandID string, profile types.Profile, now time.Time) error {
	return m.write(ctx, "UpsertUserMembership", func(s *memState) error {
		u, ok := s.users[userID]
		if ok && u.BrandID != "" && u.BrandID != brandID {
			return storage.ErrConflict
		}
		u.ID = userID
		u.BrandID = brandID
		if profile.Name != nil {
			u.Name = *profile.Name
		}
		if profile.Image != nil {
			u.Image = *profile.Image
		}
		if profile.AuthType != nil {
			u.AuthType = *profile.AuthType
		}
		u.UpdatedAt = now
		s.users[userID] = u
		return nil
	})
}

func (m *memStore) AddBrandMember(ctx context.Context, brandID, userID string, now time.Time) error {
	return m.write(ctx, "AddBrandMember", func(s *memState) error {
		b, ok := s.brands[brandID]
		if !ok {
			return storage.ErrNotFound
		}
		b.UserIDs = types.AddToSet(b.UserIDs, userID)
		b.UpdatedAt = now
		s.brands[brandID] = b
		return nil
	})
}

func (m *memStore) UpdateInviteUsage(ctx context.Context, token string, usedBy []string, status string, now time.Time) error {
	return m.write(ctx, "UpdateInviteUsage", func(s *memState) error {
		inv, ok := s.invites[token]
		if !ok {
			return storage.ErrNotFound
		}
		inv.UsedBy = slices.Clone(usedBy)
		inv.Status = status
		inv.UpdatedAt = now
		s.invites[token] = inv
		return nil
	})
}
