// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/canonical/brand-invite-service/internal/db"
	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
)

const (
	invitesTable = "brand_invites"
	usersTable   = "users"
	brandsTable  = "brands"
)

var _ StorageInterface = (*Storage)(nil)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return s.db.WithTx(ctx, fn)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Storage) GetInvite(ctx context.Context, token string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvite")
	defer span.End()

	return s.getInvite(ctx, token, false)
}

// GetInviteForUpdate reads the invite and holds its row lock until the
// surrounding transaction ends.
func (s *Storage) GetInviteForUpdate(ctx context.Context, token string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInviteForUpdate")
	defer span.End()

	return s.getInvite(ctx, token, true)
}

func (s *Storage) getInvite(ctx context.Context, token string, lock bool) (*types.Invite, error) {
	query := s.db.Statement(ctx).
		Select("token", "brand_id", "status", "expires_at", "used_by", "max_uses", "created_at", "updated_at").
		From(invitesTable).
		Where(sq.Eq{"token": token})

	if lock {
		query = query.Suffix("FOR UPDATE")
	}

	var (
		inv       types.Invite
		expiresAt types.Timestamp
		maxUses   sql.NullInt32
	)

	err := query.
		QueryRowContext(ctx).
		Scan(
			&inv.Token,
			&inv.BrandID,
			&inv.Status,
			&expiresAt,
			pgtype.NewMap().SQLScanner(&inv.UsedBy),
			&maxUses,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	inv.ExpiresAt = expiresAt.Ptr()
	if maxUses.Valid {
		v := int(maxUses.Int32)
		inv.MaxUses = &v
	}

	return &inv, nil
}

func (s *Storage) GetBrand(ctx context.Context, id string) (*types.Brand, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetBrand")
	defer span.End()

	var b types.Brand
	err := s.db.Statement(ctx).
		Select("id", "name", "user_ids", "updated_at").
		From(brandsTable).
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&b.ID, &b.Name, pgtype.NewMap().SQLScanner(&b.UserIDs), &b.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}

	return &b, nil
}

// GetUserForUpdate reads the user and locks the row, when present, for the
// remainder of the transaction.
func (s *Storage) GetUserForUpdate(ctx context.Context, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserForUpdate")
	defer span.End()

	var (
		u                                 types.User
		email, brandID, name, img, authTy sql.NullString
	)

	err := s.db.Statement(ctx).
		Select("id", "email", "brand_id", "name", "image", "auth_type", "updated_at").
		From(usersTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		QueryRowContext(ctx).
		Scan(&u.ID, &email, &brandID, &name, &img, &authTy, &u.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Email = email.String
	u.BrandID = brandID.String
	u.Name = name.String
	u.Image = img.String
	u.AuthType = authTy.String

	return &u, nil
}

func (s *Storage) FindUserIDsByEmail(ctx context.Context, email string, limit uint64) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.FindUserIDsByEmail")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("id").
		From(usersTable).
		Where(sq.Expr("lower(email) = ?", strings.ToLower(strings.TrimSpace(email)))).
		OrderBy("id")

	if limit > 0 {
		query = query.Limit(limit)
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ids, nil
}

// UpsertUserMembership links the user to brandID, merging only the supplied
// profile fields. It returns ErrConflict if the user already belongs to a
// different brand.
func (s *Storage) UpsertUserMembership(ctx context.Context, userID, brandID string, profile types.Profile, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertUserMembership")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Insert(usersTable).
		Columns("id", "brand_id", "name", "image", "auth_type", "created_at", "updated_at").
		Values(userID, brandID, profile.Name, profile.Image, profile.AuthType, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			brand_id = EXCLUDED.brand_id,
			name = COALESCE(EXCLUDED.name, users.name),
			image = COALESCE(EXCLUDED.image, users.image),
			auth_type = COALESCE(EXCLUDED.auth_type, users.auth_type),
			updated_at = EXCLUDED.updated_at
		WHERE users.brand_id IS NULL OR users.brand_id = EXCLUDED.brand_id`).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	return nil
}

// AddBrandMember adds userID to the brand's member set; re-adding is a no-op
// apart from the timestamp.
func (s *Storage) AddBrandMember(ctx context.Context, brandID, userID string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.AddBrandMember")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update(brandsTable).
		Set("user_ids", sq.Expr("CASE WHEN ? = ANY(user_ids) THEN user_ids ELSE array_append(user_ids, ?) END", userID, userID)).
		Set("updated_at", now).
		Where(sq.Eq{"id": brandID}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to add brand member: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) UpdateInviteUsage(ctx context.Context, token string, usedBy []string, status string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateInviteUsage")
	defer span.End()

	if usedBy == nil {
		usedBy = []string{}
	}

	res, err := s.db.Statement(ctx).
		Update(invitesTable).
		Set("used_by", usedBy).
		Set("status", status).
		Set("updated_at", now).
		Where(sq.Eq{"token": token}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update invite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// UpsertUserIdentity records the identity's email. The email and profile
// fields only fill gaps, they never overwrite what the user already has, so a
// replayed or forged registration cannot repoint an existing user's email.
func (s *Storage) UpsertUserIdentity(ctx context.Context, userID, email string, profile types.Profile, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertUserIdentity")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Insert(usersTable).
		Columns("id", "email", "name", "image", "auth_type", "created_at", "updated_at").
		Values(userID, strings.ToLower(strings.TrimSpace(email)), profile.Name, profile.Image, profile.AuthType, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(NULLIF(users.email, ''), EXCLUDED.email),
			name = COALESCE(users.name, EXCLUDED.name),
			image = COALESCE(users.image, EXCLUDED.image),
			auth_type = COALESCE(users.auth_type, EXCLUDED.auth_type),
			updated_at = EXCLUDED.updated_at`).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to upsert user identity: %w", err)
	}

	return nil
}
