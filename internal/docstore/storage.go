// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/internal/types"
)

const (
	invitesCollection = "brand_invites"
	usersCollection   = "users"
	brandsCollection  = "brands"
)

var _ storage.StorageInterface = (*Storage)(nil)

type inviteDoc struct {
	Token     string          `bson:"_id"`
	BrandID   string          `bson:"brand_id"`
	Status    string          `bson:"status"`
	ExpiresAt types.Timestamp `bson:"expires_at"`
	UsedBy    []string        `bson:"used_by"`
	MaxUses   *int            `bson:"max_uses,omitempty"`
	CreatedAt types.Timestamp `bson:"created_at"`
	UpdatedAt types.Timestamp `bson:"updated_at"`
}

func (d *inviteDoc) toInvite() *types.Invite {
	status := d.Status
	if status == "" {
		status = types.InviteStatusActive
	}

	return &types.Invite{
		Token:     d.Token,
		BrandID:   d.BrandID,
		Status:    status,
		ExpiresAt: d.ExpiresAt.Ptr(),
		UsedBy:    d.UsedBy,
		MaxUses:   d.MaxUses,
		CreatedAt: d.CreatedAt.Time,
		UpdatedAt: d.UpdatedAt.Time,
	}
}

type brandDoc struct {
	ID        string          `bson:"_id"`
	Name      string          `bson:"name"`
	UserIDs   []string        `bson:"user_ids"`
	UpdatedAt types.Timestamp `bson:"updated_at"`
}

type userDoc struct {
	ID        string          `bson:"_id"`
	Email     string          `bson:"email"`
	BrandID   string          `bson:"brand_id"`
	Name      string          `bson:"name"`
	Image     string          `bson:"image"`
	AuthType  string          `bson:"auth_type"`
	UpdatedAt types.Timestamp `bson:"updated_at"`
}

// Storage keeps invites, users and brands as MongoDB documents keyed by
// their identifiers.
type Storage struct {
	client *Client

	invites *mongo.Collection
	users   *mongo.Collection
	brands  *mongo.Collection

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func (s *Storage) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return s.client.WithTx(ctx, fn)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Storage) GetInvite(ctx context.Context, token string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "docstore.GetInvite")
	defer span.End()

	return s.getInvite(ctx, token)
}

// GetInviteForUpdate reads the invite inside the current transaction; the
// snapshot transaction aborts on a concurrent write to the same document.
func (s *Storage) GetInviteForUpdate(ctx context.Context, token string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "docstore.GetInviteForUpdate")
	defer span.End()

	return s.getInvite(ctx, token)
}

func (s *Storage) getInvite(ctx context.Context, token string) (*types.Invite, error) {
	var doc inviteDoc
	if err := s.invites.FindOne(ctx, bson.M{"_id": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return doc.toInvite(), nil
}

func (s *Storage) GetBrand(ctx context.Context, id string) (*types.Brand, error) {
	ctx, span := s.tracer.Start(ctx, "docstore.GetBrand")
	defer span.End()

	var doc brandDoc
	if err := s.brands.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}

	return &types.Brand{ID: doc.ID, Name: doc.Name, UserIDs: doc.UserIDs, UpdatedAt: doc.UpdatedAt.Time}, nil
}

func (s *Storage) GetUserForUpdate(ctx context.Context, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "docstore.GetUserForUpdate")
	defer span.End()

	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &types.User{
		ID:        doc.ID,
		Email:     doc.Email,
		BrandID:   doc.BrandID,
		Name:      doc.Name,
		Image:     doc.Image,
		AuthType:  doc.AuthType,
		UpdatedAt: doc.UpdatedAt.Time,
	}, nil
}

// FindUserIDsByEmail matches emails case-insensitively through a strength 2
// collation.
func (s *Storage) FindUserIDsByEmail(ctx context.Context, email string, limit uint64) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "docstore.FindUserIDsByEmail")
	defer span.End()

	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})

	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.users.Find(ctx, bson.M{"email": strings.TrimSpace(email)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user id: %w", err)
		}
		ids = append(ids, doc.ID)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return ids, nil
}

// UpsertUserMembership matches only users that are unassigned or already in
// brandID. A user owned by another brand falls through to the insert branch
// of the upsert and fails on the duplicate _id.
func (s *Storage) UpsertUserMembership(ctx context.Context, userID, brandID string, profile types.Profile, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "docstore.UpsertUserMembership")
	defer span.End()

	filter := bson.M{
		"_id": userID,
		"$or": bson.A{
			bson.M{"brand_id": bson.M{"$exists": false}},
			bson.M{"brand_id": nil},
			bson.M{"brand_id": ""},
			bson.M{"brand_id": brandID},
		},
	}

	set := bson.M{"brand_id": brandID, "updated_at": now}
	if profile.Name != nil {
		set["name"] = *profile.Name
	}
	if profile.Image != nil {
		set["image"] = *profile.Image
	}
	if profile.AuthType != nil {
		set["auth_type"] = *profile.AuthType
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := s.users.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (s *Storage) AddBrandMember(ctx context.Context, brandID, userID string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "docstore.AddBrandMember")
	defer span.End()

	res, err := s.brands.UpdateOne(ctx,
		bson.M{"_id": brandID},
		bson.M{
			"$addToSet": bson.M{"user_ids": userID},
			"$set":      bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add brand member: %w", err)
	}

	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Storage) UpdateInviteUsage(ctx context.Context, token string, usedBy []string, status string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "docstore.UpdateInviteUsage")
	defer span.End()

	if usedBy == nil {
		usedBy = []string{}
	}

	res, err := s.invites.UpdateOne(ctx,
		bson.M{"_id": token},
		bson.M{"$set": bson.M{"used_by": usedBy, "status": status, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update invite: %w", err)
	}

	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// UpsertUserIdentity fills in the email and profile fields the user does not
// have yet. An email already on record is kept.
func (s *Storage) UpsertUserIdentity(ctx context.Context, userID, email string, profile types.Profile, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "docstore.UpsertUserIdentity")
	defer span.End()

	fill := func(field string, v *string) bson.M {
		return bson.M{"$ifNull": bson.A{"$" + field, v}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"email":      bson.M{"$ifNull": bson.A{"$email", strings.ToLower(strings.TrimSpace(email))}},
			"name":       fill("name", profile.Name),
			"image":      fill("image", profile.Image),
			"auth_type":  fill("auth_type", profile.AuthType),
			"created_at": bson.M{"$ifNull": bson.A{"$created_at", now}},
			"updated_at": now,
		}}},
	}

	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, pipeline, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user identity: %w", err)
	}

	return nil
}

func NewStorage(c *Client, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.client = c
	s.invites = c.Database().Collection(invitesCollection)
	s.users = c.Database().Collection(usersCollection)
	s.brands = c.Database().Collection(brandsCollection)

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}
