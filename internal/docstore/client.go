// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/tracing"
)

const (
	defaultConnectTimeout = 10 * time.Second

	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
	codeWriteConflict         = 112
)

type Config struct {
	URI      string
	Database string
}

// Client owns the connection to a MongoDB deployment. Transactions require a
// replica set or a sharded cluster.
type Client struct {
	client *mongo.Client
	db     *mongo.Database

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// WithTx runs fn inside a multi-document snapshot transaction. Operations
// issued with the context handed to fn join the transaction. Aborts caused by
// concurrent writers are reported as storage.ErrTxConflict.
func (c *Client) WithTx(ctx context.Context, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "docstore.Client.WithTx")
	defer span.End()

	sess, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	if err := sess.StartTransaction(txOpts); err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	sc := mongo.NewSessionContext(ctx, sess)

	if err := fn(sc); err != nil {
		if abortErr := sess.AbortTransaction(context.Background()); abortErr != nil {
			c.logger.Debugf("failed to abort transaction: %v", abortErr)
		}
		return classify(err)
	}

	if err := sess.CommitTransaction(context.Background()); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

func (c *Client) Close(ctx context.Context) {
	if err := c.client.Disconnect(ctx); err != nil {
		c.logger.Errorf("failed to disconnect from mongodb: %v", err)
	}
}

// classify marks errors after which the transaction can be replayed.
func classify(err error) error {
	if err == nil || errors.Is(err, storage.ErrTxConflict) {
		return err
	}

	var labeled mongo.LabeledError
	if errors.As(err, &labeled) {
		if labeled.HasErrorLabel(labelTransientTransaction) || labeled.HasErrorLabel(labelUnknownCommitResult) {
			return errors.Join(storage.ErrTxConflict, err)
		}
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorCode(codeWriteConflict) {
		return errors.Join(storage.ErrTxConflict, err)
	}

	return err
}

func NewClient(ctx context.Context, cfg Config, tracer tracing.TracingInterface, logger logging.LoggerInterface) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}

	if cfg.Database == "" {
		return nil, errors.New("mongodb database is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c := new(Client)
	c.client = client
	c.db = client.Database(cfg.Database)
	c.tracer = tracer
	c.logger = logger

	return c, nil
}
