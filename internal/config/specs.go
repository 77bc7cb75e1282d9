// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	StorageBackend string `envconfig:"storage_backend" default:"postgres"`

	DSN string `envconfig:"DSN"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	MongoURI      string `envconfig:"mongo_uri"`
	MongoDatabase string `envconfig:"mongo_database" default:"brand_invites"`

	AcceptMaxAttempts          uint          `envconfig:"accept_max_attempts" default:"4"`
	AcceptRetryInitialInterval time.Duration `envconfig:"accept_retry_initial_interval" default:"20ms"`
	AcceptRetryMaxInterval     time.Duration `envconfig:"accept_retry_max_interval" default:"250ms"`

	AuthenticationEnabled       bool   `envconfig:"authentication_enabled" default:"false"`
	AuthenticationIssuer        string `envconfig:"authentication_issuer"`
	AuthenticationJwksURL       string `envconfig:"authentication_jwks_url"`
	AuthenticationRequiredScope string `envconfig:"authentication_required_scope"`
	AuthenticationUserIDClaim   string `envconfig:"authentication_user_id_claim" default:"sub"`

	WebhookAPIKey string `envconfig:"webhook_api_key"`
}
