// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/brand-invite-service/internal/config"
	"github.com/canonical/brand-invite-service/internal/db"
	"github.com/canonical/brand-invite-service/internal/docstore"
	"github.com/canonical/brand-invite-service/internal/identity"
	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
	"github.com/canonical/brand-invite-service/internal/monitoring/prometheus"
	"github.com/canonical/brand-invite-service/internal/storage"
	"github.com/canonical/brand-invite-service/internal/tracing"
	"github.com/canonical/brand-invite-service/pkg/authentication"
	"github.com/canonical/brand-invite-service/pkg/invite"
	"github.com/canonical/brand-invite-service/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func openStorage(
	ctx context.Context,
	specs *config.EnvSpec,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (storage.StorageInterface, func(), error) {
	switch specs.StorageBackend {
	case config.StoragePostgres:
		dbClient, err := db.NewDBClient(
			db.Config{
				DSN:             specs.DSN,
				MaxConns:        specs.DBMaxConns,
				MinConns:        specs.DBMinConns,
				MaxConnLifetime: specs.DBMaxConnLifetime,
				MaxConnIdleTime: specs.DBMaxConnIdleTime,
				TracingEnabled:  specs.TracingEnabled,
			},
			tracer,
			monitor,
			logger,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database client: %v", err)
		}

		return storage.NewStorage(dbClient, tracer, monitor, logger), dbClient.Close, nil
	case config.StorageMongo:
		client, err := docstore.NewClient(ctx, docstore.Config{URI: specs.MongoURI, Database: specs.MongoDatabase}, tracer, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create mongo client: %v", err)
		}

		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Close(ctx)
		}

		return docstore.NewStorage(client, tracer, monitor, logger), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", specs.StorageBackend)
	}
}

func authMiddleware(
	ctx context.Context,
	specs *config.EnvSpec,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (func(http.Handler) http.Handler, error) {
	if specs.AuthenticationEnabled {
		verifier, err := authentication.NewJWTAuthenticator(
			ctx,
			specs.AuthenticationIssuer,
			specs.AuthenticationJwksURL,
			specs.AuthenticationUserIDClaim,
			specs.AuthenticationRequiredScope,
			tracer,
			monitor,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT authenticator: %w", err)
		}

		logger.Info("Authentication is enabled")
		return authentication.NewMiddleware(verifier, tracer, monitor, logger).Authenticate(), nil
	}

	if specs.Debug {
		logger.Warn("Authentication is disabled, bearer tokens are trusted as identities")
		return authentication.NewMiddleware(authentication.NewNoopVerifier(), tracer, monitor, logger).Authenticate(), nil
	}

	logger.Info("Using identity headers from the authenticating proxy")
	return identity.NewMiddleware(tracer, monitor, logger).HTTPMiddleware, nil
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("brand-invite-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	s, closeStorage, err := openStorage(context.Background(), specs, tracer, monitor, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	auth, err := authMiddleware(context.Background(), specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	router := web.NewRouter(
		s,
		invite.RetryConfig{
			MaxAttempts:     specs.AcceptMaxAttempts,
			InitialInterval: specs.AcceptRetryInitialInterval,
			MaxInterval:     specs.AcceptRetryMaxInterval,
		},
		auth,
		specs.WebhookAPIKey,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
