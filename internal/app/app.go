package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatapp/chatapp-server/internal/chat"
	"github.com/chatapp/chatapp-server/internal/config"
	"github.com/chatapp/chatapp-server/internal/metrics"
	"github.com/chatapp/chatapp-server/internal/store/sqlstore"
	transporthttp "github.com/chatapp/chatapp-server/internal/transport/http"
)

// App wires together store, service and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	retryInterval   time.Duration
	store           *sqlstore.SQLStore
	metrics         *metrics.Metrics
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. The database
// handle is opened here but first contact is deferred: Run keeps retrying
// until the store is reachable, so startup never fails on an absent
// database.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlstore.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().
		Str("driver", cfg.DatabaseDriver).
		Msg("database handle opened")

	m := metrics.New()
	svc := chat.NewService(st, m, logger)
	server := transporthttp.NewServer(svc, st, m, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		retryInterval:   cfg.DatabaseRetryInterval,
		store:           st,
		metrics:         m,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.connectStore(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// connectStore pings the database and applies the schema, retrying on a
// fixed interval until it succeeds or the context is cancelled. The health
// endpoint reports the degraded state until then.
func (a *App) connectStore(ctx context.Context) {
	for {
		err := a.store.Ping(ctx)
		if err == nil {
			err = a.store.EnsureSchema(ctx)
		}
		if err == nil {
			a.metrics.SetDatabaseConnected(true)
			a.log.Info().Msg("database connection established")
			return
		}

		a.metrics.SetDatabaseConnected(false)
		a.log.Error().Err(err).
			Dur("retry_in", a.retryInterval).
			Msg("failed to connect to database")

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.retryInterval):
		}
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
