// Package app wires the registries, the command pipeline, the
// authenticator backend and the transport into a runnable server.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mkarpis/hivechat-server/internal/auth"
	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/command"
	"github.com/mkarpis/hivechat-server/internal/config"
	"github.com/mkarpis/hivechat-server/internal/store"
	"github.com/mkarpis/hivechat-server/internal/store/sqlite"
	transporthttp "github.com/mkarpis/hivechat-server/internal/transport/http"
)

// App owns the server's long-lived components.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration. All
// dependencies are injected explicitly; there is no ambient global state.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	clients := chat.NewClientManager()
	communities := chat.NewCommunityManager()

	var (
		authenticator auth.Authenticator
		accounts      *transporthttp.AccountHandlers
		st            store.Store
	)
	switch cfg.AuthBackend {
	case "sqlite":
		sqliteStore, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		st = sqliteStore
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

		backend := auth.NewStoreBackend(sqliteStore, &auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			TTL:      cfg.JWTTTL,
		})
		authenticator = backend
		accounts = transporthttp.NewAccountHandlers(backend, logger)
	default:
		authenticator = auth.NewStatic()
		logger.Warn().Msg("using static authenticator: any credentials are accepted")
	}

	registry := command.NewRegistry()
	command.RegisterDefaults(registry, command.Deps{
		Clients:       clients,
		Communities:   communities,
		Authenticator: authenticator,
		Log:           logger,
	})

	processor := command.NewProcessor(registry, clients, logger)
	server := transporthttp.NewServer(processor, communities, accounts, cfg, logger)

	if cfg.SeedDemo {
		seedDemo(communities)
		logger.Info().Msg("seeded demo community")
	}

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or
// fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

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

func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

// seedDemo registers a demo community with a couple of channels.
func seedDemo(communities *chat.CommunityManager) {
	community := chat.NewCommunity(uuid.NewString(), "Wu-Tang")
	now := time.Now()
	community.Channels().Add(chat.NewChannel(uuid.NewString(), "General", community.ID(), now))
	community.Channels().Add(chat.NewChannel(uuid.NewString(), "Ol' Dirty Bastard", community.ID(), now))
	community.Channels().Add(chat.NewChannel(uuid.NewString(), "Ghostface Killah", community.ID(), now))
	communities.Add(community)
}
