package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"plate-registry/internal/auth"
	"plate-registry/internal/config"
	"plate-registry/internal/db"
	httphandler "plate-registry/internal/http"
	"plate-registry/internal/http/middleware"
	"plate-registry/internal/logger"
	"plate-registry/internal/repository"
	"plate-registry/internal/service"
	"plate-registry/internal/transfer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	backend := selectBackend(cfg, appLogger)
	appLogger.Info().Str("tier", backend.Tier().String()).Msg("storage backend selected")

	plateService := service.NewPlateService(backend, appLogger)
	offlineStore := repository.NewFlatRepository(cfg.Local.FlatPath)
	bridge := transfer.NewBridge(plateService, offlineStore, appLogger)

	var tokenParser *auth.Parser
	if cfg.Auth.AccessSecret != "" {
		tokenParser = auth.NewParser(cfg.Auth.AccessSecret)
	} else {
		appLogger.Warn().Msg("JWT_ACCESS_SECRET not set, requests run as the default actor")
	}

	handler := httphandler.NewHandler(plateService, bridge, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting plate registry")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}

// selectBackend walks the tier ladder once, at startup: remote when
// enabled and reachable, then embedded sqlite, then the flat file.
// Whatever tier wins stays active for the whole process lifetime.
func selectBackend(cfg *config.Config, log zerolog.Logger) repository.Backend {
	if cfg.Remote.Enabled {
		database, err := db.New(cfg, log)
		if err == nil {
			return repository.NewRemoteRepository(database)
		}
		log.Warn().Err(err).Msg("remote backend unavailable, falling back to local storage")
	}

	embedded, err := repository.NewEmbeddedRepository(cfg.Local.SQLitePath)
	if err == nil {
		return embedded
	}
	log.Warn().Err(err).Msg("embedded store unavailable, falling back to flat store")

	return repository.NewFlatRepository(cfg.Local.FlatPath)
}
