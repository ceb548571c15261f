package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coursehub/internal/api"
	"coursehub/internal/app/service"
	"coursehub/internal/common/security"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/database"
	"coursehub/internal/platform/locks"
	"coursehub/internal/platform/objectstore"
	"coursehub/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	config.Load()
	initLogger()
	security.InitJWT()

	fixtures := storage.Fixtures()
	backends, store := buildBackends(fixtures)

	// A separate read-only fixture store backs the last-resort read path.
	static := storage.NewLocal(fixtures)

	resolver := storage.NewResolver(backends, static,
		time.Duration(config.AppConfig.BackendTimeoutSeconds)*time.Second)

	authService := service.NewAuthService(resolver)
	contentService := service.NewContentService(resolver)
	testService := service.NewTestService(resolver)
	adminService := service.NewAdminService(resolver)
	// A typed nil would dodge the service's missing-store check, so only
	// hand over a store that actually exists.
	var imageStore service.ImageStore
	if store != nil {
		imageStore = store
	}
	uploadService := service.NewUploadService(imageStore)

	router := api.NewRouter(authService, contentService, testService, adminService, uploadService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", config.AppConfig.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !config.AppConfig.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// buildBackends constructs the configured backend chain in order. A
// backend that fails to initialize is skipped with a warning; the
// resolver degrades gracefully as long as at least one is present.
func buildBackends(fixtures *storage.Dataset) ([]storage.Backend, *objectstore.Client) {
	var backends []storage.Backend
	var store *objectstore.Client

	for _, name := range strings.Split(config.AppConfig.BackendOrder, ",") {
		switch strings.TrimSpace(name) {
		case "postgres":
			db, err := database.Connect()
			if err != nil {
				log.Warn().Err(err).Msg("postgres backend unavailable at startup")
				continue
			}
			pg := storage.NewPostgres(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := pg.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("schema setup failed, postgres may recover later")
			}
			cancel()
			backends = append(backends, pg)

		case "blob":
			client, err := objectstore.New(config.AppConfig)
			if err != nil {
				log.Warn().Err(err).Msg("blob backend unavailable at startup")
				continue
			}
			store = client
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := client.EnsureBucket(ctx); err != nil {
				log.Warn().Err(err).Msg("bucket setup failed, blob may recover later")
			}
			cancel()
			lock := locks.NewWriteLock(config.AppConfig)
			backends = append(backends, storage.NewBlob(client, config.AppConfig.BlobObjectName, lock, fixtures))

		case "local":
			backends = append(backends, storage.NewLocal(fixtures))

		case "":
			// tolerate trailing commas

		default:
			log.Warn().Str("backend", name).Msg("unknown backend in BACKEND_ORDER, skipping")
		}
	}

	if store == nil {
		// Uploads still need an object store even when the blob backend
		// is not in the chain.
		client, err := objectstore.New(config.AppConfig)
		if err != nil {
			log.Warn().Err(err).Msg("object store unavailable, uploads will fail")
		} else {
			store = client
		}
	}
	if len(backends) == 0 {
		log.Warn().Msg("no storage backends configured, falling back to in-memory only")
		backends = append(backends, storage.NewLocal(fixtures))
	}
	return backends, store
}
