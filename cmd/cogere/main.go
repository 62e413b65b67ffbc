// @title        Cogere artifact host
// @version      1.0
// @description  Private plugin artifact host.
// @BasePath     /
// @securityDefinitions.basic  BasicAuth
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/cogere/artifact-host/internal/api"
	"github.com/cogere/artifact-host/internal/api/handler"
	"github.com/cogere/artifact-host/internal/core/ports"
	"github.com/cogere/artifact-host/internal/core/service"
	mongodb "github.com/cogere/artifact-host/internal/infrastructure/db/mongo"
	"github.com/cogere/artifact-host/internal/infrastructure/db/postgres"
	redisdb "github.com/cogere/artifact-host/internal/infrastructure/db/redis"
	"github.com/cogere/artifact-host/internal/infrastructure/queue"
	"github.com/cogere/artifact-host/internal/infrastructure/session"
	"github.com/cogere/artifact-host/internal/infrastructure/storage"
	"github.com/cogere/artifact-host/internal/pkg/config"
	"github.com/cogere/artifact-host/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	janitorInterval = 5 * time.Minute
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := ".env"
	if v, ok := os.LookupEnv("ENV_FILE"); ok {
		envFile = v
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("cogere", pflag.ContinueOnError)
	cfg.RegisterFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "cogere",
	})

	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	checks := map[string]handler.Check{"postgres": handler.PostgresCheck(pool)}

	var sessions ports.SessionStore
	switch cfg.Session.Backend {
	case "redis":
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = handler.RedisCheck(rdb)
		sessions = redisdb.NewSessionStore(rdb, cfg.Session.TTL)
	default:
		mem := session.NewMemoryStore(cfg.Session.TTL)
		go mem.RunJanitor(ctx, janitorInterval)
		sessions = mem
	}
	signed, err := session.NewSignedStore(sessions, cfg.Session.Secret, cfg.Session.MaxAge)
	if err != nil {
		return err
	}

	var blobs ports.BlobStore
	switch cfg.Blob.Backend {
	case "gridfs":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		checks["mongodb"] = handler.MongoCheck(db)
		if blobs, err = mongodb.NewGridFSStore(db, cfg.Blob.Bucket); err != nil {
			return err
		}
	case "memory":
		blobs = storage.NewMemoryStore()
	default:
		if blobs, err = storage.NewFilesystemStore(cfg.Blob.DataFolder); err != nil {
			return err
		}
	}
	codec, err := storage.ParseCodec(cfg.Blob.Compression)
	if err != nil {
		return err
	}
	// Always wrapped so objects written under an earlier BLOB_COMPRESSION
	// setting stay readable.
	blobs = storage.NewCompressedStore(blobs, codec, cfg.Blob.MaxUpload)
	blobs = storage.NewInstrumented(blobs)

	verifier := queue.NewVerifierPool(cfg.VerifierWorkers, logger.Component("verifier"))
	verifier.Start(ctx)
	defer verifier.Stop()

	users := postgres.NewUserRepository(pool)
	keys := postgres.NewMachineKeyRepository(pool)
	plugins := postgres.NewPluginRepository(pool)

	e := api.NewRouter(api.Dependencies{
		Auth:    service.NewAuthService(users, keys, signed, verifier, logger.Component("auth")),
		Plugins: service.NewPluginService(plugins, blobs, logger.Component("plugins")),
		Admin:   service.NewAdminService(keys, logger.Component("admin")),
		Checks:  checks,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.MaxAge,
		},
		MaxUpload: cfg.Blob.MaxUpload,
		Log:       logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("blob_backend", cfg.Blob.Backend).
			Str("session_backend", cfg.Session.Backend).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
