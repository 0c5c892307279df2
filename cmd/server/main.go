package main // Entry point package

import (
	"context"
	"errors"
	"log" // Startup failures only; everything else goes through the app logger
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/report-vault/internal/config"
	"github.com/iliyamo/report-vault/internal/database"
	"github.com/iliyamo/report-vault/internal/handler"
	"github.com/iliyamo/report-vault/internal/logging"
	"github.com/iliyamo/report-vault/internal/middleware"
	"github.com/iliyamo/report-vault/internal/policy"
	"github.com/iliyamo/report-vault/internal/router"
	"github.com/iliyamo/report-vault/internal/service"
	"github.com/iliyamo/report-vault/internal/storage"
)

func main() {
	cfg := config.Load() // Load environment config
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	pol, err := policy.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("password policy: %v", err)
	}

	// Rate limiting is optional: no Redis means a pass-through limiter.
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		log.Fatalf("rate limit config: %v", err)
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		log.Fatalf("redis config: %v", err)
	}
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil && rlCfg.Enabled {
		logger.Warn(ctx, "redis unreachable, rate limiting disabled", "addr", redisCfg.Addr)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	events := service.NewEventPublisher(cfg)
	tokens := service.NewTokenManager(db, cfg.SecretKey)
	auth := service.NewAuthService(db, tokens, pol, blobs, events, logger,
		service.HashOptions{Salt: cfg.PasswordSalt, Cost: cfg.BcryptCost})
	reports := service.NewReportService(db, blobs, events, logger)

	e := router.New(logger, cfg.MaxUploadBytes)
	if err := router.TrustProxies(e, cfg.TrustedProxies); err != nil {
		log.Fatalf("trusted proxies: %v", err)
	}
	router.RegisterRoutes(e)
	router.Register(e, router.Deps{
		Auth:          handler.NewAuthHandler(auth),
		Reports:       handler.NewReportHandler(reports, cfg.MaxUploadBytes),
		Authenticator: tokens,
		RateLimit:     middleware.NewTokenBucket(rlCfg, rdb, logger),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "db", cfg.DBDriver, "blobs", cfg.BlobBackend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "shutdown", "error", err)
	}
}
