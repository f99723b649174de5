package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/insurance-lead-desk/internal/config"
	"github.com/iliyamo/insurance-lead-desk/internal/database"
	"github.com/iliyamo/insurance-lead-desk/internal/handler"
	"github.com/iliyamo/insurance-lead-desk/internal/identity"
	"github.com/iliyamo/insurance-lead-desk/internal/middleware"
	"github.com/iliyamo/insurance-lead-desk/internal/queue"
	"github.com/iliyamo/insurance-lead-desk/internal/repository"
	"github.com/iliyamo/insurance-lead-desk/internal/router"
	"github.com/iliyamo/insurance-lead-desk/internal/service"
	"github.com/iliyamo/insurance-lead-desk/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter := service.NewReporter(cfg.SentryDSN, cfg.SentryEnv, logger)
	defer reporter.Flush(2 * time.Second)

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	leads := repository.NewLeadRepo(store)
	users := repository.NewUserRepo(store)
	policies := repository.NewPolicyRepo(store)
	contacts := repository.NewContactRepo(store)

	var (
		verifier identity.Verifier
		local    *identity.LocalProvider
	)
	switch cfg.AuthMode {
	case config.AuthJWKS:
		jwks, err := identity.NewJWKSProvider(cfg.JWKSURL, cfg.JWTIssuer, cfg.JWKSRefresh, logger)
		if err != nil {
			return err
		}
		verifier = jwks
	default:
		local = identity.NewLocalProvider(repository.NewCredentialRepo(store), cfg.JWTSecret, cfg.AccessTTL, cfg.BcryptCost)
		verifier = local
	}

	files, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	publisher := service.NewLeadPublisher(cfg.RabbitURL, logger)
	consumer := &queue.Consumer{URL: cfg.RabbitURL, Dir: "logs", Log: logger}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("lead consumer stopped", slog.String("error", err.Error()))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))

	gate := router.Gate{
		Auth:      middleware.Authenticate(verifier, users, logger),
		Admin:     middleware.RequireAdmin(),
		RateLimit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb, logger),
	}
	if local == nil {
		gate.Register = gate.Auth
	}
	resp := handler.Responder{Log: logger, Reporter: reporter}

	uploadDir := ""
	if cfg.UploadDriver == config.UploadLocal {
		uploadDir = filepath.Clean(cfg.UploadDir)
	}
	router.RegisterRoutes(e, uploadDir)
	router.RegisterAuth(e, handler.NewAuthHandler(resp, local, users), gate)
	router.RegisterLeads(e, handler.NewLeadHandler(resp, leads, publisher), gate)
	router.RegisterContact(e, handler.NewContactHandler(resp, contacts), gate)
	router.RegisterPolicies(e, handler.NewPolicyHandler(resp, policies, files), gate)
	router.RegisterAdmin(e, handler.NewAdminHandler(resp, service.NewAdminService(leads, users, policies)), gate)

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env),
			slog.String("store", cfg.StoreDriver), slog.String("auth", cfg.AuthMode))
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
