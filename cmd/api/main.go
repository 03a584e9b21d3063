package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/pulse-backend/internal/config"
	"github.com/georgemunganga/pulse-backend/internal/live"
	"github.com/georgemunganga/pulse-backend/internal/logging"
	"github.com/georgemunganga/pulse-backend/internal/modules/auth"
	"github.com/georgemunganga/pulse-backend/internal/modules/product"
	"github.com/georgemunganga/pulse-backend/internal/modules/store"
	"github.com/georgemunganga/pulse-backend/internal/modules/user"
	"github.com/georgemunganga/pulse-backend/internal/observability"
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		errutil.LogError(slog.Default(), "load config", err)
		os.Exit(1)
	}
	logger := logging.SetDefault("pulse-api", version, cfg.LogFormat, cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to the database")

	metrics := observability.NewMetrics()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	authHandler := auth.NewHandler(authService, userService)
	authHandler.RegisterRoutes(router)

	// ── Stores, teams and live snapshots ────────────────────
	storeRepo := store.NewPostgresRepository(db)
	teamRepo := store.NewTeamPostgresRepository(db)
	hub := live.NewHub(metrics.LiveSubscribers, logger)
	feed := store.NewFeed(hub, storeRepo, teamRepo, logger)
	storeService := store.NewService(storeRepo, teamRepo, userService,
		store.WithNotifier(feed),
		store.WithRecorder(metrics),
		store.WithLogger(logger),
	)

	// ── Products ────────────────────────────────────────────
	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo, storeService, logger, product.WithNotifier(feed))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		authHandler.RegisterProtectedRoutes(r)
		store.NewHandler(storeService, userService, feed, live.NewUpgrader(cfg.AllowedOrigins)).RegisterRoutes(r)
		product.NewHandler(productService).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	feed.Drain()
	logger.Info("server stopped")
}
