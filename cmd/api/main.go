package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rabaislocal/internal/audit"
	"rabaislocal/internal/auth"
	"rabaislocal/internal/config"
	"rabaislocal/internal/coupon"
	"rabaislocal/internal/httpapi"
	"rabaislocal/internal/migration"
	"rabaislocal/internal/notify"
	"rabaislocal/internal/offer"
	"rabaislocal/internal/points"
	"rabaislocal/internal/ratelimit"
	"rabaislocal/internal/reporting"
	"rabaislocal/internal/wallet"
	"rabaislocal/pkg/logger"
	"rabaislocal/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.RunMigrations(db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Service wiring.
	offerSvc := offer.NewService(db)
	walletSvc := wallet.NewService(db)
	couponSvc := coupon.NewService(db, cfg.Coupon)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	reportSvc := reporting.NewService(reporting.NewPostgresRepo(db))
	// Merchant earn rules have no admin surface yet; every merchant earns
	// at the configured platform rate.
	pointsSvc := points.NewService(&points.MemoryRepo{}, cfg.Points.EarnRatePerDollar)
	notifySvc := notify.NewService(couponSvc, &notify.LogSender{Log: log})
	limiter := ratelimit.NewLimiter(rdb)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Auth:    authManager,
		Offers:  offerSvc,
		Coupons: couponSvc,
		Wallet:  walletSvc,
		Points:  pointsSvc,
		Reports: reportSvc,
		Notify:  notifySvc,
		Audit:   auditSvc,
	}
	registerRoutes(r, h, auth.RequireAccessToken(authManager), limiter, cfg, db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
