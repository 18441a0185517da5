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

	"eventmis/internal/audit"
	"eventmis/internal/auth"
	"eventmis/internal/config"
	"eventmis/internal/events"
	"eventmis/internal/financial"
	"eventmis/internal/httpapi"
	"eventmis/internal/intake"
	"eventmis/internal/messaging"
	"eventmis/internal/metrics"
	"eventmis/internal/reporting"
	"eventmis/internal/settings"
	"eventmis/internal/store"
	"eventmis/internal/users"
	"eventmis/pkg/logger"
	"eventmis/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
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

	log := logger.New(cfg.App.Env, cfg.Log.File)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := store.Open(rootCtx, cfg, log)
	if err != nil {
		log.Error("database init failed", "driver", cfg.DB.Driver, "err", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close(db) }()

	if err := store.Migrate(db, models()...); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	} else {
		log.Warn("redis not configured; token revocation and login throttling are process-local")
	}

	m := metrics.New()
	h, err := buildHandlers(rootCtx, cfg, db, rdb, tokens, m, log)
	if err != nil {
		log.Error("service init failed", "err", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(m.Middleware())
	r.Use(httpapi.CORS(cfg.HTTP.CORSAllowOrigins))
	registerRoutes(r, db, h, m)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "db", cfg.DB.Driver)
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

func models() []any {
	return []any{
		&events.Event{},
		&events.ArchivedEvent{},
		&audit.Entry{},
		&messaging.Message{},
		&financial.Record{},
		&users.User{},
		&settings.AppSettings{},
	}
}

// buildHandlers wires services. Redis backs revocation and login throttling
// when configured; otherwise both fall back to memory.
func buildHandlers(ctx context.Context, cfg config.Config, db *gorm.DB, rdb *redis.Client, tokens *auth.Manager, m *metrics.Metrics, log *slog.Logger) (*httpapi.Handlers, error) {
	tx := store.NewTransactor(db)
	auditSvc := audit.NewService(audit.NewGormRepo(db)).WithObserver(m)
	eventSvc := events.NewService(db, tx, auditSvc).WithObserver(m)
	msgSvc := messaging.NewService(db, tx, auditSvc)
	settingsSvc := settings.NewService(db, tx, auditSvc)
	userSvc := users.NewService(db, tx, auditSvc)

	created, err := userSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("seeded initial admin", "email", cfg.Admin.Email)
	}

	h := &httpapi.Handlers{
		Events:        eventSvc,
		Audit:         auditSvc,
		Reports:       reporting.NewService(reporting.NewGormRepo(db)),
		Messages:      msgSvc,
		Financial:     financial.NewService(db, tx, auditSvc),
		Users:         userSvc,
		Settings:      settingsSvc,
		Intake:        intake.NewService(tx, eventSvc, msgSvc, settingsSvc, cfg.Admin.SystemActor),
		Tokens:        tokens,
		PublicLimiter: httpapi.NewIPRateLimiter(cfg.HTTP.PublicRatePerMinute),
	}
	if rdb != nil {
		h.Revoker = auth.NewRedisRevoker(rdb)
		h.Attempts = auth.NewRedisLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	} else {
		h.Revoker = auth.NewMemoryRevoker()
		h.Attempts = auth.NewMemoryLimiter(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	}
	return h, nil
}
