package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
	"github.com/Keoroanthony/go-ecommerce-api/internal/auth"
	"github.com/Keoroanthony/go-ecommerce-api/internal/db"
	"github.com/Keoroanthony/go-ecommerce-api/internal/handlers"
	"github.com/Keoroanthony/go-ecommerce-api/internal/metrics"
	"github.com/Keoroanthony/go-ecommerce-api/internal/middleware"
	"github.com/Keoroanthony/go-ecommerce-api/internal/notifier"
)

func main() {
	migrateAction := flag.String("migrate", "", "run a schema action (up, down, reset) and exit")
	autoMigrate := flag.Bool("automigrate", false, "add missing tables and columns before serving")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Fatal("Failed to read .env")
	}

	cfg := config.Load()
	log := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	gdb, err := db.Open(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to DB")
	}

	if *migrateAction != "" {
		if err := db.Migrate(cfg.Database, gdb, *migrateAction, log); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
		return
	}
	if *autoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			log.WithError(err).Fatal("Failed to migrate DB")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher, err := notifier.FromConfig(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure notifications")
	}
	log.WithField("channels", dispatcher.Channels()).Info("Order notifications configured")

	router, err := newRouter(ctx, cfg, gdb, log, dispatcher)
	if err != nil {
		log.WithError(err).Fatal("Failed to build router")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

func newRouter(ctx context.Context, cfg config.Config, gdb *gorm.DB, log *logrus.Logger, n notifier.Notifier) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics())

	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					limiter.Cleanup(10 * time.Minute)
				}
			}
		}()
		r.Use(limiter.Handler())
	}

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	var requireAuth []gin.HandlerFunc
	if cfg.OIDC.Enabled() {
		authenticator, err := auth.New(ctx, cfg.OIDC, gdb, log)
		if err != nil {
			return nil, err
		}
		r.Use(auth.Sessions(cfg.SessionSecret))
		authenticator.Register(r)

		if cfg.AuthRequired {
			requireAuth = append(requireAuth, authenticator.RequireAuth())
		}
	}

	// ── entity API ──
	api := r.Group("/", requireAuth...)
	handlers.New(gdb, log, n).Register(api)

	return r, nil
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
