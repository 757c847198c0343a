package main // entry point of the tour-guide marketplace API

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/tour-guide-marketplace/internal/config"
	"github.com/iliyamo/tour-guide-marketplace/internal/database"
	"github.com/iliyamo/tour-guide-marketplace/internal/handler"
	"github.com/iliyamo/tour-guide-marketplace/internal/media"
	"github.com/iliyamo/tour-guide-marketplace/internal/middleware"
	"github.com/iliyamo/tour-guide-marketplace/internal/payment"
	"github.com/iliyamo/tour-guide-marketplace/internal/queue"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
	"github.com/iliyamo/tour-guide-marketplace/internal/router"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}

	cfg := config.Load()
	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher = queue.Noop{}
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, filepath.Join("logs", "booking.log"), log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking event consumer stopped", "err", err)
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, booking events disabled")
	}

	var uploader service.MediaUploader = media.NewLocal(cfg.UploadDir, "/uploads")
	if cfg.Cloudinary.Enabled() {
		cld, err := media.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			log.Error("cloudinary setup failed", "err", err)
			os.Exit(1)
		}
		uploader = cld
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tours := repository.NewTourRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)

	authSvc := service.NewAuthService(users, tokens, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	userSvc := service.NewUserService(users, uploader, cfg.BcryptCost)
	tourSvc := service.NewTourService(tours, uploader)
	bookingSvc := service.NewBookingService(bookings, users, tours, events, log)
	paymentSvc := service.NewPaymentService(payments, bookings, payment.NewStripe(cfg.Stripe.SecretKey), cfg.Stripe.Currency)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				log.Warn("request", append(attrs, "err", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("10M"))
	if !cfg.Cloudinary.Enabled() {
		e.Static("/uploads", cfg.UploadDir)
	}

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, cfg.IsProduction()),
		Users:     handler.NewUserHandler(userSvc),
		Tours:     handler.NewTourHandler(tourSvc),
		Bookings:  handler.NewBookingHandler(bookingSvc),
		Payments:  handler.NewPaymentHandler(paymentSvc),
		Health:    handler.Health(db),
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewResponseCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
