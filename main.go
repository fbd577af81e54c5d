package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/phillip/helping-hands-go/config"
	"github.com/phillip/helping-hands-go/controllers"
	"github.com/phillip/helping-hands-go/logger"
	"github.com/phillip/helping-hands-go/metrics"
	"github.com/phillip/helping-hands-go/middleware"
	"github.com/phillip/helping-hands-go/routes"
	"github.com/phillip/helping-hands-go/services"
	"github.com/phillip/helping-hands-go/store"
	"github.com/phillip/helping-hands-go/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.SetupDefault(os.Stdout, cfg.IsProduction(), cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. database
	db, err := store.Open(store.Options{
		URI:            cfg.MongoURI,
		Database:       cfg.DBName,
		ConnectTimeout: cfg.DBConnectTimeout,
		MaxPoolSize:    cfg.DBMaxPoolSize,
		ConnectTries:   cfg.DBConnectTries,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.DBConnectTimeout*time.Duration(cfg.DBConnectTries+1))
	if err := db.WaitReady(startCtx); err != nil {
		// keep serving; requests get 503 until the driver reconnects
		log.Warn("starting without database", slog.String("error", err.Error()))
	} else if err := db.EnsureIndexes(startCtx); err != nil {
		log.Warn("could not ensure indexes", slog.String("error", err.Error()))
	}
	cancelStart()

	// 2. metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. services
	eventOpts := []services.EventOption{
		services.WithLogger(log),
		services.WithRecorder(collector),
		services.WithDefaultPageSize(cfg.DefaultPageSize),
	}
	if cfg.MailEnabled() {
		mailer, err := utils.NewMailer(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom, log)
		if err != nil {
			return err
		}
		eventOpts = append(eventOpts, services.WithJoinNotifier(mailer))
	}
	eventService := services.NewEventService(db.Events(), eventOpts...)
	userService := services.NewUserService(db.Users(), log, collector)

	deps := &controllers.Deps{
		Events:     eventService,
		Users:      userService,
		DB:         db,
		Env:        cfg.Env,
		Production: cfg.IsProduction(),
		Log:        log,
	}
	if cfg.CloudinaryEnabled() {
		uploader, err := utils.NewImageUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			return err
		}
		deps.Uploader = uploader
	}

	// 4. router
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 5*time.Minute, log)
	defer limiter.Stop()

	engine := routes.NewEngine(deps, routes.Options{
		Logger:         log,
		Origins:        cfg.Origins(),
		AllowLocalhost: cfg.AllowLocalhost,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequireToken:   cfg.AuthRequireToken,
		RateLimiter:    limiter,
		Observer:       collector,
		MetricsHandler: metrics.Handler(reg),
	})

	// 5. http server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("environment", cfg.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-serveErr:
		return fmt.Errorf("server listen: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.String("error", err.Error()))
	}
	if err := db.Close(ctx); err != nil {
		log.Error("mongodb disconnect failed", slog.String("error", err.Error()))
	}

	log.Info("server stopped gracefully")
	return nil
}
