package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/skyweb/vms/internal/config"
	"github.com/skyweb/vms/internal/handler"
	"github.com/skyweb/vms/internal/repository"
	"github.com/skyweb/vms/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.Connect(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", cfg.DBDriver)

	visitorRepo := repository.NewVisitorRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	var notifiers []service.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, service.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout))
	}
	if cfg.MailEnabled {
		mailer, err := service.NewSESMailer(context.Background(), cfg.MailFrom)
		if err != nil {
			return fmt.Errorf("init mailer: %w", err)
		}
		notifiers = append(notifiers, mailer)
	}
	var alerts *service.AlertDispatcher
	if len(notifiers) > 0 {
		alerts = service.NewAlertDispatcher(notifiers...)
	}

	visitorSvc := service.NewVisitorService(visitorRepo, userRepo, alerts)
	feedSvc := service.NewFeedService(notificationRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	staffSvc := service.NewStaffService(userRepo)

	visitorHandler := handler.NewVisitorHandler(visitorSvc)
	notificationHandler := handler.NewNotificationHandler(feedSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewAppValidator()

	e.Use(echomw.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	// Kiosk surface and the polling feed are public; the feed scopes itself
	// by the identity hints it is given.
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/notifications", notificationHandler.Poll)
	api.POST("/visitors", visitorHandler.CheckIn)
	api.GET("/visitors", visitorHandler.List)
	api.GET("/visitors/:id", visitorHandler.Get)
	api.POST("/visitors/:id/status", visitorHandler.UpdateStatus)
	api.GET("/staff", staffHandler.List)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/stats", visitorHandler.Stats)

	admin := protected.Group("/staff", handler.RequireAdmin())
	admin.POST("", staffHandler.Create)
	admin.PATCH("/:id", staffHandler.Update)
	admin.DELETE("/:id", staffHandler.Delete)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
