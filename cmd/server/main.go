package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/app"
	"github.com/iliyamo/hotel-pms/internal/config"
	"github.com/iliyamo/hotel-pms/internal/handler"
	"github.com/iliyamo/hotel-pms/internal/middleware"
	"github.com/iliyamo/hotel-pms/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := app.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.EventsEnabled {
		go func() {
			if err := a.Consumer().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.AccessLog(logger))

	var ready echo.HandlerFunc
	if a.DB != nil {
		ready = handler.Ready(a.DB)
	} else {
		ready = handler.Ready(nil)
	}
	router.Register(e, router.Handlers{
		Rooms:    handler.NewRoomHandler(a.Service, logger),
		Bookings: handler.NewBookingHandler(a.Service, logger),
		Guests:   handler.NewGuestHandler(a.Service, logger),
		Admin:    handler.NewAdminHandler(a.Service, logger),
		Auth:     handler.NewAuthHandler(cfg, nil, logger),
		Ready:    ready,
	}, router.Extras{
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, a.Redis),
		Cache:     middleware.NewRedisCache(cfg.Cache, a.Redis),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
