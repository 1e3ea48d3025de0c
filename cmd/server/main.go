package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"floristDashboard/internal/analytics"
	"floristDashboard/internal/config"
	"floristDashboard/internal/db"
	grpcserver "floristDashboard/internal/grpc"
	"floristDashboard/internal/httpapi"
	"floristDashboard/internal/logger"
	"floristDashboard/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		logger.New(logger.Config{}).WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log)
	log.Infof("Configuration loaded: %v", cfg)

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("open db")
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.WithError(err).Error("close db")
		}
	}()

	loc := cfg.Shop.Location
	users := repository.NewUserRepository(d)
	orders := repository.NewOrderRepository(d, loc)
	bouquets := repository.NewBouquetRepository(d)
	dash := analytics.NewDashboard(
		orders,
		bouquets,
		repository.NewDeliveryWindowRepository(d),
		repository.NewConsultationRepository(d, loc),
		analytics.Options{
			Location:         loc,
			Workday:          analytics.Workday{Start: cfg.Shop.WorkdayStart, Location: loc},
			DecimalSeparator: cfg.Shop.DecimalSeparator,
			Logger:           logger.WithComponent(log, "analytics"),
		},
	)

	// Start gRPC
	shutdownGRPC, err := grpcserver.StartGRPC(cfg.GRPC.Address, cfg.Auth.JWTSecret, &grpcserver.DashboardServer{
		Users:     users,
		Orders:    orders,
		Dashboard: dash,
		Log:       logger.WithComponent(log, "grpc"),
	}, logger.WithComponent(log, "grpc"))
	if err != nil {
		log.WithError(err).Fatal("start grpc")
	}
	log.Infof("gRPC server listening on %s", cfg.GRPC.Address)

	// Start HTTP
	app := httpapi.New(httpapi.Config{
		JWTSecret: cfg.Auth.JWTSecret,
		LoginURL:  cfg.HTTP.LoginURL,
		Users:     users,
		Dashboard: dash,
		Catalog:   bouquets,
		Shops:     repository.NewShopRepository(d),
		Log:       logger.WithComponent(log, "http"),
	})
	go func() {
		if err := app.Listen(cfg.HTTP.Address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			log.WithError(err).Error("http listen")
		}
	}()
	log.Infof("HTTP server listening on %s", cfg.HTTP.Address)

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := shutdownGRPC(ctx); err != nil {
		log.WithError(err).Error("grpc shutdown")
	}
}
