package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodiedelight/internal/config"
	"foodiedelight/internal/database"
	"foodiedelight/internal/logger"
	"foodiedelight/internal/messaging"
	"foodiedelight/internal/services/catalog"
	"foodiedelight/internal/services/notification"
	"foodiedelight/internal/services/order"
	"foodiedelight/internal/services/session"
	"foodiedelight/internal/services/storefront"
)

func main() {
	var (
		mode       = flag.String("mode", "storefront", "Service mode (storefront, notification-subscriber)")
		port       = flag.Int("port", 0, "HTTP port, overrides server.port from the config file")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": cfg.Server.Port,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "storefront":
		err = runStorefront(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

func runStorefront(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, os.DirFS(cfg.Server.MigrationsDir)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Orders are still accepted without a broker; only the event is lost.
	var notifier order.Notifier
	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		log.Error("rabbitmq_unavailable", "Running without order events", requestID, err, nil)
	} else {
		defer conn.Close()
		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		notifier = messaging.NewPublisher(conn, log)
	}

	reader := catalog.NewReader(
		database.NewMenuRepository(db),
		database.NewMenuListener(db),
		log,
	)
	if err := reader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reader: %w", err)
	}
	defer func() {
		if err := reader.Stop(); err != nil {
			log.Error("menu_subscription_close_failed", "Failed to stop catalog reader", requestID, err, nil)
		}
	}()

	orders := database.NewOrderRepository(db)
	sessions := session.NewManager(reader, orders, notifier, log, cfg.Session.TTL)
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	handler := storefront.NewHandler(reader, sessions, orders, db, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Storefront started on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port": cfg.Server.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", nil)

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}
