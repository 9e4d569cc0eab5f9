package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/db"
	"github.com/Skotchmaster/restaurant_orders/pkg/logging"
	middleware "github.com/Skotchmaster/restaurant_orders/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/restaurant_orders/pkg/middleware/logging"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/config"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/events"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/httpserver"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/repo"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/service"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	Repo := &repo.GormRepo{DB: gdb}
	err = Repo.Migrate(initCtx)
	cancel()
	if err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty, events are logged only")
		publisher = &events.LogPublisher{Log: logger}
	}

	relay := events.NewRelay(Repo, publisher, events.RelayConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxAttempts:  cfg.OutboxMaxAttempts,
	}, logger)

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: service.NewOrderService(Repo)},
		Auth:         middleware.NewAuthenticator(cfg.JWTAccessSecret),
		DB:           gdb,
	})

	relayCtx, stopRelay := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		relay.Run(relayCtx)
	}()

	port := strconv.Itoa(cfg.ServerPort)
	go func() {
		logger.Info("server_starting", "port", port)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("server_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_error", "error", err)
	}

	stopRelay()
	wg.Wait()

	if err := publisher.Close(); err != nil {
		logger.Error("publisher_close_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}
