package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"storefront-service/handlers"
	"storefront-service/internal/auth"
	"storefront-service/internal/backend"
	"storefront-service/internal/cart"
	"storefront-service/internal/consul"
	"storefront-service/internal/orders"
	"storefront-service/internal/session"
	"storefront-service/internal/stores/kafka"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const serviceName = "storefront"

func main() {
	if err := run(); err != nil {
		slog.Error("service stopped", slog.String("Error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on the environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Auth public key for validating backend-issued tokens.
	keyPath := os.Getenv("AUTH_PUBLIC_KEY_FILE")
	if keyPath == "" {
		keyPath = "pubkey.pem"
	}
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return err
	}
	keys, err := auth.NewKeys(pem)
	if err != nil {
		return err
	}

	// Session store: Redis when configured, in-memory otherwise.
	var sessions session.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		store, err := session.NewRedisStore(addr, 12*time.Hour)
		if err != nil {
			return err
		}
		defer store.Close()
		sessions = store
	} else {
		slog.Warn("REDIS_ADDR not set, using in-memory session store")
		sessions = session.NewMemoryStore()
	}

	// Backend resolution: consul discovery, or a pinned URL for development.
	var resolve backend.Resolver
	if fixed := os.Getenv("BACKEND_URL"); fixed != "" {
		resolve = backend.StaticResolver(fixed)
	} else {
		consulClient, err := consul.NewClient()
		if err != nil {
			return err
		}
		backendService := os.Getenv("BACKEND_SERVICE_NAME")
		if backendService == "" {
			backendService = "commerce-api"
		}
		resolve = backend.ConsulResolver(consulClient, backendService)

		port, err := strconv.Atoi(getEnv("APP_PORT", "8086"))
		if err != nil {
			return err
		}
		serviceID := serviceName + "-" + uuid.NewString()
		if err := consul.RegisterService(consulClient, serviceName, serviceID, port); err != nil {
			return err
		}
	}

	client := backend.NewClient(resolve, sessions)
	carts := cart.NewRegistry(client)
	client.OnSessionTeardown(carts.Drop)
	orderSvc := orders.NewService(client)

	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ",")...)
		if err != nil {
			return err
		}
		defer kafkaConf.Close()
	} else {
		slog.Warn("KAFKA_BROKERS not set, order events will not be published")
	}

	engine := handlers.API("/api", keys, sessions, client, carts, orderSvc, kafkaConf)

	srv := &http.Server{
		Addr:         ":" + getEnv("APP_PORT", "8086"),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("starting storefront service", slog.String("Addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("Signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return err
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
