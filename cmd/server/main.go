package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/config"
	httpapi "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, err := repository.NewStore(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer store.Close()
	log.Printf("Connected to postgres")

	if err := store.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	tokens := session.NewRedisTokenStore(redisClient, cfg.SessionTTL)
	sessions := session.NewProvider(store, tokens)
	carts := cart.NewService(store)
	checkouts := checkout.NewService(store, checkout.SimulatedGateway{}, cfg.PaymentTimeout)

	router := httpapi.NewRouter(httpapi.Services{
		Sessions: sessions,
		Catalog:  store,
		Carts:    carts,
		Checkout: checkouts,
		Timeout:  cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: otelhttp.NewHandler(router, "storefront"),
	}

	go func() {
		log.Printf("Storefront listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("Storefront stopped")
}
