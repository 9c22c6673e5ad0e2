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

	"github.com/joho/godotenv"
	"github.com/shopkart/shopkart-api/internal/auth"
	"github.com/shopkart/shopkart-api/internal/cart"
	"github.com/shopkart/shopkart-api/internal/config"
	"github.com/shopkart/shopkart-api/internal/database"
	"github.com/shopkart/shopkart-api/internal/handlers"
	"github.com/shopkart/shopkart-api/internal/routes"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "shopkart-api"

// setupTracing installs a stdout span exporter. The returned func flushes it.
func setupTracing() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	// 1. --- Database Connection ---
	db, err := database.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(db, cfg.DBDriver); err != nil {
		log.Fatalf("Failed to initialise schema: %v", err)
	}

	// 2. --- Cart Storage ---
	var carts cart.Storage
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cart.OpenRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		carts = cart.NewRedisStorage(client, cfg.CartTTL)
		log.Println("Cart storage: Redis")
	} else {
		carts = cart.NewMemoryStorage()
		log.Println("WARNING: REDIS_URL is not set. Carts are kept in memory and lost on restart.")
	}

	// 3. --- Tracing (optional) ---
	if cfg.OTelStdout {
		shutdown, err := setupTracing()
		if err != nil {
			log.Fatalf("Failed to initialise tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("Tracer shutdown: %v", err)
			}
		}()
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:     db,
		Carts:  carts,
		Tokens: auth.New(cfg.JWTSecret, cfg.JWTTTL),
		Config: cfg,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		log.Printf("Starting ShopKart API server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
