package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/breedermaps/server/internal/config"
	"github.com/breedermaps/server/internal/database"
	"github.com/breedermaps/server/internal/handlers"
	applogger "github.com/breedermaps/server/internal/logger"
	"github.com/breedermaps/server/internal/middleware"
	"github.com/breedermaps/server/internal/services"
	"github.com/breedermaps/server/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// @title BreederMaps API
// @version 1.0.0
// @description Location-based breeder discovery API
// @BasePath /v1
// @schemes https
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	if err := applogger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer applogger.Sync()

	// Initialize OpenTelemetry Tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "breedermaps-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, "breedermaps-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Collect connection pool metrics in the background
	poolCtx, poolCancel := context.WithCancel(ctx)
	defer poolCancel()
	go database.StartConnectionPoolMetricsCollector(poolCtx, db.DB, 15*time.Second)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BreederMaps API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	// JSON structured access logging
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		TimeZone:   "UTC",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: "breedermaps-api",
	}))
	app.Use(middleware.PrometheusMiddleware())
	// Mobile app (Android/iOS) calls the API from any origin
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, DNT, Origin, User-Agent, X-Requested-With",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400,
	}))

	// Setup routes
	setupRoutes(app, db, cfg)

	// Start server
	port := cfg.ServerPort
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, db *database.DB, cfg *config.Config) {
	// Geocoding: Nominatim behind a shared rate limiter and the
	// Postgres-backed cache
	provider := services.NewNominatimClient(cfg.GeocodingUA,
		services.WithBaseURL(cfg.NominatimURL),
		services.WithTimeout(cfg.GeocodingTimeout),
	)
	geocodeCache := services.NewDBGeocodeCache(db)
	geocoder := services.NewGeocodingService(provider, geocodeCache,
		services.WithRateLimit(cfg.GeocodingRate, cfg.GeocodingBurst),
		services.WithCacheTTL(cfg.GeocodingCacheTTL),
	)

	// Breeder search over the spatial store
	geoStore := services.NewGormGeoStore(db)
	searchService := services.NewBreederSearchService(geoStore).WithMaxResults(cfg.SearchMaxResults)

	// Breed catalog
	catalog := services.NewGormBreedCatalog(db)
	autocomplete := services.NewBreedAutocompleteService(catalog)

	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// Prometheus scrape endpoint
	app.Get("/metrics", middleware.PrometheusHandler())

	// API v1 group
	v1 := app.Group("/v1")

	search := v1.Group("/search")
	handlers.SetupSearchRoutes(search, searchService)

	breeds := v1.Group("/breeds")
	handlers.SetupBreedRoutes(breeds, autocomplete, catalog)

	geocode := v1.Group("/geocode")
	handlers.SetupGeocodeRoutes(geocode, geocoder)
}
