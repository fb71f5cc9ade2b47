package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/sepehrvand/academy-booking/internal/config"     // Internal config loader
	"github.com/sepehrvand/academy-booking/internal/database"   // MySQL connector
	"github.com/sepehrvand/academy-booking/internal/handler"    // HTTP handlers
	"github.com/sepehrvand/academy-booking/internal/middleware" // Rate limit and cache middleware
	"github.com/sepehrvand/academy-booking/internal/queue"      // Booking event consumer
	"github.com/sepehrvand/academy-booking/internal/repository" // Data access layer
	"github.com/sepehrvand/academy-booking/internal/router"     // Route registration
	"github.com/sepehrvand/academy-booking/internal/service"    // Domain services
	"github.com/sepehrvand/academy-booking/internal/service/queue_publisher"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional infrastructure: when it is unreachable the limiter
	// and the catalogue cache turn into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	templates := repository.NewTemplateRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)

	availability := service.NewAvailabilityService(templates, slots, nil)
	bookingSvc := service.NewBookingService(slots, queue_publisher.PublishBookingConfirmed)

	pub := handler.NewPublicHandler(templates, bookings, availability, bookingSvc, cfg.LookaheadDays)
	adm := handler.NewAdminHandler(templates, slots, bookings)

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, pub, limit, cache)
	router.RegisterAdmin(e, adm, cfg.JWTSecret)

	// Drain confirmation events into the booking log for the office staff.
	go queue.StartBookingConsumer()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
