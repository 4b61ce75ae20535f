package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/kngrck/mern-project/internal/config"     // Internal config loader
	"github.com/kngrck/mern-project/internal/database"   // MySQL connection helper
	"github.com/kngrck/mern-project/internal/handler"    // HTTP handlers
	"github.com/kngrck/mern-project/internal/queue"      // background image-cleanup consumer
	"github.com/kngrck/mern-project/internal/repository" // data access layer
	"github.com/kngrck/mern-project/internal/router"     // Internal router setup
)

func main() {
	// Load a local .env if present; real deployments set the variables
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	users := repository.NewUserRepo(db)
	places := repository.NewPlaceRepo(db)

	// Redis backs the response cache and the auth rate limiter. A nil
	// client disables both and the API keeps working against MySQL alone.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users), config.LoadRateLimitConfig(), rdb)
	router.RegisterPlaces(e, handler.NewPlaceHandler(cfg, places, users), cfg.JWTSecret, config.LoadCacheConfig(), rdb)

	// The cleanup consumer owns its own reconnect loop and never returns
	// under normal operation.
	go func() {
		if err := queue.StartPlaceCleanupConsumer(); err != nil {
			log.Printf("cleanup consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
