package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/kngrck/mern-project/internal/config"     // cache and rate-limit configuration
	"github.com/kngrck/mern-project/internal/handler"    // import the handlers that implement business logic
	"github.com/kngrck/mern-project/internal/middleware" // middleware for JWT authentication, caching and rate limiting
)

// RegisterRoutes registers routes that do not belong to the API surface on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the user endpoints under /api/users.  Listing
// users is public.  Signup and login are public too but sit behind the
// Redis token bucket so credential stuffing is slowed down; rdb may be
// nil, in which case the limiter disables itself.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	g := e.Group("/api/users")
	g.GET("", u.GetUsers)
	g.POST("/signup", u.Signup, limiter)
	g.POST("/login", u.Login, limiter)
}

// RegisterPlaces registers the place endpoints under /api/places.  The
// two GET routes are public and wrapped in the Redis response cache (a
// nil rdb disables it).  The mutating routes require a valid access
// token; JWTAuth stores the verified user id in the request context and
// the handlers enforce ownership on top of that.
func RegisterPlaces(e *echo.Echo, p *handler.PlaceHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	auth := middleware.JWTAuth(jwtSecret)

	g := e.Group("/api/places")
	g.GET("/:pid", p.GetPlaceByID, cache)
	g.GET("/user/:uid", p.GetPlacesByUserID, cache)
	g.POST("", p.CreatePlace, auth)
	g.PATCH("/:pid", p.UpdatePlace, auth)
	g.DELETE("/:pid", p.DeletePlace, auth)
}
