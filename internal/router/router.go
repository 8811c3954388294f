// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/okarpov/notes-backend/internal/config"
	"github.com/okarpov/notes-backend/internal/handler"
	"github.com/okarpov/notes-backend/internal/middleware"
)

// RegisterRoutes registers the full API surface. Auth endpoints sit behind
// the Redis token bucket; everything owner-scoped sits behind JWTAuth.
func RegisterRoutes(e *echo.Echo, cfg config.Config, rdb *redis.Client, a *handler.AuthHandler, cats *handler.CategoryHandler, notes *handler.NoteHandler) {
	e.GET("/api/health/", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	auth := e.Group("/api/auth", limiter)
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/refresh", a.Refresh)
	auth.POST("/logout", a.Logout)

	protected := e.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	protected.GET("/auth/profile", a.Profile)
	protected.PATCH("/auth/profile", a.UpdateProfile)

	protected.GET("/categories/", cats.List)
	protected.POST("/categories/", cats.Create)
	protected.GET("/categories/:id/", cats.Get)
	protected.PUT("/categories/:id/", cats.Update)
	protected.PATCH("/categories/:id/", cats.Update)
	protected.DELETE("/categories/:id/", cats.Delete)

	protected.GET("/notes/", notes.List)
	protected.POST("/notes/", notes.Create)
	protected.GET("/notes/:id/", notes.Get)
	protected.PUT("/notes/:id/", notes.Update)
	protected.PATCH("/notes/:id/", notes.Update)
	protected.DELETE("/notes/:id/", notes.Delete)
}
