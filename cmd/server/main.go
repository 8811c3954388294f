package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/okarpov/notes-backend/internal/config"
	"github.com/okarpov/notes-backend/internal/database"
	"github.com/okarpov/notes-backend/internal/handler"
	"github.com/okarpov/notes-backend/internal/logging"
	"github.com/okarpov/notes-backend/internal/queue"
	"github.com/okarpov/notes-backend/internal/repository"
	"github.com/okarpov/notes-backend/internal/router"
)

func main() {
	// .env is optional; deployments may set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, auth rate limiting disabled")
	}

	// Background consumer turning note.updated events into audit log lines.
	go func() {
		if err := queue.StartNoteAuditConsumer(); err != nil {
			logger.Error("note audit consumer stopped", "err", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	notes := repository.NewNoteRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	auth := handler.NewAuthHandler(cfg, users, tokens)
	cats := handler.NewCategoryHandler(categories)
	nts := handler.NewNoteHandler(notes, categories, logger)

	router.RegisterRoutes(e, cfg, rdb, auth, cats, nts)

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
