package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/petarst/studynotes-api/internal/config"
	"github.com/petarst/studynotes-api/internal/database"
	"github.com/petarst/studynotes-api/internal/handlers"
	authmw "github.com/petarst/studynotes-api/internal/middleware"
	"github.com/petarst/studynotes-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db, cfg.SessionTTL)
	noteService := services.NewNoteService(db)

	authHandler := handlers.NewAuthHandler(cfg, userService, sessionService)
	noteHandler := handlers.NewNoteHandler(noteService)
	uploadsHandler := handlers.NewUploadsHandler(cfg.UploadDir)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.BaseURL},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/logout", authHandler.Logout)
	auth.Get("/status", authHandler.Status)
	auth.Get("/google", authHandler.Consent("google"))
	auth.Get("/google/callback", authHandler.Callback("google"))
	auth.Get("/github", authHandler.Consent("github"))
	auth.Get("/github/callback", authHandler.Callback("github"))

	protected := api.Group("")
	protected.Use(authmw.Session(sessionService))

	protected.Post("/auth/change-password", authHandler.ChangePassword)
	protected.Post("/auth/profile-picture", authHandler.UploadProfilePicture)

	protected.Get("/notes", noteHandler.List)
	protected.Post("/notes", noteHandler.Create)
	protected.Get("/notes/:id", noteHandler.Get)
	protected.Put("/notes/:id", noteHandler.Update)
	protected.Delete("/notes/:id", noteHandler.Delete)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	app.Get("/uploads/:file", uploadsHandler.Serve)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = sessionService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
