package main

import (
	"context"
	"fmt"
	"log"

	"github.com/petarst/studynotes-api/internal/config"
	"github.com/petarst/studynotes-api/internal/database"
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

	result, err := db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		log.Fatalf("Failed to delete expired sessions: %v", err)
	}

	fmt.Printf("Removed %d expired sessions\n", result.RowsAffected())
}
