package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Course    string    `json:"course"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
