package dto

import (
	"time"

	"github.com/google/uuid"
)

type NoteRequest struct {
	Title   string `json:"title"`
	Course  string `json:"course"`
	Content string `json:"content"`
}

type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Course    string    `json:"course"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
