package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/oauth"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindOrCreateFromOAuth(ctx context.Context, profile *oauth.Profile) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
	UpdateProfilePic(ctx context.Context, id uuid.UUID, profilePic string) (*models.User, error)
}

// SessionServiceInterface defines the methods used by handlers from SessionService
type SessionServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

// NoteServiceInterface defines the methods used by handlers from NoteService
type NoteServiceInterface interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error)
	Get(ctx context.Context, ownerID, noteID uuid.UUID) (*models.Note, error)
	Create(ctx context.Context, ownerID uuid.UUID, title, course, content string) (*models.Note, error)
	Update(ctx context.Context, ownerID, noteID uuid.UUID, title, course, content string) (*models.Note, error)
	Delete(ctx context.Context, ownerID, noteID uuid.UUID) error
}
