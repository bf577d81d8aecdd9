package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/petarst/studynotes-api/internal/database"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/oauth"
	"github.com/petarst/studynotes-api/internal/services"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user. The default is a local account with
// password "password123".
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}
	hashStr := string(hash)

	user := &models.User{
		Username:     fmt.Sprintf("user%d", f.counter),
		Email:        fmt.Sprintf("user%d@example.com", f.counter),
		PasswordHash: &hashStr,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, profile_pic, google_id, github_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, username, email, password_hash, profile_pic, google_id, github_id, created_at, updated_at
	`, user.Username, user.Email, user.PasswordHash, user.ProfilePic, user.GoogleID, user.GitHubID).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.ProfilePic, &user.GoogleID, &user.GitHubID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithUsername sets the user's username
func WithUsername(username string) UserOption {
	return func(u *models.User) {
		u.Username = username
	}
}

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithPassword replaces the default password
func WithPassword(t *testing.T, password string) UserOption {
	return func(u *models.User) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash fixture password: %v", err)
		}
		hashStr := string(hash)
		u.PasswordHash = &hashStr
	}
}

// WithoutPassword makes the user OAuth-only
func WithoutPassword() UserOption {
	return func(u *models.User) {
		u.PasswordHash = nil
	}
}

// WithGoogleID links the user to a Google identity
func WithGoogleID(id string) UserOption {
	return func(u *models.User) {
		u.GoogleID = &id
	}
}

// WithGitHubID links the user to a GitHub identity
func WithGitHubID(id string) UserOption {
	return func(u *models.User) {
		u.GitHubID = &id
	}
}

// WithProfilePic sets the user's profile picture URL
func WithProfilePic(url string) UserOption {
	return func(u *models.User) {
		u.ProfilePic = &url
	}
}

// CreateNote creates a test note owned by the given user
func (f *Fixtures) CreateNote(t *testing.T, owner *models.User, opts ...NoteOption) *models.Note {
	t.Helper()
	f.counter++

	note := &models.Note{
		UserID:  owner.ID,
		Title:   fmt.Sprintf("Test Note %d", f.counter),
		Course:  fmt.Sprintf("Course %d", f.counter),
		Content: fmt.Sprintf("Content of note %d", f.counter),
	}

	for _, opt := range opts {
		opt(note)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, title, course, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, course, content, created_at
	`, note.UserID, note.Title, note.Course, note.Content).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Course,
		&note.Content, &note.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	return note
}

// NoteOption configures a test note
type NoteOption func(*models.Note)

// WithTitle sets the note's title
func WithTitle(title string) NoteOption {
	return func(n *models.Note) {
		n.Title = title
	}
}

// WithCourse sets the note's course
func WithCourse(course string) NoteOption {
	return func(n *models.Note) {
		n.Course = course
	}
}

// WithContent sets the note's content
func WithContent(content string) NoteOption {
	return func(n *models.Note) {
		n.Content = content
	}
}

// CreateSession inserts a session row for the given token
func (f *Fixtures) CreateSession(t *testing.T, userID uuid.UUID, token string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, services.HashToken(token), expiresAt)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
}

// OAuthProfile creates a test OAuth profile with a verified email
func OAuthProfile(provider, id, name, email string) *oauth.Profile {
	return &oauth.Profile{
		Provider:      provider,
		ID:            id,
		Name:          name,
		Email:         email,
		EmailVerified: true,
		AvatarURL:     "https://example.com/avatar.png",
	}
}
