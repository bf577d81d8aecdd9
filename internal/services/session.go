package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/petarst/studynotes-api/internal/database"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/oauth"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService binds opaque tokens to users. Only the SHA-256 hash of a
// token is stored; the raw token lives in the client cookie.
type SessionService struct {
	db  *database.DB
	ttl time.Duration
}

func NewSessionService(db *database.DB, ttl time.Duration) *SessionService {
	return &SessionService{db: db, ttl: ttl}
}

// Create issues a fresh token for the user and persists its association.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := oauth.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, HashToken(token), time.Now().Add(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Resolve maps a token back to its user. Expired sessions and sessions whose
// user is gone both resolve to ErrSessionNotFound.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.profile_pic,
		       u.google_id, u.github_id, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.expires_at > NOW()
	`, HashToken(token)).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.ProfilePic, &user.GoogleID, &user.GitHubID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Destroy removes the session; destroying a nonexistent session is not an
// error.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, HashToken(token))
	return err
}

func (s *SessionService) DestroyAll(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (s *SessionService) CleanupExpired(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	return err
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
