package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petarst/studynotes-api/internal/database"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/oauth"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("all fields required")
	ErrUserExists         = errors.New("username or email exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPassword         = errors.New("password login unavailable for this account")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
)

const userColumns = `id, username, email, password_hash, profile_pic, google_id, github_id, created_at, updated_at`

// providerColumns whitelists the users column each OAuth provider links to.
var providerColumns = map[string]string{
	"google": "google_id",
	"github": "github_id",
}

const uniqueViolation = "23505"

// maxUsernameAttempts bounds the suffix retry loop when deriving a username
// for a new OAuth account.
const maxUsernameAttempts = 50

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.ProfilePic, &user.GoogleID, &user.GitHubID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns+`
	`, username, email, string(hash)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a local username/password pair. Unknown usernames,
// OAuth-only accounts and wrong passwords are indistinguishable to the
// caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1
	`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindOrCreateFromOAuth maps a provider profile to a local user, creating or
// linking as needed:
//  1. exact (provider, id) match wins, backfilling a missing avatar
//  2. an existing user with the profile's email gets the identity attached
//  3. otherwise a new account is created with a derived unique username
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, profile *oauth.Profile) (*models.User, error) {
	column, ok := providerColumns[profile.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", profile.Provider)
	}

	user, err := s.scanUser(s.db.Pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column),
		profile.ID))
	if err == nil {
		if user.ProfilePic == nil && profile.AvatarURL != "" {
			// One-time best-effort avatar merge; login succeeds either way.
			_, _ = s.db.Pool.Exec(ctx, `
				UPDATE users SET profile_pic = $1, updated_at = NOW() WHERE id = $2
			`, profile.AvatarURL, user.ID)
			user.ProfilePic = &profile.AvatarURL
		}
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	email := candidateEmail(profile)

	user, err = s.linkByEmail(ctx, column, profile.ID, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return s.createFromProfile(ctx, column, profile, email)
}

// linkByEmail attaches the provider identity to an existing account with the
// same email. pgx.ErrNoRows means there is no such account.
func (s *UserService) linkByEmail(ctx context.Context, column, providerID, email string) (*models.User, error) {
	return s.scanUser(s.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE users SET %s = $1, updated_at = NOW()
		WHERE email = $2
		RETURNING %s
	`, column, userColumns), providerID, email))
}

func (s *UserService) createFromProfile(ctx context.Context, column string, profile *oauth.Profile, email string) (*models.User, error) {
	base := usernameBase(profile, email)

	username := base
	for attempt := 1; attempt <= maxUsernameAttempts; attempt++ {
		user, err := s.scanUser(s.db.Pool.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO users (username, email, %s, profile_pic)
			VALUES ($1, $2, $3, $4)
			RETURNING %s
		`, column, userColumns), username, email, profile.ID, nullableString(profile.AvatarURL)))
		if err == nil {
			return user, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case "users_username_key":
				// Uniqueness lives in the store; a conflict just means
				// try the next suffix.
				username = fmt.Sprintf("%s%d", base, attempt)
				continue
			case "users_email_key":
				// Lost a race with a concurrent signup for the same email.
				if user, lerr := s.linkByEmail(ctx, column, profile.ID, email); lerr == nil {
					return user, nil
				}
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return nil, fmt.Errorf("failed to derive a unique username for %q", base)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !user.HasPassword() {
		return ErrNoPassword
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	return err
}

func (s *UserService) UpdateProfilePic(ctx context.Context, id uuid.UUID, profilePic string) (*models.User, error) {
	user, err := s.scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET profile_pic = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns+`
	`, profilePic, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// candidateEmail picks the profile email when usable, otherwise a stable
// placeholder so the email column stays unique per provider identity.
func candidateEmail(profile *oauth.Profile) string {
	if profile.Email != "" && profile.EmailVerified {
		return profile.Email
	}
	return fmt.Sprintf("%s_%s@example.com", profile.Provider, profile.ID)
}

// usernameBase derives the starting username: provider username or display
// name (lowercased, whitespace removed), then the email local-part, then
// provider_id.
func usernameBase(profile *oauth.Profile, email string) string {
	for _, candidate := range []string{profile.Username, profile.Name} {
		if name := stripWhitespace(candidate); name != "" {
			return strings.ToLower(name)
		}
	}
	if local, _, found := strings.Cut(email, "@"); found && local != "" {
		return strings.ToLower(local)
	}
	return fmt.Sprintf("%s_%s", profile.Provider, profile.ID)
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
