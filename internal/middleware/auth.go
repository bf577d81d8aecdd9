package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/petarst/studynotes-api/internal/models"
)

const (
	// SessionCookie is the cookie carrying the opaque session token.
	SessionCookie = "studynotes_session"

	UserKey = "user"
)

// SessionResolver resolves an opaque token to the user it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Session rejects requests without a valid session cookie and stores the
// resolved user in the request context for downstream handlers.
func Session(sessions SessionResolver) drift.HandlerFunc {
	return func(c *drift.Context) {
		cookie, err := c.Request.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			c.Unauthorized("unauthorized")
			return
		}

		user, err := sessions.Resolve(c.Request.Context(), cookie.Value)
		if err != nil {
			c.Unauthorized("unauthorized")
			return
		}

		c.Set(UserKey, user)

		c.Next()
	}
}

func GetUser(c *drift.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func GetUserID(c *drift.Context) uuid.UUID {
	if user := GetUser(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}
