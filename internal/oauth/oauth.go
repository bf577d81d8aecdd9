package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
)

// Profile is the normalized identity a provider strategy returns. Optional
// fields are empty strings; EmailVerified only means something when Email is
// set.
type Profile struct {
	Provider      string
	ID            string
	Username      string
	Name          string
	Email         string
	EmailVerified bool
	AvatarURL     string
}

// Provider is one OAuth login strategy. Strategies are constructed at startup
// and registered into the auth handler by name.
type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
	Name() string
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
