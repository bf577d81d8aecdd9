package oauth

import (
	"testing"

	"github.com/petarst/studynotes-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGitHubProvider_Name(t *testing.T) {
	p := NewGitHubProvider(config.OAuthConfig{})
	assert.Equal(t, "github", p.Name())
}

func TestGitHubProvider_GetConsentURL(t *testing.T) {
	p := NewGitHubProvider(config.OAuthConfig{
		ClientID:     "github-client",
		ClientSecret: "shh",
		RedirectURL:  "http://localhost:8080/api/auth/github/callback",
	})

	url := p.GetConsentURL("state456")

	assert.Contains(t, url, "github.com/login/oauth/authorize")
	assert.Contains(t, url, "client_id=github-client")
	assert.Contains(t, url, "state=state456")
	assert.Contains(t, url, "user%3Aemail")
	assert.NotContains(t, url, "shh")
}
