package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/petarst/studynotes-api/internal/config"
	"github.com/petarst/studynotes-api/internal/middleware"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/oauth"
	"github.com/petarst/studynotes-api/internal/services"
	"github.com/petarst/studynotes-api/pkg/dto"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	loginRedirect   = "/index.html"
	failureRedirect = "/login.html"
)

type AuthHandler struct {
	cfg            *config.Config
	providers      map[string]oauth.Provider
	userService    UserServiceInterface
	sessionService SessionServiceInterface
	states         sync.Map
}

type stateData struct {
	expiresAt time.Time
}

func NewAuthHandler(
	cfg *config.Config,
	userService UserServiceInterface,
	sessionService SessionServiceInterface,
) *AuthHandler {
	h := &AuthHandler{
		cfg:            cfg,
		providers:      make(map[string]oauth.Provider),
		userService:    userService,
		sessionService: sessionService,
	}

	if cfg.Google.ClientID != "" {
		h.providers["google"] = oauth.NewGoogleProvider(cfg.Google)
	}
	if cfg.GitHub.ClientID != "" {
		h.providers["github"] = oauth.NewGitHubProvider(cfg.GitHub)
	}

	go h.cleanupStates()

	return h
}

func (h *AuthHandler) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		now := time.Now()
		h.states.Range(func(key, value interface{}) bool {
			if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
				h.states.Delete(key)
			}
			return true
		})
	}
}

func sessionPayload(user *models.User) dto.SessionUser {
	profilePic := ""
	if user.ProfilePic != nil {
		profilePic = *user.ProfilePic
	}
	return dto.SessionUser{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		ProfilePic: profilePic,
	}
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	_, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			c.BadRequest("All fields required")
			return
		}
		if errors.Is(err, services.ErrUserExists) {
			c.BadRequest("Username or email exists")
			return
		}
		logger.Error().Err(err).Msg("failed to register user")
		c.InternalServerError("failed to register")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "Registration successful"})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Unauthorized("invalid username or password")
			return
		}
		logger.Error().Err(err).Msg("failed to authenticate user")
		c.InternalServerError("failed to log in")
		return
	}

	token, err := h.sessionService.Create(c.Request.Context(), user.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create session")
		c.InternalServerError("failed to log in")
		return
	}

	h.setSessionCookie(c, token)

	_ = c.JSON(200, dto.LoginResponse{
		Message: "Login successful",
		User:    sessionPayload(user),
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	if cookie, err := c.Request.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessionService.Destroy(c.Request.Context(), cookie.Value); err != nil {
			logger.Error().Err(err).Msg("failed to destroy session")
		}
	}

	h.clearSessionCookie(c)

	_ = c.JSON(200, map[string]string{"message": "Logged out"})
}

// Status reports whether the request carries a live session. Always 200; the
// frontend polls this on page load.
func (h *AuthHandler) Status(c *drift.Context) {
	cookie, err := c.Request.Cookie(middleware.SessionCookie)
	if err != nil || cookie.Value == "" {
		_ = c.JSON(200, dto.StatusResponse{LoggedIn: false})
		return
	}

	user, err := h.sessionService.Resolve(c.Request.Context(), cookie.Value)
	if err != nil {
		_ = c.JSON(200, dto.StatusResponse{LoggedIn: false})
		return
	}

	payload := sessionPayload(user)
	_ = c.JSON(200, dto.StatusResponse{LoggedIn: true, User: &payload})
}

func (h *AuthHandler) ChangePassword(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("unauthorized")
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			c.BadRequest("Missing fields")
			return
		}
		if errors.Is(err, services.ErrNoPassword) {
			c.BadRequest("Password change unavailable for OAuth-only accounts")
			return
		}
		if errors.Is(err, services.ErrWrongPassword) {
			c.BadRequest("Old password is incorrect")
			return
		}
		logger.Error().Err(err).Msg("failed to change password")
		c.InternalServerError("failed to change password")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "Password updated"})
}

// Consent kicks off the OAuth flow for the given provider by redirecting the
// browser to the provider's consent screen.
func (h *AuthHandler) Consent(provider string) drift.HandlerFunc {
	return func(c *drift.Context) {
		p, ok := h.providers[provider]
		if !ok {
			c.BadRequest("unsupported provider: " + provider)
			return
		}

		state, err := oauth.GenerateState()
		if err != nil {
			logger.Error().Err(err).Msg("failed to generate state")
			c.InternalServerError("failed to start login")
			return
		}

		h.states.Store(state, stateData{expiresAt: time.Now().Add(10 * time.Minute)})

		http.Redirect(c.Response, c.Request, p.GetConsentURL(state), http.StatusFound)
	}
}

// Callback finishes the OAuth flow: state check, code exchange, identity
// reconciliation, then a session cookie and a redirect back to the app.
func (h *AuthHandler) Callback(provider string) drift.HandlerFunc {
	return func(c *drift.Context) {
		p, ok := h.providers[provider]
		if !ok {
			h.redirectWithError(c, "unsupported provider")
			return
		}

		state := c.QueryParam("state")
		if state == "" {
			h.redirectWithError(c, "missing state parameter")
			return
		}

		sd, ok := h.states.LoadAndDelete(state)
		if !ok {
			h.redirectWithError(c, "invalid or expired state")
			return
		}

		sdTyped, ok := sd.(stateData)
		if !ok || time.Now().After(sdTyped.expiresAt) {
			h.redirectWithError(c, "state expired")
			return
		}

		code := c.QueryParam("code")
		if code == "" {
			h.redirectWithError(c, "missing authorization code")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		profile, err := p.ExchangeCode(ctx, code)
		if err != nil {
			logger.Error().Err(err).Str("provider", provider).Msg("code exchange failed")
			h.redirectWithError(c, "failed to exchange code")
			return
		}

		user, err := h.userService.FindOrCreateFromOAuth(ctx, profile)
		if err != nil {
			logger.Error().Err(err).Str("provider", provider).Msg("failed to reconcile oauth user")
			h.redirectWithError(c, "failed to log in")
			return
		}

		token, err := h.sessionService.Create(ctx, user.ID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create session")
			h.redirectWithError(c, "failed to log in")
			return
		}

		h.setSessionCookie(c, token)

		http.Redirect(c.Response, c.Request, loginRedirect, http.StatusFound)
	}
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	http.Redirect(c.Response, c.Request,
		failureRedirect+"?error="+url.QueryEscape(errMsg),
		http.StatusFound)
}

func (h *AuthHandler) setSessionCookie(c *drift.Context, token string) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionService.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *drift.Context) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
