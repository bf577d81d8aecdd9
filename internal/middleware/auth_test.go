package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/petarst/studynotes-api/internal/middleware"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/services"
	"github.com/petarst/studynotes-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSession_NoCookie(t *testing.T) {
	sessions := new(testutil.MockSessionService)
	app := drift.New()

	app.Use(middleware.Session(sessions))
	app.Get("/protected", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	sessions.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestSession_EmptyCookieValue(t *testing.T) {
	sessions := new(testutil.MockSessionService)
	app := drift.New()

	app.Use(middleware.Session(sessions))
	app.Get("/protected", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: ""})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	sessions.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestSession_InvalidToken(t *testing.T) {
	sessions := new(testutil.MockSessionService)
	sessions.On("Resolve", mock.Anything, "bad-token").
		Return(nil, services.ErrSessionNotFound)

	app := drift.New()

	app.Use(middleware.Session(sessions))
	app.Get("/protected", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "bad-token"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	sessions.AssertExpectations(t)
}

func TestSession_ValidToken(t *testing.T) {
	userID := uuid.New()
	user := &models.User{ID: userID, Username: "bob", Email: "bob@x.com"}

	sessions := new(testutil.MockSessionService)
	sessions.On("Resolve", mock.Anything, "good-token").Return(user, nil)

	app := drift.New()

	var extractedUser *models.User
	var extractedUserID uuid.UUID

	app.Use(middleware.Session(sessions))
	app.Get("/protected", func(c *drift.Context) {
		extractedUser = middleware.GetUser(c)
		extractedUserID = middleware.GetUserID(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good-token"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, extractedUser)
	assert.Equal(t, userID, extractedUserID)
	sessions.AssertExpectations(t)
}

func TestGetUser_NotSet(t *testing.T) {
	app := drift.New()

	var extractedUser *models.User
	var extractedUserID uuid.UUID

	app.Get("/test", func(c *drift.Context) {
		extractedUser = middleware.GetUser(c)
		extractedUserID = middleware.GetUserID(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Nil(t, extractedUser)
	assert.Equal(t, uuid.Nil, extractedUserID)
}
