package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/petarst/studynotes-api/internal/config"
	"github.com/petarst/studynotes-api/internal/middleware"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough to look like an image for upload purposes; the handler
// trusts the part's declared content type.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func multipartImage(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func setupUploadTest(t *testing.T) (*testutil.MockUserService, *models.User, string, http.Handler) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockSessionService := new(testutil.MockSessionService)

	user := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@x.com"}
	mockSessionService.On("Resolve", mock.Anything, "token123").Return(user, nil)

	uploadDir := t.TempDir()
	cfg := &config.Config{
		Env:        "test",
		BaseURL:    "http://localhost:8080",
		UploadDir:  uploadDir,
		SessionTTL: 7 * 24 * time.Hour,
	}
	handler := NewAuthHandler(cfg, mockUserService, mockSessionService)

	app := drift.New()
	app.Use(middleware.Session(mockSessionService))
	app.Post("/api/auth/profile-picture", handler.UploadProfilePicture)

	return mockUserService, user, uploadDir, app
}

func TestUploadProfilePicture_Success(t *testing.T) {
	mockUserService, user, uploadDir, app := setupUploadTest(t)

	updated := *user
	mockUserService.On("UpdateProfilePic", mock.Anything, user.ID,
		mock.MatchedBy(func(url string) bool {
			return strings.HasPrefix(url, "/uploads/"+user.ID.String())
		})).
		Run(func(args mock.Arguments) {
			pic := args.String(2)
			updated.ProfilePic = &pic
		}).
		Return(&updated, nil)

	body, contentType := multipartImage(t, "profilePic", "avatar.png", "image/png", pngHeader)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Profile updated")
	assert.Contains(t, rec.Body.String(), "profilePicUrl")

	// The file landed in the upload directory under the user's ID.
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), user.ID.String()))
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))

	stored, err := os.ReadFile(filepath.Join(uploadDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	mockUserService.AssertExpectations(t)
}

func TestUploadProfilePicture_RejectsNonImage(t *testing.T) {
	mockUserService, _, uploadDir, app := setupUploadTest(t)

	body, contentType := multipartImage(t, "profilePic", "notes.txt", "text/plain", []byte("hello"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only image files allowed")

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	mockUserService.AssertNotCalled(t, "UpdateProfilePic", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadProfilePicture_NoFile(t *testing.T) {
	mockUserService, _, _, app := setupUploadTest(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("unrelated", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/profile-picture", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")
	mockUserService.AssertNotCalled(t, "UpdateProfilePic", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadProfilePicture_Unauthorized(t *testing.T) {
	mockUserService, _, _, app := setupUploadTest(t)

	body, contentType := multipartImage(t, "profilePic", "avatar.png", "image/png", pngHeader)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockUserService.AssertNotCalled(t, "UpdateProfilePic", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadProfilePicture_TooLarge(t *testing.T) {
	mockUserService, _, _, app := setupUploadTest(t)

	oversized := bytes.Repeat([]byte{0xff}, maxUploadSize+1024)
	body, contentType := multipartImage(t, "profilePic", "huge.png", "image/png", oversized)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockUserService.AssertNotCalled(t, "UpdateProfilePic", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadsHandler_Serve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "avatar.png"), pngHeader, 0o644))

	handler := NewUploadsHandler(dir)

	app := drift.New()
	app.Get("/uploads/:file", handler.Serve)

	req := httptest.NewRequest(http.MethodGet, "/uploads/avatar.png", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())
}

func TestUploadsHandler_Serve_Missing(t *testing.T) {
	handler := NewUploadsHandler(t.TempDir())

	app := drift.New()
	app.Get("/uploads/:file", handler.Serve)

	req := httptest.NewRequest(http.MethodGet, "/uploads/nope.png", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
