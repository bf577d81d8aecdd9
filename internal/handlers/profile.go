package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/petarst/studynotes-api/internal/middleware"
)

// maxUploadSize caps profile pictures at 2MB.
const maxUploadSize = 2 << 20

// UploadProfilePicture stores a multipart image under the upload directory
// as {userID}-{unix-ms}{ext} and records its public URL on the user.
func (h *AuthHandler) UploadProfilePicture(c *drift.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.Unauthorized("unauthorized")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Response, c.Request.Body, maxUploadSize)

	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		c.BadRequest("file too large or invalid form")
		return
	}

	file, header, err := c.Request.FormFile("profilePic")
	if err != nil {
		c.BadRequest("No file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		c.BadRequest("Only image files allowed")
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create upload dir")
		c.InternalServerError("failed to store file")
		return
	}

	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s-%d%s", user.ID, time.Now().UnixMilli(), ext)

	dst, err := os.Create(filepath.Join(h.cfg.UploadDir, filename))
	if err != nil {
		logger.Error().Err(err).Msg("failed to create upload file")
		c.InternalServerError("failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Msg("failed to write upload file")
		c.InternalServerError("failed to store file")
		return
	}

	picURL := "/uploads/" + filename
	updated, err := h.userService.UpdateProfilePic(c.Request.Context(), user.ID, picURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to update profile picture")
		c.InternalServerError("failed to update profile")
		return
	}

	profilePic := picURL
	if updated.ProfilePic != nil {
		profilePic = *updated.ProfilePic
	}

	_ = c.JSON(200, map[string]string{
		"message":       "Profile updated",
		"profilePicUrl": profilePic,
	})
}

// UploadsHandler serves stored profile pictures.
type UploadsHandler struct {
	dir string
}

func NewUploadsHandler(dir string) *UploadsHandler {
	return &UploadsHandler{dir: dir}
}

func (h *UploadsHandler) Serve(c *drift.Context) {
	// Base strips any path traversal out of the parameter.
	name := filepath.Base(c.Param("file"))
	http.ServeFile(c.Response, c.Request, filepath.Join(h.dir, name))
}
