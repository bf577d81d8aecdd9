package handlers

import (
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/petarst/studynotes-api/internal/middleware"
	"github.com/petarst/studynotes-api/internal/models"
	"github.com/petarst/studynotes-api/internal/services"
	"github.com/petarst/studynotes-api/pkg/dto"
)

type NoteHandler struct {
	noteService NoteServiceInterface
}

func NewNoteHandler(noteService NoteServiceInterface) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func noteResponse(note *models.Note) dto.NoteResponse {
	return dto.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Course:    note.Course,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
	}
}

func (h *NoteHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("unauthorized")
		return
	}

	notes, err := h.noteService.List(c.Request.Context(), userID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list notes")
		c.InternalServerError("failed to get notes")
		return
	}

	response := make([]dto.NoteResponse, len(notes))
	for i, n := range notes {
		response[i] = noteResponse(&n)
	}

	_ = c.JSON(200, response)
}

func (h *NoteHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("unauthorized")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.NotFound("note not found")
		return
	}

	note, err := h.noteService.Get(c.Request.Context(), userID, noteID)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.NotFound("note not found")
			return
		}
		logger.Error().Err(err).Msg("failed to get note")
		c.InternalServerError("failed to get note")
		return
	}

	_ = c.JSON(200, noteResponse(note))
}

func (h *NoteHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("unauthorized")
		return
	}

	var req dto.NoteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	note, err := h.noteService.Create(c.Request.Context(), userID, req.Title, req.Course, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			c.BadRequest("All fields required")
			return
		}
		logger.Error().Err(err).Msg("failed to create note")
		c.InternalServerError("failed to create note")
		return
	}

	_ = c.JSON(201, noteResponse(note))
}

func (h *NoteHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("unauthorized")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.NotFound("note not found")
		return
	}

	var req dto.NoteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	note, err := h.noteService.Update(c.Request.Context(), userID, noteID, req.Title, req.Course, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.NotFound("note not found")
			return
		}
		if errors.Is(err, services.ErrMissingFields) {
			c.BadRequest("All fields required")
			return
		}
		logger.Error().Err(err).Msg("failed to update note")
		c.InternalServerError("failed to update note")
		return
	}

	_ = c.JSON(200, noteResponse(note))
}

func (h *NoteHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("unauthorized")
		return
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.NotFound("note not found")
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), userID, noteID); err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			c.NotFound("note not found")
			return
		}
		logger.Error().Err(err).Msg("failed to delete note")
		c.InternalServerError("failed to delete note")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "note deleted"})
}
