package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/petarst/studynotes-api/internal/database"
	"github.com/petarst/studynotes-api/internal/models"
)

// ErrNoteNotFound covers both a missing note and a note owned by someone
// else; callers must not be able to tell the two apart.
var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `id, user_id, title, course, content, created_at`

type NoteService struct {
	db *database.DB
}

func NewNoteService(db *database.DB) *NoteService {
	return &NoteService{db: db}
}

func (s *NoteService) scanNote(row pgx.Row) (*models.Note, error) {
	var note models.Note
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Course,
		&note.Content, &note.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *NoteService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Note, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE user_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Course, &n.Content, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *NoteService) Get(ctx context.Context, ownerID, noteID uuid.UUID) (*models.Note, error) {
	note, err := s.scanNote(s.db.Pool.QueryRow(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2
	`, noteID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Create(ctx context.Context, ownerID uuid.UUID, title, course, content string) (*models.Note, error) {
	title, course, content = strings.TrimSpace(title), strings.TrimSpace(course), strings.TrimSpace(content)
	if title == "" || course == "" || content == "" {
		return nil, ErrMissingFields
	}

	return s.scanNote(s.db.Pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, title, course, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noteColumns+`
	`, ownerID, title, course, content))
}

func (s *NoteService) Update(ctx context.Context, ownerID, noteID uuid.UUID, title, course, content string) (*models.Note, error) {
	title, course, content = strings.TrimSpace(title), strings.TrimSpace(course), strings.TrimSpace(content)
	if title == "" || course == "" || content == "" {
		return nil, ErrMissingFields
	}

	note, err := s.scanNote(s.db.Pool.QueryRow(ctx, `
		UPDATE notes SET title = $1, course = $2, content = $3
		WHERE id = $4 AND user_id = $5
		RETURNING `+noteColumns+`
	`, title, course, content, noteID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, noteID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM notes WHERE id = $1 AND user_id = $2
	`, noteID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
