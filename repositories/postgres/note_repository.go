package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"go.uber.org/zap"
)

// NoteRepository implements the repositories.NoteRepository interface
type NoteRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB, logger *zap.Logger) repositories.NoteRepository {
	return &NoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, subject, file_type, file_name, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	embedding, err := embeddingToJSON(note.Embedding)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Subject,
		note.FileType,
		note.FileName,
		embedding,
		note.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	r.logger.Debug("note created", zap.String("id", note.ID.String()), zap.String("title", note.Title))
	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, subject, file_type, file_name, embedding, created_at
		FROM notes
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	row := executor.QueryRowContext(ctx, query, id)

	note, err := scanNote(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("note not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// GetByUserID retrieves all notes owned by a user, newest first
func (r *NoteRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, subject, file_type, file_name, embedding, created_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// UpdateEmbedding stores the computed embedding for a note
func (r *NoteRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error {
	query := `UPDATE notes SET embedding = $2 WHERE id = $1`

	value, err := embeddingToJSON(embedding)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update note embedding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("note not found: %s", id)
	}

	r.logger.Debug("note embedding updated", zap.String("id", id.String()), zap.Int("terms", len(embedding)))
	return nil
}

// Delete deletes a note
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("note not found: %s", id)
	}

	r.logger.Debug("note deleted", zap.String("id", id.String()))
	return nil
}

// CountByUserID counts the notes owned by a user
func (r *NoteRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notes WHERE user_id = $1`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}

	return count, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *NoteRepository) WithTx(tx repositories.Transaction) repositories.NoteRepository {
	return &NoteRepository{
		db:     r.db,
		logger: r.logger,
	}
}

// scanNote scans a note row, decoding the embedding column
func scanNote(row interface{ Scan(...interface{}) error }) (*models.Note, error) {
	note := &models.Note{}
	var rawEmbedding []byte

	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.Subject,
		&note.FileType,
		&note.FileName,
		&rawEmbedding,
		&note.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	embedding, err := scanEmbedding(rawEmbedding)
	if err != nil {
		return nil, err
	}
	note.Embedding = embedding

	return note, nil
}
