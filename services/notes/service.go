package notes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"github.com/studyhub/studyhub-backend/services/retrieval"
	"go.uber.org/zap"
)

// indexTimeout bounds the background embedding pass for a single note
const indexTimeout = 10 * time.Second

// CreateInput carries the fields needed to create a note
type CreateInput struct {
	Title    string
	Content  string
	Subject  string
	FileType string
	FileName string
}

// Service handles note creation, lookup, and background indexing
type Service struct {
	notes  repositories.NoteRepository
	logger *zap.Logger

	// indexing tracks in-flight background index passes so shutdown can
	// wait for them
	indexing sync.WaitGroup
}

// NewService creates a new notes service
func NewService(notes repositories.NoteRepository, logger *zap.Logger) *Service {
	return &Service{
		notes:  notes,
		logger: logger,
	}
}

// Create stores a new note and kicks off embedding computation in the
// background. The note is immediately usable; retrieval picks up the
// embedding once the index pass completes.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Note, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, services.ErrEmptyContent
	}
	if strings.TrimSpace(input.Title) == "" {
		input.Title = deriveTitle(input.Content, input.FileName)
	}

	note := models.NewNote(userID, input.Title, input.Content, input.Subject, input.FileType, input.FileName)

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, services.WrapInternal("failed to create note", err)
	}

	s.indexing.Add(1)
	go func() {
		defer s.indexing.Done()
		s.index(note)
	}()

	return note, nil
}

// WaitForIndexing blocks until all in-flight index passes finish
func (s *Service) WaitForIndexing() {
	s.indexing.Wait()
}

// index computes and stores the note's embedding. Runs detached from the
// request; failures are logged and the note stays retrievable by
// substring match.
func (s *Service) index(note *models.Note) {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	embedding := retrieval.Embed(note.Title + " " + note.Content)
	if embedding.IsEmpty() {
		return
	}

	if err := s.notes.UpdateEmbedding(ctx, note.ID, embedding); err != nil {
		s.logger.Error("failed to index note",
			zap.String("note_id", note.ID.String()),
			zap.Error(err))
		return
	}

	s.logger.Debug("note indexed",
		zap.String("note_id", note.ID.String()),
		zap.Int("terms", len(embedding)))
}

// Get returns a note after verifying ownership
func (s *Service) Get(ctx context.Context, userID, noteID uuid.UUID) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, services.ErrNoteNotFound
	}
	if note.UserID != userID {
		return nil, services.ErrNotOwner
	}
	return note, nil
}

// List returns all of the user's notes, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	notes, err := s.notes.GetByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to list notes", err)
	}
	return notes, nil
}

// Delete removes a note after verifying ownership
func (s *Service) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return services.ErrNoteNotFound
	}
	if note.UserID != userID {
		return services.ErrNotOwner
	}

	if err := s.notes.Delete(ctx, noteID); err != nil {
		return services.WrapInternal("failed to delete note", err)
	}

	return nil
}

// deriveTitle falls back to the file name, then to the first words of the
// content, when no title was given.
func deriveTitle(content, fileName string) string {
	if fileName != "" {
		return strings.TrimSuffix(fileName, extension(fileName))
	}

	words := strings.Fields(content)
	if len(words) > 8 {
		words = words[:8]
	}
	return strings.Join(words, " ")
}

func extension(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		return fileName[idx:]
	}
	return ""
}
