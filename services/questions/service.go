package questions

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

const indexTimeout = 10 * time.Second

// CreateInput carries the fields needed to save a placement question
type CreateInput struct {
	Company    string
	Question   string
	Difficulty models.QuestionDifficulty
	Topic      string
	Solution   string
	Year       int
}

// ListFilter narrows a question listing; empty fields match everything
type ListFilter struct {
	Company string
	Topic   string
}

// Service handles placement question tracking
type Service struct {
	questions repositories.QuestionRepository
	logger    *zap.Logger

	indexing sync.WaitGroup
}

// NewService creates a new questions service
func NewService(questions repositories.QuestionRepository, logger *zap.Logger) *Service {
	return &Service{
		questions: questions,
		logger:    logger,
	}
}

// Create saves a question and computes its embedding in the background
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.PlacementQuestion, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, services.ErrEmptyContent
	}
	if !validDifficulty(input.Difficulty) {
		return nil, services.ErrInvalidDifficulty
	}

	question := models.NewPlacementQuestion(userID, input.Company, input.Question, input.Difficulty, input.Topic, input.Year)
	if input.Solution != "" {
		question.SetSolution(input.Solution)
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, services.WrapInternal("failed to create question", err)
	}

	s.indexing.Add(1)
	go func() {
		defer s.indexing.Done()
		s.index(question)
	}()

	return question, nil
}

func (s *Service) index(question *models.PlacementQuestion) {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	embedding := retrieval.Embed(question.Question + " " + question.Topic)
	if embedding.IsEmpty() {
		return
	}

	if err := s.questions.UpdateEmbedding(ctx, question.ID, embedding); err != nil {
		s.logger.Error("failed to index question",
			zap.String("question_id", question.ID.String()),
			zap.Error(err))
	}
}

// WaitForIndexing blocks until all in-flight index passes finish
func (s *Service) WaitForIndexing() {
	s.indexing.Wait()
}

// Get returns a question after verifying ownership
func (s *Service) Get(ctx context.Context, userID, questionID uuid.UUID) (*models.PlacementQuestion, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, services.ErrQuestionNotFound
	}
	if question.UserID != userID {
		return nil, services.ErrNotOwner
	}
	return question, nil
}

// List returns the user's questions matching the filter, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*models.PlacementQuestion, error) {
	questions, err := s.questions.GetByUserID(ctx, userID, filter.Company, filter.Topic)
	if err != nil {
		return nil, services.WrapInternal("failed to list questions", err)
	}
	return questions, nil
}

// SetSolved toggles the solved flag after verifying ownership
func (s *Service) SetSolved(ctx context.Context, userID, questionID uuid.UUID, solved bool) (*models.PlacementQuestion, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, services.ErrQuestionNotFound
	}
	if question.UserID != userID {
		return nil, services.ErrNotOwner
	}

	if err := s.questions.SetSolved(ctx, questionID, solved); err != nil {
		return nil, services.WrapInternal("failed to update question", err)
	}

	question.MarkSolved(solved)
	return question, nil
}

// Delete removes a question after verifying ownership
func (s *Service) Delete(ctx context.Context, userID, questionID uuid.UUID) error {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return services.ErrQuestionNotFound
	}
	if question.UserID != userID {
		return services.ErrNotOwner
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		return services.WrapInternal("failed to delete question", err)
	}

	return nil
}

func validDifficulty(d models.QuestionDifficulty) bool {
	switch d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}
