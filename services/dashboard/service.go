package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"go.uber.org/zap"
)

// Stats summarizes a user's study activity
type Stats struct {
	Notes           int `json:"notes"`
	Questions       int `json:"questions"`
	SolvedQuestions int `json:"solved_questions"`
	Repos           int `json:"repos"`
	ChatSessions    int `json:"chat_sessions"`
}

// Service aggregates per-user counts for the dashboard
type Service struct {
	notes     repositories.NoteRepository
	questions repositories.QuestionRepository
	repos     repositories.RepoRepository
	chats     repositories.ChatRepository
	logger    *zap.Logger
}

// NewService creates a new dashboard service
func NewService(
	notes repositories.NoteRepository,
	questions repositories.QuestionRepository,
	repos repositories.RepoRepository,
	chats repositories.ChatRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		notes:     notes,
		questions: questions,
		repos:     repos,
		chats:     chats,
		logger:    logger,
	}
}

// GetStats returns the user's activity counts
func (s *Service) GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	notes, err := s.notes.CountByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to count notes", err)
	}

	questions, err := s.questions.CountByUserID(ctx, userID, false)
	if err != nil {
		return nil, services.WrapInternal("failed to count questions", err)
	}

	solved, err := s.questions.CountByUserID(ctx, userID, true)
	if err != nil {
		return nil, services.WrapInternal("failed to count solved questions", err)
	}

	repos, err := s.repos.CountByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to count repos", err)
	}

	sessions, err := s.chats.CountSessionsByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to count sessions", err)
	}

	return &Stats{
		Notes:           notes,
		Questions:       questions,
		SolvedQuestions: solved,
		Repos:           repos,
		ChatSessions:    sessions,
	}, nil
}
