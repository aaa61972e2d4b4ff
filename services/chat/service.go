package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/internal/redact"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"github.com/studyhub/studyhub-backend/services/providers"
	"github.com/studyhub/studyhub-backend/services/retrieval"
	"go.uber.org/zap"
)

// fallbackAnswer is returned when the LLM cannot produce an answer. The
// user's message and the sources are still recorded.
const fallbackAnswer = "I'm sorry, I couldn't generate an answer right now. Please try again."

const answerSystemPrompt = "You are a study assistant. Answer the student's question using the " +
	"provided study materials when they are relevant. Be concise and concrete. " +
	"If the materials don't cover the question, answer from general knowledge " +
	"and say so."

// Service runs the retrieval-augmented chat pipeline
type Service struct {
	chats     repositories.ChatRepository
	notes     repositories.NoteRepository
	questions repositories.QuestionRepository
	repos     repositories.RepoRepository
	txManager repositories.TransactionManager
	filter    *retrieval.Service
	completer providers.Completer
	logger    *zap.Logger
}

// NewService creates a new chat service
func NewService(
	chats repositories.ChatRepository,
	notes repositories.NoteRepository,
	questions repositories.QuestionRepository,
	repos repositories.RepoRepository,
	txManager repositories.TransactionManager,
	filter *retrieval.Service,
	completer providers.Completer,
	logger *zap.Logger,
) *Service {
	return &Service{
		chats:     chats,
		notes:     notes,
		questions: questions,
		repos:     repos,
		txManager: txManager,
		filter:    filter,
		completer: completer,
		logger:    logger,
	}
}

// CreateSession starts a new chat session. An empty title is derived
// later from the first query.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, title string) (*models.ChatSession, error) {
	session := models.NewChatSession(userID, title)

	if err := s.chats.CreateSession(ctx, session); err != nil {
		return nil, services.WrapInternal("failed to create session", err)
	}

	return session, nil
}

// ListSessions returns the user's sessions, most recently active first
func (s *Service) ListSessions(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	sessions, err := s.chats.GetSessionsByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to list sessions", err)
	}
	return sessions, nil
}

// GetSession returns a session with its messages after verifying ownership
func (s *Service) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chats.GetMessagesBySessionID(ctx, sessionID)
	if err != nil {
		return nil, services.WrapInternal("failed to load messages", err)
	}
	session.Messages = messages

	return session, nil
}

// DeleteSession removes a session and its messages after verifying ownership
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}

	if err := s.chats.DeleteSession(ctx, sessionID); err != nil {
		return services.WrapInternal("failed to delete session", err)
	}

	return nil
}

// SendMessage runs the full pipeline for one user query: retrieve
// matching materials, rank them, generate an answer, and record both
// turns atomically. LLM failures degrade to a fallback answer; the
// exchange is still recorded with its sources.
func (s *Service) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, query string) (*models.ChatMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.ErrEmptyQuery
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting chat pipeline",
		zap.String("session_id", sessionID.String()),
		zap.Int("query_len", len(query)))

	// Step 1: embed the query
	s.logger.Debug("step 1: embedding query", zap.String("session_id", sessionID.String()))
	queryEmb := retrieval.Embed(query)

	// Step 2: load the user's materials
	s.logger.Debug("step 2: loading materials", zap.String("session_id", sessionID.String()))
	notes, err := s.notes.GetByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to load notes", err)
	}
	questions, err := s.questions.GetByUserID(ctx, userID, "", "")
	if err != nil {
		return nil, services.WrapInternal("failed to load questions", err)
	}
	repos, err := s.repos.GetByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to load repos", err)
	}

	// Step 3: filter per collection
	s.logger.Debug("step 3: filtering candidates", zap.String("session_id", sessionID.String()))
	matchedNotes := s.filter.FilterNotes(notes, query, queryEmb)
	matchedQuestions := s.filter.FilterQuestions(questions, query, queryEmb)
	matchedRepos := s.filter.FilterRepos(repos, query, queryEmb)

	// Step 4: rank across collections
	s.logger.Debug("step 4: ranking sources", zap.String("session_id", sessionID.String()))
	candidates := retrieval.BuildCandidates(matchedNotes, matchedQuestions, matchedRepos)
	sources := retrieval.Rank(candidates, query)

	// Step 5: generate the answer
	s.logger.Debug("step 5: generating answer",
		zap.String("session_id", sessionID.String()),
		zap.Int("sources", len(sources)))
	answer := s.generateAnswer(ctx, query, sources)

	// Step 6: record both turns atomically
	s.logger.Debug("step 6: recording messages", zap.String("session_id", sessionID.String()))
	userMsg := models.NewChatMessage(sessionID, models.RoleUser, query, nil)
	assistantMsg := models.NewChatMessage(sessionID, models.RoleAssistant, answer, sources)

	err = s.txManager.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.chats.AppendMessage(ctx, userMsg); err != nil {
			return err
		}
		if err := s.chats.AppendMessage(ctx, assistantMsg); err != nil {
			return err
		}
		return s.chats.TouchSession(ctx, sessionID)
	})
	if err != nil {
		return nil, services.WrapInternal("failed to record messages", err)
	}

	// First exchange names the session
	if session.Title == "New chat" {
		s.renameSession(ctx, session, query)
	}

	s.logger.Info("chat pipeline completed",
		zap.String("session_id", sessionID.String()),
		zap.Int("sources", len(sources)))

	return assistantMsg, nil
}

// generateAnswer asks the LLM for an answer grounded in the ranked
// sources. Any provider failure degrades to the fallback answer.
func (s *Service) generateAnswer(ctx context.Context, query string, sources []models.Source) string {
	// PII is scrubbed from the outbound prompt only; the stored message
	// keeps the user's original text.
	scrubbed, found := redact.Scrub(query)
	if len(found) > 0 {
		s.logger.Debug("redacted PII from outbound prompt", zap.Int("kinds", len(found)))
	}

	resp, err := s.completer.Complete(ctx, providers.CompletionRequest{
		System:      answerSystemPrompt,
		Prompt:      buildAnswerPrompt(scrubbed, sources),
		Temperature: 0.4,
		MaxTokens:   1024,
	})
	if err != nil {
		s.logger.Error("answer generation failed, using fallback", zap.Error(err))
		return fallbackAnswer
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		s.logger.Warn("empty answer from provider, using fallback")
		return fallbackAnswer
	}

	return answer
}

func buildAnswerPrompt(query string, sources []models.Source) string {
	if len(sources) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString("Study materials:\n\n")
	for _, source := range sources {
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", source.Type, source.Title, source.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(query)

	return b.String()
}

func (s *Service) renameSession(ctx context.Context, session *models.ChatSession, query string) {
	// Title updates are best effort
	session.Title = models.TitleFromQuery(query)
	if err := s.chats.UpdateSessionTitle(ctx, session.ID, session.Title); err != nil {
		s.logger.Warn("failed to rename session",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))
	}
}

func (s *Service) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	session, err := s.chats.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, services.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, services.ErrNotOwner
	}
	return session, nil
}
