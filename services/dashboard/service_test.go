package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"go.uber.org/zap"
)

// Count-only mocks; the dashboard never touches the full repositories.

type MockNoteRepository struct{ mock.Mock }

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) error { return nil }
func (m *MockNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	return nil, nil
}
func (m *MockNoteRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	return nil, nil
}
func (m *MockNoteRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error {
	return nil
}
func (m *MockNoteRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *MockNoteRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockNoteRepository) WithTx(tx repositories.Transaction) repositories.NoteRepository {
	return m
}

type MockQuestionRepository struct{ mock.Mock }

func (m *MockQuestionRepository) Create(ctx context.Context, q *models.PlacementQuestion) error {
	return nil
}
func (m *MockQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlacementQuestion, error) {
	return nil, nil
}
func (m *MockQuestionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, company, topic string) ([]*models.PlacementQuestion, error) {
	return nil, nil
}
func (m *MockQuestionRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error {
	return nil
}
func (m *MockQuestionRepository) SetSolved(ctx context.Context, id uuid.UUID, solved bool) error {
	return nil
}
func (m *MockQuestionRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *MockQuestionRepository) CountByUserID(ctx context.Context, userID uuid.UUID, solvedOnly bool) (int, error) {
	args := m.Called(ctx, userID, solvedOnly)
	return args.Int(0), args.Error(1)
}
func (m *MockQuestionRepository) WithTx(tx repositories.Transaction) repositories.QuestionRepository {
	return m
}

type MockRepoRepository struct{ mock.Mock }

func (m *MockRepoRepository) Upsert(ctx context.Context, repo *models.GithubRepo) error { return nil }
func (m *MockRepoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GithubRepo, error) {
	return nil, nil
}
func (m *MockRepoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GithubRepo, error) {
	return nil, nil
}
func (m *MockRepoRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis *models.RepoAnalysis) error {
	return nil
}
func (m *MockRepoRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *MockRepoRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockRepoRepository) WithTx(tx repositories.Transaction) repositories.RepoRepository {
	return m
}

type MockChatRepository struct{ mock.Mock }

func (m *MockChatRepository) CreateSession(ctx context.Context, s *models.ChatSession) error {
	return nil
}
func (m *MockChatRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	return nil, nil
}
func (m *MockChatRepository) GetSessionsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	return nil, nil
}
func (m *MockChatRepository) GetMessagesBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	return nil, nil
}
func (m *MockChatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	return nil
}
func (m *MockChatRepository) TouchSession(ctx context.Context, id uuid.UUID) error { return nil }
func (m *MockChatRepository) UpdateSessionTitle(ctx context.Context, id uuid.UUID, title string) error {
	return nil
}
func (m *MockChatRepository) DeleteSession(ctx context.Context, id uuid.UUID) error { return nil }
func (m *MockChatRepository) CountSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) WithTx(tx repositories.Transaction) repositories.ChatRepository {
	return m
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("aggregates all counts", func(t *testing.T) {
		notes := new(MockNoteRepository)
		questions := new(MockQuestionRepository)
		repos := new(MockRepoRepository)
		chats := new(MockChatRepository)

		notes.On("CountByUserID", ctx, userID).Return(4, nil)
		questions.On("CountByUserID", ctx, userID, false).Return(10, nil)
		questions.On("CountByUserID", ctx, userID, true).Return(3, nil)
		repos.On("CountByUserID", ctx, userID).Return(7, nil)
		chats.On("CountSessionsByUserID", ctx, userID).Return(2, nil)

		svc := NewService(notes, questions, repos, chats, zap.NewNop())

		stats, err := svc.GetStats(ctx, userID)
		require.NoError(t, err)

		assert.Equal(t, 4, stats.Notes)
		assert.Equal(t, 10, stats.Questions)
		assert.Equal(t, 3, stats.SolvedQuestions)
		assert.Equal(t, 7, stats.Repos)
		assert.Equal(t, 2, stats.ChatSessions)
	})

	t.Run("count failure surfaces as internal error", func(t *testing.T) {
		notes := new(MockNoteRepository)
		notes.On("CountByUserID", ctx, userID).Return(0, errors.New("db down"))

		svc := NewService(notes, new(MockQuestionRepository), new(MockRepoRepository), new(MockChatRepository), zap.NewNop())

		stats, err := svc.GetStats(ctx, userID)
		require.Error(t, err)
		assert.Nil(t, stats)
		assert.True(t, services.IsInternalError(err))
	})
}
