package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-backend/config"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"github.com/studyhub/studyhub-backend/services/providers"
	"github.com/studyhub/studyhub-backend/services/retrieval"
	"go.uber.org/zap"
)

// MockChatRepository is a mock implementation of ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockChatRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	args := m.Called(ctx, id)
	if session := args.Get(0); session != nil {
		return session.(*models.ChatSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) GetSessionsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	args := m.Called(ctx, userID)
	if sessions := args.Get(0); sessions != nil {
		return sessions.([]*models.ChatSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) GetMessagesBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, sessionID)
	if messages := args.Get(0); messages != nil {
		return messages.([]*models.ChatMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) TouchSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChatRepository) UpdateSessionTitle(ctx context.Context, id uuid.UUID, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockChatRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockChatRepository) CountSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockChatRepository) WithTx(tx repositories.Transaction) repositories.ChatRepository {
	return m
}

// MockNoteRepository is a mock implementation of NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	args := m.Called(ctx, id)
	if note := args.Get(0); note != nil {
		return note.(*models.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNoteRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	args := m.Called(ctx, userID)
	if notes := args.Get(0); notes != nil {
		return notes.([]*models.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNoteRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNoteRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteRepository) WithTx(tx repositories.Transaction) repositories.NoteRepository {
	return m
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.PlacementQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlacementQuestion, error) {
	args := m.Called(ctx, id)
	if question := args.Get(0); question != nil {
		return question.(*models.PlacementQuestion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, company, topic string) ([]*models.PlacementQuestion, error) {
	args := m.Called(ctx, userID, company, topic)
	if questions := args.Get(0); questions != nil {
		return questions.([]*models.PlacementQuestion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

func (m *MockQuestionRepository) SetSolved(ctx context.Context, id uuid.UUID, solved bool) error {
	args := m.Called(ctx, id, solved)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) CountByUserID(ctx context.Context, userID uuid.UUID, solvedOnly bool) (int, error) {
	args := m.Called(ctx, userID, solvedOnly)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) WithTx(tx repositories.Transaction) repositories.QuestionRepository {
	return m
}

// MockRepoRepository is a mock implementation of RepoRepository
type MockRepoRepository struct {
	mock.Mock
}

func (m *MockRepoRepository) Upsert(ctx context.Context, repo *models.GithubRepo) error {
	args := m.Called(ctx, repo)
	return args.Error(0)
}

func (m *MockRepoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GithubRepo, error) {
	args := m.Called(ctx, id)
	if repo := args.Get(0); repo != nil {
		return repo.(*models.GithubRepo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GithubRepo, error) {
	args := m.Called(ctx, userID)
	if repos := args.Get(0); repos != nil {
		return repos.([]*models.GithubRepo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepoRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis *models.RepoAnalysis) error {
	args := m.Called(ctx, id, analysis)
	return args.Error(0)
}

func (m *MockRepoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepoRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepoRepository) WithTx(tx repositories.Transaction) repositories.RepoRepository {
	return m
}

// MockTransactionManager runs the callback directly without a database
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, nil)
}

// MockCompleter is a mock implementation of providers.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req providers.CompletionRequest) (providers.CompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(providers.CompletionResponse), args.Error(1)
}

func (m *MockCompleter) ModelName() string {
	return "test-model"
}

type chatFixture struct {
	chats     *MockChatRepository
	notes     *MockNoteRepository
	questions *MockQuestionRepository
	repos     *MockRepoRepository
	txManager *MockTransactionManager
	completer *MockCompleter
	svc       *Service
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	f := &chatFixture{
		chats:     new(MockChatRepository),
		notes:     new(MockNoteRepository),
		questions: new(MockQuestionRepository),
		repos:     new(MockRepoRepository),
		txManager: new(MockTransactionManager),
		completer: new(MockCompleter),
	}

	filter := retrieval.NewService(config.RetrievalConfig{}, zap.NewNop())
	f.svc = NewService(f.chats, f.notes, f.questions, f.repos, f.txManager, filter, f.completer, zap.NewNop())

	return f
}

func TestSendMessage_AnswerWithSources(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	userID := uuid.New()
	session := models.NewChatSession(userID, "Algorithms")

	note := models.NewNote(userID, "Binary search", "binary search halves the range each step", "algorithms", "txt", "bs.txt")

	f.chats.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	f.notes.On("GetByUserID", ctx, userID).Return([]*models.Note{note}, nil)
	f.questions.On("GetByUserID", ctx, userID, "", "").Return([]*models.PlacementQuestion{}, nil)
	f.repos.On("GetByUserID", ctx, userID).Return([]*models.GithubRepo{}, nil)

	f.completer.On("Complete", mock.Anything, mock.AnythingOfType("providers.CompletionRequest")).
		Return(providers.CompletionResponse{Content: "Binary search runs in O(log n)."}, nil)

	f.txManager.On("InTransaction", ctx, mock.Anything).Return(nil)
	f.chats.On("AppendMessage", mock.Anything, mock.AnythingOfType("*models.ChatMessage")).Return(nil).Twice()
	f.chats.On("TouchSession", mock.Anything, session.ID).Return(nil)

	msg, err := f.svc.SendMessage(ctx, userID, session.ID, "binary search")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, msg.Role)
	assert.Equal(t, "Binary search runs in O(log n).", msg.Content)
	require.NotEmpty(t, msg.Sources)
	assert.Equal(t, models.SourceTypeNote, msg.Sources[0].Type)
	assert.Equal(t, "Binary search", msg.Sources[0].Title)

	f.chats.AssertExpectations(t)
	f.completer.AssertExpectations(t)
}

func TestSendMessage_ProviderFailureUsesFallback(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	userID := uuid.New()
	session := models.NewChatSession(userID, "Algorithms")

	f.chats.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	f.notes.On("GetByUserID", ctx, userID).Return([]*models.Note{}, nil)
	f.questions.On("GetByUserID", ctx, userID, "", "").Return([]*models.PlacementQuestion{}, nil)
	f.repos.On("GetByUserID", ctx, userID).Return([]*models.GithubRepo{}, nil)

	f.completer.On("Complete", mock.Anything, mock.Anything).
		Return(providers.CompletionResponse{}, errors.New("provider down"))

	f.txManager.On("InTransaction", ctx, mock.Anything).Return(nil)
	f.chats.On("AppendMessage", mock.Anything, mock.AnythingOfType("*models.ChatMessage")).Return(nil).Twice()
	f.chats.On("TouchSession", mock.Anything, session.ID).Return(nil)

	msg, err := f.svc.SendMessage(ctx, userID, session.ID, "explain binary search")
	require.NoError(t, err)

	assert.Equal(t, "I'm sorry, I couldn't generate an answer right now. Please try again.", msg.Content)

	f.chats.AssertExpectations(t)
}

func TestSendMessage_SingleRepoGithubSource(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	userID := uuid.New()
	session := models.NewChatSession(userID, "Projects")

	repo := models.NewGithubRepo(userID, "ada/raytracer", "a toy raytracer in rust", "Rust", 42)

	f.chats.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	f.notes.On("GetByUserID", ctx, userID).Return([]*models.Note{}, nil)
	f.questions.On("GetByUserID", ctx, userID, "", "").Return([]*models.PlacementQuestion{}, nil)
	f.repos.On("GetByUserID", ctx, userID).Return([]*models.GithubRepo{repo}, nil)

	f.completer.On("Complete", mock.Anything, mock.Anything).
		Return(providers.CompletionResponse{Content: "It is a raytracer."}, nil)

	f.txManager.On("InTransaction", ctx, mock.Anything).Return(nil)
	f.chats.On("AppendMessage", mock.Anything, mock.AnythingOfType("*models.ChatMessage")).Return(nil).Twice()
	f.chats.On("TouchSession", mock.Anything, session.ID).Return(nil)

	msg, err := f.svc.SendMessage(ctx, userID, session.ID, "tell me about my raytracer")
	require.NoError(t, err)

	require.Len(t, msg.Sources, 1)
	assert.Equal(t, models.SourceTypeGithub, msg.Sources[0].Type)
	assert.Equal(t, "ada/raytracer", msg.Sources[0].Title)
	assert.Contains(t, msg.Sources[0].Content, "Repository: ada/raytracer")
}

func TestSendMessage_EmptyQuery(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	msg, err := f.svc.SendMessage(ctx, uuid.New(), uuid.New(), "   ")
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.True(t, services.IsValidationError(err))
}

func TestSendMessage_SessionOwnership(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	owner := uuid.New()
	intruder := uuid.New()
	session := models.NewChatSession(owner, "Private")

	f.chats.On("GetSessionByID", ctx, session.ID).Return(session, nil)

	msg, err := f.svc.SendMessage(ctx, intruder, session.ID, "hello")
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.True(t, services.IsForbiddenError(err))
}

func TestSendMessage_RecordFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	userID := uuid.New()
	session := models.NewChatSession(userID, "Algorithms")

	f.chats.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	f.notes.On("GetByUserID", ctx, userID).Return([]*models.Note{}, nil)
	f.questions.On("GetByUserID", ctx, userID, "", "").Return([]*models.PlacementQuestion{}, nil)
	f.repos.On("GetByUserID", ctx, userID).Return([]*models.GithubRepo{}, nil)

	f.completer.On("Complete", mock.Anything, mock.Anything).
		Return(providers.CompletionResponse{Content: "answer"}, nil)

	f.txManager.On("InTransaction", ctx, mock.Anything).Return(errors.New("deadlock"))

	msg, err := f.svc.SendMessage(ctx, userID, session.ID, "explain binary search")
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.True(t, services.IsInternalError(err))
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	userID := uuid.New()
	f.chats.On("CreateSession", ctx, mock.AnythingOfType("*models.ChatSession")).Return(nil)

	session, err := f.svc.CreateSession(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, "New chat", session.Title)
	assert.Equal(t, userID, session.UserID)
}

func TestGetSession_LoadsMessages(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	userID := uuid.New()
	session := models.NewChatSession(userID, "Algorithms")
	messages := []*models.ChatMessage{
		models.NewChatMessage(session.ID, models.RoleUser, "hi", nil),
		models.NewChatMessage(session.ID, models.RoleAssistant, "hello", nil),
	}

	f.chats.On("GetSessionByID", ctx, session.ID).Return(session, nil)
	f.chats.On("GetMessagesBySessionID", ctx, session.ID).Return(messages, nil)

	got, err := f.svc.GetSession(ctx, userID, session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
}

func TestDeleteSession_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	sessionID := uuid.New()
	f.chats.On("GetSessionByID", ctx, sessionID).Return(nil, services.ErrSessionNotFound)

	err := f.svc.DeleteSession(ctx, uuid.New(), sessionID)
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))
}

func TestBuildAnswerPrompt_SourceBlocks(t *testing.T) {
	sources := []models.Source{
		{Type: models.SourceTypeNote, Title: "Binary Search", Content: "Binary Search Tree traversal notes"},
		{Type: models.SourceTypeQuestion, Title: "Acme", Content: "Reverse a linked list"},
	}

	prompt := buildAnswerPrompt("how do I traverse a BST?", sources)

	assert.Contains(t, prompt, "[note] Binary Search:\nBinary Search Tree traversal notes")
	assert.Contains(t, prompt, "[question] Acme:\nReverse a linked list")
	assert.Contains(t, prompt, "Question: how do I traverse a BST?")
}

func TestBuildAnswerPrompt_NoSources(t *testing.T) {
	assert.Equal(t, "what is a heap?", buildAnswerPrompt("what is a heap?", nil))
}
