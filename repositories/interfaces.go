package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateGithubToken stores (or clears) the user's GitHub token
	UpdateGithubToken(ctx context.Context, id uuid.UUID, token *string) error

	// Delete deletes a user; content cascades at the schema level
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// NoteRepository handles note data operations
type NoteRepository interface {
	// Create creates a new note
	Create(ctx context.Context, note *models.Note) error

	// GetByID retrieves a note by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)

	// GetByUserID retrieves all notes owned by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Note, error)

	// UpdateEmbedding stores the computed embedding for a note
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error

	// Delete deletes a note
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByUserID counts a user's notes
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) NoteRepository
}

// QuestionRepository handles placement question data operations
type QuestionRepository interface {
	// Create creates a new placement question
	Create(ctx context.Context, question *models.PlacementQuestion) error

	// GetByID retrieves a question by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlacementQuestion, error)

	// GetByUserID retrieves all questions owned by a user, optionally
	// filtered by company and/or topic (empty strings match everything)
	GetByUserID(ctx context.Context, userID uuid.UUID, company, topic string) ([]*models.PlacementQuestion, error)

	// UpdateEmbedding stores the computed embedding for a question
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error

	// SetSolved toggles the solved flag
	SetSolved(ctx context.Context, id uuid.UUID, solved bool) error

	// Delete deletes a question
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByUserID counts a user's questions; solvedOnly restricts to solved ones
	CountByUserID(ctx context.Context, userID uuid.UUID, solvedOnly bool) (int, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) QuestionRepository
}

// RepoRepository handles synced GitHub repository data operations
type RepoRepository interface {
	// Upsert inserts a repository or refreshes its metadata when the user
	// already has one with the same full name
	Upsert(ctx context.Context, repo *models.GithubRepo) error

	// GetByID retrieves a repository by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.GithubRepo, error)

	// GetByUserID retrieves all repositories owned by a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GithubRepo, error)

	// UpdateAnalysis stores an analysis result and the analyzed_at stamp
	UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis *models.RepoAnalysis) error

	// Delete deletes a repository
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByUserID counts a user's repositories
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) RepoRepository
}

// ChatRepository handles chat session and message data operations
type ChatRepository interface {
	// CreateSession creates a new chat session
	CreateSession(ctx context.Context, session *models.ChatSession) error

	// GetSessionByID retrieves a session by ID (without messages)
	GetSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)

	// GetSessionsByUserID retrieves all sessions owned by a user, most
	// recently updated first
	GetSessionsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error)

	// GetMessagesBySessionID retrieves a session's messages in order
	GetMessagesBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error)

	// AppendMessage appends a message to a session
	AppendMessage(ctx context.Context, message *models.ChatMessage) error

	// TouchSession bumps the session's updated_at stamp
	TouchSession(ctx context.Context, id uuid.UUID) error

	// UpdateSessionTitle renames a session
	UpdateSessionTitle(ctx context.Context, id uuid.UUID, title string) error

	// DeleteSession deletes a session and its messages
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// CountSessionsByUserID counts a user's sessions
	CountSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) ChatRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users     UserRepository
	Notes     NoteRepository
	Questions QuestionRepository
	Repos     RepoRepository
	Chats     ChatRepository
}
