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

// ChatRepository implements the repositories.ChatRepository interface
type ChatRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB, logger *zap.Logger) repositories.ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger,
	}
}

// CreateSession creates a new chat session
func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Title,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug("session created", zap.String("id", session.ID.String()))
	return nil
}

// GetSessionByID retrieves a chat session by ID
func (r *ChatRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	session := &models.ChatSession{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.Title,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// GetSessionsByUserID retrieves a user's sessions, most recently active first
func (r *ChatRepository) GetSessionsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		session := &models.ChatSession{}
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Title,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// GetMessagesBySessionID retrieves a session's messages in conversation order
func (r *ChatRepository) GetMessagesBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, sources, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		var rawSources []byte

		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Role,
			&message.Content,
			&rawSources,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		sources, err := scanSources(rawSources)
		if err != nil {
			return nil, err
		}
		message.Sources = sources

		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// AppendMessage appends a message to a session
func (r *ChatRepository) AppendMessage(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, session_id, role, content, sources, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	sources, err := sourcesToJSON(message.Sources)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		sources,
		message.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	r.logger.Debug("message appended",
		zap.String("session_id", message.SessionID.String()),
		zap.String("role", string(message.Role)))
	return nil
}

// TouchSession bumps a session's updated_at so it sorts as most recent
func (r *ChatRepository) TouchSession(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// UpdateSessionTitle renames a session
func (r *ChatRepository) UpdateSessionTitle(ctx context.Context, id uuid.UUID, title string) error {
	query := `UPDATE chat_sessions SET title = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, title)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// DeleteSession deletes a session; its messages cascade at the schema level
func (r *ChatRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM chat_sessions WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	r.logger.Debug("session deleted", zap.String("id", id.String()))
	return nil
}

// CountSessionsByUserID counts the sessions owned by a user
func (r *ChatRepository) CountSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM chat_sessions WHERE user_id = $1`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	return count, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *ChatRepository) WithTx(tx repositories.Transaction) repositories.ChatRepository {
	return &ChatRepository{
		db:     r.db,
		logger: r.logger,
	}
}
