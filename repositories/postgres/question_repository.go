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

// QuestionRepository implements the repositories.QuestionRepository interface
type QuestionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewQuestionRepository creates a new placement question repository
func NewQuestionRepository(db *DB, logger *zap.Logger) repositories.QuestionRepository {
	return &QuestionRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new placement question
func (r *QuestionRepository) Create(ctx context.Context, question *models.PlacementQuestion) error {
	query := `
		INSERT INTO placement_questions (id, user_id, company, question, difficulty, topic, solution, year, embedding, solved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	embedding, err := embeddingToJSON(question.Embedding)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		question.ID,
		question.UserID,
		question.Company,
		question.Question,
		question.Difficulty,
		question.Topic,
		question.Solution,
		question.Year,
		embedding,
		question.Solved,
		question.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	r.logger.Debug("question created", zap.String("id", question.ID.String()), zap.String("company", question.Company))
	return nil
}

// GetByID retrieves a placement question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlacementQuestion, error) {
	query := `
		SELECT id, user_id, company, question, difficulty, topic, solution, year, embedding, solved, created_at
		FROM placement_questions
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	row := executor.QueryRowContext(ctx, query, id)

	question, err := scanQuestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("question not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return question, nil
}

// GetByUserID retrieves a user's questions, optionally filtered by company
// and topic. Empty filter values match everything.
func (r *QuestionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, company, topic string) ([]*models.PlacementQuestion, error) {
	query := `
		SELECT id, user_id, company, question, difficulty, topic, solution, year, embedding, solved, created_at
		FROM placement_questions
		WHERE user_id = $1
		  AND ($2 = '' OR company ILIKE $2)
		  AND ($3 = '' OR topic ILIKE $3)
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID, company, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.PlacementQuestion
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

// UpdateEmbedding stores the computed embedding for a question
func (r *QuestionRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding models.Embedding) error {
	query := `UPDATE placement_questions SET embedding = $2 WHERE id = $1`

	value, err := embeddingToJSON(embedding)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update question embedding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("question not found: %s", id)
	}

	r.logger.Debug("question embedding updated", zap.String("id", id.String()))
	return nil
}

// SetSolved toggles the solved flag on a question
func (r *QuestionRepository) SetSolved(ctx context.Context, id uuid.UUID, solved bool) error {
	query := `UPDATE placement_questions SET solved = $2 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, solved)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("question not found: %s", id)
	}

	r.logger.Debug("question solved flag updated", zap.String("id", id.String()), zap.Bool("solved", solved))
	return nil
}

// Delete deletes a placement question
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM placement_questions WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("question not found: %s", id)
	}

	r.logger.Debug("question deleted", zap.String("id", id.String()))
	return nil
}

// CountByUserID counts a user's questions, optionally only the solved ones
func (r *QuestionRepository) CountByUserID(ctx context.Context, userID uuid.UUID, solvedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM placement_questions WHERE user_id = $1 AND ($2 = false OR solved = true)`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, userID, solvedOnly).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	return count, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *QuestionRepository) WithTx(tx repositories.Transaction) repositories.QuestionRepository {
	return &QuestionRepository{
		db:     r.db,
		logger: r.logger,
	}
}

// scanQuestion scans a question row, decoding the embedding column
func scanQuestion(row interface{ Scan(...interface{}) error }) (*models.PlacementQuestion, error) {
	question := &models.PlacementQuestion{}
	var rawEmbedding []byte

	err := row.Scan(
		&question.ID,
		&question.UserID,
		&question.Company,
		&question.Question,
		&question.Difficulty,
		&question.Topic,
		&question.Solution,
		&question.Year,
		&rawEmbedding,
		&question.Solved,
		&question.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	embedding, err := scanEmbedding(rawEmbedding)
	if err != nil {
		return nil, err
	}
	question.Embedding = embedding

	return question, nil
}
