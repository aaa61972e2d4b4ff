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

// RepoRepository implements the repositories.RepoRepository interface
type RepoRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRepoRepository creates a new GitHub repository store
func NewRepoRepository(db *DB, logger *zap.Logger) repositories.RepoRepository {
	return &RepoRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a repo or refreshes its metadata when the user already has
// it. Existing analyses survive a re-sync.
func (r *RepoRepository) Upsert(ctx context.Context, repo *models.GithubRepo) error {
	query := `
		INSERT INTO github_repos (id, user_id, full_name, description, language, stars, analysis, analyzed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, full_name) DO UPDATE
		SET description = EXCLUDED.description,
		    language = EXCLUDED.language,
		    stars = EXCLUDED.stars
	`

	analysis, err := analysisToJSON(repo.Analysis)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	_, err = executor.ExecContext(ctx, query,
		repo.ID,
		repo.UserID,
		repo.FullName,
		repo.Description,
		repo.Language,
		repo.Stars,
		analysis,
		repo.AnalyzedAt,
		repo.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert repo: %w", err)
	}

	r.logger.Debug("repo upserted", zap.String("full_name", repo.FullName))
	return nil
}

// GetByID retrieves a synced repo by ID
func (r *RepoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GithubRepo, error) {
	query := `
		SELECT id, user_id, full_name, description, language, stars, analysis, analyzed_at, created_at
		FROM github_repos
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	row := executor.QueryRowContext(ctx, query, id)

	repo, err := scanRepo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("repo not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get repo: %w", err)
	}

	return repo, nil
}

// GetByUserID retrieves all repos synced by a user, most starred first
func (r *RepoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.GithubRepo, error) {
	query := `
		SELECT id, user_id, full_name, description, language, stars, analysis, analyzed_at, created_at
		FROM github_repos
		WHERE user_id = $1
		ORDER BY stars DESC, full_name ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repos: %w", err)
	}
	defer rows.Close()

	var repos []*models.GithubRepo
	for rows.Next() {
		repo, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repo: %w", err)
		}
		repos = append(repos, repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repos: %w", err)
	}

	return repos, nil
}

// UpdateAnalysis stores the analysis result and stamps analyzed_at
func (r *RepoRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis *models.RepoAnalysis) error {
	query := `UPDATE github_repos SET analysis = $2, analyzed_at = CURRENT_TIMESTAMP WHERE id = $1`

	value, err := analysisToJSON(analysis)
	if err != nil {
		return err
	}

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update repo analysis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("repo not found: %s", id)
	}

	r.logger.Debug("repo analysis updated", zap.String("id", id.String()))
	return nil
}

// Delete deletes a synced repo
func (r *RepoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM github_repos WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete repo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("repo not found: %s", id)
	}

	r.logger.Debug("repo deleted", zap.String("id", id.String()))
	return nil
}

// CountByUserID counts the repos synced by a user
func (r *RepoRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM github_repos WHERE user_id = $1`

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count repos: %w", err)
	}

	return count, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *RepoRepository) WithTx(tx repositories.Transaction) repositories.RepoRepository {
	return &RepoRepository{
		db:     r.db,
		logger: r.logger,
	}
}

// scanRepo scans a repo row, decoding the analysis column
func scanRepo(row interface{ Scan(...interface{}) error }) (*models.GithubRepo, error) {
	repo := &models.GithubRepo{}
	var rawAnalysis []byte

	err := row.Scan(
		&repo.ID,
		&repo.UserID,
		&repo.FullName,
		&repo.Description,
		&repo.Language,
		&repo.Stars,
		&rawAnalysis,
		&repo.AnalyzedAt,
		&repo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	analysis, err := scanAnalysis(rawAnalysis)
	if err != nil {
		return nil, err
	}
	repo.Analysis = analysis

	return repo, nil
}
