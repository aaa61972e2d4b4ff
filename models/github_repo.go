package models

import (
	"time"

	"github.com/google/uuid"
)

// RepoAnalysis is the typed result of an on-demand repository analysis.
// All fields are optional; the LLM may not produce every section.
type RepoAnalysis struct {
	Summary      string   `json:"summary,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	KeyFiles     []string `json:"key_files,omitempty"`
	Architecture string   `json:"architecture,omitempty"`
}

// GithubRepo represents a repository synced from the user's GitHub account
type GithubRepo struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	UserID      uuid.UUID     `json:"user_id" db:"user_id"`
	FullName    string        `json:"full_name" db:"full_name"`
	Description string        `json:"description" db:"description"`
	Language    string        `json:"language" db:"language"`
	Stars       int           `json:"stars" db:"stars"`
	Analysis    *RepoAnalysis `json:"analysis,omitempty" db:"analysis"` // populated on demand
	AnalyzedAt  *time.Time    `json:"analyzed_at,omitempty" db:"analyzed_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the GithubRepo model
func (GithubRepo) TableName() string {
	return "github_repos"
}

// NewGithubRepo creates a new GithubRepo instance
func NewGithubRepo(userID uuid.UUID, fullName, description, language string, stars int) *GithubRepo {
	return &GithubRepo{
		ID:          uuid.New(),
		UserID:      userID,
		FullName:    fullName,
		Description: description,
		Language:    language,
		Stars:       stars,
		CreatedAt:   time.Now(),
	}
}

// IsAnalyzed returns true once an analysis has been stored
func (r *GithubRepo) IsAnalyzed() bool {
	return r.Analysis != nil
}

// SetAnalysis stores the analysis result and stamps analyzed_at
func (r *GithubRepo) SetAnalysis(analysis *RepoAnalysis) {
	r.Analysis = analysis
	now := time.Now()
	r.AnalyzedAt = &now
}
