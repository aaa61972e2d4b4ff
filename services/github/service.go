package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/services"
	"github.com/studyhub/studyhub-backend/services/providers"
	"go.uber.org/zap"
)

const analysisSystemPrompt = "You are a senior engineer reviewing a student's repository. " +
	"Answer with a JSON object containing: summary (2-3 sentences), " +
	"technologies (array of strings), key_files (array of up to 5 file paths), " +
	"architecture (1-2 sentences). Base your answer only on the provided context."

// API is the subset of the GitHub REST API the service depends on
type API interface {
	GetUser(ctx context.Context, token string) (*User, error)
	ListRepos(ctx context.Context, token string) ([]Repo, error)
	GetReadme(ctx context.Context, token, fullName string) (string, error)
	GetLanguages(ctx context.Context, token, fullName string) (map[string]int, error)
}

// SyncResult summarizes a repository sync run
type SyncResult struct {
	Synced int `json:"synced"`
}

// Service links GitHub accounts, syncs repositories, and runs on-demand
// LLM analysis of a repo.
type Service struct {
	users     repositories.UserRepository
	repos     repositories.RepoRepository
	api       API
	completer providers.Completer
	logger    *zap.Logger
}

// NewService creates a new GitHub service
func NewService(
	users repositories.UserRepository,
	repos repositories.RepoRepository,
	api API,
	completer providers.Completer,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:     users,
		repos:     repos,
		api:       api,
		completer: completer,
		logger:    logger,
	}
}

// Connect verifies a personal access token against the GitHub API and
// stores it on the user.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, services.ErrInvalidInput
	}

	ghUser, err := s.api.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateGithubToken(ctx, userID, &token); err != nil {
		return nil, services.WrapInternal("failed to store github token", err)
	}

	s.logger.Info("github account connected",
		zap.String("user_id", userID.String()),
		zap.String("github_login", ghUser.Login))

	return ghUser, nil
}

// Disconnect clears the stored token
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.UpdateGithubToken(ctx, userID, nil); err != nil {
		return services.WrapInternal("failed to clear github token", err)
	}
	return nil
}

// Sync pulls the user's repositories from GitHub and upserts them.
// Metadata of previously synced repos is refreshed; analyses survive.
func (s *Service) Sync(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	token, err := s.tokenFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	ghRepos, err := s.api.ListRepos(ctx, token)
	if err != nil {
		return nil, err
	}

	synced := 0
	for _, ghRepo := range ghRepos {
		repo := models.NewGithubRepo(userID, ghRepo.FullName, ghRepo.Description, ghRepo.Language, ghRepo.Stars)
		if err := s.repos.Upsert(ctx, repo); err != nil {
			s.logger.Error("failed to upsert repo",
				zap.String("full_name", ghRepo.FullName),
				zap.Error(err))
			continue
		}
		synced++
	}

	s.logger.Info("github repos synced",
		zap.String("user_id", userID.String()),
		zap.Int("synced", synced))

	return &SyncResult{Synced: synced}, nil
}

// List returns the user's synced repositories
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*models.GithubRepo, error) {
	repos, err := s.repos.GetByUserID(ctx, userID)
	if err != nil {
		return nil, services.WrapInternal("failed to list repos", err)
	}
	return repos, nil
}

// Analyze asks the LLM to summarize a repository from its metadata,
// language breakdown, and README, and stores the typed result.
func (s *Service) Analyze(ctx context.Context, userID, repoID uuid.UUID) (*models.GithubRepo, error) {
	repo, err := s.repos.GetByID(ctx, repoID)
	if err != nil {
		return nil, services.ErrRepoNotFound
	}
	if repo.UserID != userID {
		return nil, services.ErrNotOwner
	}

	token, err := s.tokenFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	readme, err := s.api.GetReadme(ctx, token, repo.FullName)
	if err != nil {
		s.logger.Warn("failed to fetch readme, analyzing without it",
			zap.String("full_name", repo.FullName),
			zap.Error(err))
	}

	languages, err := s.api.GetLanguages(ctx, token, repo.FullName)
	if err != nil {
		s.logger.Warn("failed to fetch languages, analyzing without them",
			zap.String("full_name", repo.FullName),
			zap.Error(err))
	}

	analysis, err := s.runAnalysis(ctx, repo, readme, languages)
	if err != nil {
		return nil, err
	}

	if err := s.repos.UpdateAnalysis(ctx, repoID, analysis); err != nil {
		return nil, services.WrapInternal("failed to store analysis", err)
	}

	repo.SetAnalysis(analysis)

	s.logger.Info("repo analyzed",
		zap.String("full_name", repo.FullName),
		zap.Int("technologies", len(analysis.Technologies)))

	return repo, nil
}

func (s *Service) runAnalysis(ctx context.Context, repo *models.GithubRepo, readme string, languages map[string]int) (*models.RepoAnalysis, error) {
	prompt := buildAnalysisPrompt(repo, readme, languages)

	resp, err := s.completer.Complete(ctx, providers.CompletionRequest{
		System:         analysisSystemPrompt,
		Prompt:         prompt,
		Temperature:    0.2,
		MaxTokens:      1024,
		ResponseFormat: "json",
	})
	if err != nil {
		return nil, services.WrapExternal("repo analysis failed", err)
	}

	var analysis models.RepoAnalysis
	if err := json.Unmarshal([]byte(resp.Content), &analysis); err != nil {
		return nil, services.WrapExternal("repo analysis returned invalid JSON", err)
	}

	return &analysis, nil
}

func buildAnalysisPrompt(repo *models.GithubRepo, readme string, languages map[string]int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repository: %s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Fprintf(&b, "Primary language: %s\n", repo.Language)
	}
	fmt.Fprintf(&b, "Stars: %d\n", repo.Stars)

	if len(languages) > 0 {
		b.WriteString("Languages by bytes:\n")
		for lang, bytes := range languages {
			fmt.Fprintf(&b, "  %s: %d\n", lang, bytes)
		}
	}

	if readme != "" {
		b.WriteString("\nREADME:\n")
		b.WriteString(readme)
	}

	return b.String()
}

func (s *Service) tokenFor(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", services.ErrUserNotFound
	}
	if !user.HasGithubToken() {
		return "", services.ErrGithubNotLinked
	}
	return *user.GithubToken, nil
}

var _ API = (*Client)(nil)
