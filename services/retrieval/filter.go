package retrieval

import (
	"strings"

	"github.com/studyhub/studyhub-backend/config"
	"github.com/studyhub/studyhub-backend/models"
	"go.uber.org/zap"
)

const (
	// Per-source caps on candidates handed to the ranker
	noteLimit     = 3
	questionLimit = 2
	repoLimit     = 3

	// similarityThreshold is the minimum cosine similarity for inclusion
	// when no substring match hits
	similarityThreshold = 0.3
)

// Service selects which of a user's stored content is relevant to a query.
// Inclusion is lexical: substring match or term-frequency cosine similarity.
type Service struct {
	projectKeywords []string
	logger          *zap.Logger
}

// NewService creates a new retrieval service
func NewService(cfg config.RetrievalConfig, logger *zap.Logger) *Service {
	return &Service{
		projectKeywords: cfg.ProjectKeywords,
		logger:          logger,
	}
}

// FilterNotes returns the notes relevant to the query, capped at noteLimit.
// A note is included when the lowercased query appears in its title, content,
// or subject, or when its stored embedding clears the similarity threshold.
func (s *Service) FilterNotes(notes []*models.Note, query string, queryEmb models.Embedding) []*models.Note {
	lowerQuery := strings.ToLower(query)

	matched := make([]*models.Note, 0, noteLimit)
	for _, note := range notes {
		if len(matched) >= noteLimit {
			break
		}
		if matchesSubstring(lowerQuery, note.Title, note.Content, note.Subject) ||
			CosineSimilarity(note.Embedding, queryEmb) > similarityThreshold {
			matched = append(matched, note)
		}
	}
	return matched
}

// FilterQuestions returns the placement questions relevant to the query,
// capped at questionLimit.
func (s *Service) FilterQuestions(questions []*models.PlacementQuestion, query string, queryEmb models.Embedding) []*models.PlacementQuestion {
	lowerQuery := strings.ToLower(query)

	matched := make([]*models.PlacementQuestion, 0, questionLimit)
	for _, q := range questions {
		if len(matched) >= questionLimit {
			break
		}
		if matchesSubstring(lowerQuery, q.Question, q.Topic, q.Company) ||
			CosineSimilarity(q.Embedding, queryEmb) > similarityThreshold {
			matched = append(matched, q)
		}
	}
	return matched
}

// FilterRepos returns the repositories relevant to the query, capped at
// repoLimit. On top of the substring/similarity rules, a project-shaped query
// (one containing any configured project keyword) includes every analyzed
// repository; when nothing matches at all, a project-shaped query falls back
// to up to repoLimit analyzed repositories. The fallback deliberately trades
// precision for recall.
func (s *Service) FilterRepos(repos []*models.GithubRepo, query string, queryEmb models.Embedding) []*models.GithubRepo {
	lowerQuery := strings.ToLower(query)
	projectQuery := s.isProjectQuery(lowerQuery)

	matched := make([]*models.GithubRepo, 0, repoLimit)
	for _, repo := range repos {
		if len(matched) >= repoLimit {
			break
		}
		switch {
		case matchesSubstring(lowerQuery, repo.FullName, repo.Description, repo.Language):
			matched = append(matched, repo)
		case CosineSimilarity(Embed(repo.FullName+" "+repo.Description), queryEmb) > similarityThreshold:
			matched = append(matched, repo)
		case projectQuery && repo.IsAnalyzed():
			matched = append(matched, repo)
		}
	}

	if len(matched) == 0 && projectQuery {
		for _, repo := range repos {
			if len(matched) >= repoLimit {
				break
			}
			if repo.IsAnalyzed() {
				matched = append(matched, repo)
			}
		}
		if len(matched) > 0 {
			s.logger.Debug("project keyword fallback included analyzed repos",
				zap.Int("count", len(matched)))
		}
	}

	return matched
}

// isProjectQuery reports whether the lowercased query mentions any of the
// configured project keywords
func (s *Service) isProjectQuery(lowerQuery string) bool {
	for _, keyword := range s.projectKeywords {
		if strings.Contains(lowerQuery, keyword) {
			return true
		}
	}
	return false
}

func matchesSubstring(lowerQuery string, fields ...string) bool {
	if lowerQuery == "" {
		return false
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}
