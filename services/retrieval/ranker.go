package retrieval

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/studyhub/studyhub-backend/models"
)

const (
	// maxSources caps the merged candidate list handed to the generator
	maxSources = 5

	// noteContentLimit truncates note content shown to the generator
	noteContentLimit = 500

	// repoKeyFileLimit caps key files rendered in a repository block
	repoKeyFileLimit = 3
)

// Candidate is a filtered entry tagged by source type, ready for ranking
type Candidate struct {
	Type    models.SourceType
	Title   string
	Content string
}

// BuildCandidates merges the three filtered lists into one candidate slice,
// notes first, then questions, then repositories, preserving per-source order.
// Content is shaped for the generator here: note content is truncated,
// repository content is rendered as a formatted block.
func BuildCandidates(notes []*models.Note, questions []*models.PlacementQuestion, repos []*models.GithubRepo) []Candidate {
	candidates := make([]Candidate, 0, len(notes)+len(questions)+len(repos))

	for _, note := range notes {
		candidates = append(candidates, Candidate{
			Type:    models.SourceTypeNote,
			Title:   note.Title,
			Content: truncate(note.Content, noteContentLimit),
		})
	}
	for _, q := range questions {
		candidates = append(candidates, Candidate{
			Type:    models.SourceTypeQuestion,
			Title:   fmt.Sprintf("%s (%s)", q.Company, q.Topic),
			Content: questionContent(q),
		})
	}
	for _, repo := range repos {
		candidates = append(candidates, Candidate{
			Type:    models.SourceTypeGithub,
			Title:   repo.FullName,
			Content: repoContent(repo),
		})
	}

	return candidates
}

// Rank scores each candidate by query-term coverage (the fraction of
// whitespace-split lowercased query words appearing as substrings in the
// candidate's text), sorts descending, and truncates to maxSources. Ties keep
// the original stable order.
func Rank(candidates []Candidate, query string) []models.Source {
	words := strings.Fields(strings.ToLower(query))

	sources := make([]models.Source, 0, len(candidates))
	for _, c := range candidates {
		sources = append(sources, models.Source{
			Type:      c.Type,
			Title:     c.Title,
			Content:   c.Content,
			Relevance: coverage(words, strings.ToLower(c.Title+" "+c.Content)),
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Relevance > sources[j].Relevance
	})

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

// coverage returns the fraction of query words found as substrings in text
func coverage(words []string, text string) float64 {
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back up to a rune boundary so multi-byte characters are not split
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func questionContent(q *models.PlacementQuestion) string {
	var b strings.Builder
	b.WriteString(q.Question)
	if q.Solution != nil && *q.Solution != "" {
		b.WriteString("\nSolution: ")
		b.WriteString(*q.Solution)
	}
	return b.String()
}

// repoContent renders the formatted repository block shown to the generator
func repoContent(repo *models.GithubRepo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", repo.Language)
	}
	fmt.Fprintf(&b, "Stars: %d", repo.Stars)

	if repo.Analysis != nil {
		if repo.Analysis.Summary != "" {
			fmt.Fprintf(&b, "\nSummary: %s", repo.Analysis.Summary)
		}
		if len(repo.Analysis.Technologies) > 0 {
			fmt.Fprintf(&b, "\nTechnologies: %s", strings.Join(repo.Analysis.Technologies, ", "))
		}
		if repo.Analysis.Architecture != "" {
			fmt.Fprintf(&b, "\nArchitecture: %s", repo.Analysis.Architecture)
		}
		if len(repo.Analysis.KeyFiles) > 0 {
			keyFiles := repo.Analysis.KeyFiles
			if len(keyFiles) > repoKeyFileLimit {
				keyFiles = keyFiles[:repoKeyFileLimit]
			}
			fmt.Fprintf(&b, "\nKey files: %s", strings.Join(keyFiles, ", "))
		}
	}

	return b.String()
}
