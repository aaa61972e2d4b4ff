package retrieval

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCandidates_OrderAndTagging(t *testing.T) {
	userID := uuid.New()

	notes := []*models.Note{models.NewNote(userID, "Graphs", "BFS", "algorithms", "txt", "g.txt")}
	questions := []*models.PlacementQuestion{models.NewPlacementQuestion(userID, "Acme", "two sum", models.DifficultyEasy, "arrays", 2025)}
	repos := []*models.GithubRepo{models.NewGithubRepo(userID, "jules/chess", "chess engine", "Go", 1)}

	candidates := BuildCandidates(notes, questions, repos)

	require.Len(t, candidates, 3)
	assert.Equal(t, models.SourceTypeNote, candidates[0].Type)
	assert.Equal(t, models.SourceTypeQuestion, candidates[1].Type)
	assert.Equal(t, models.SourceTypeGithub, candidates[2].Type)
	assert.Equal(t, "Acme (arrays)", candidates[1].Title)
}

func TestBuildCandidates_TruncatesNoteContent(t *testing.T) {
	long := strings.Repeat("x", 800)
	note := models.NewNote(uuid.New(), "Long", long, "misc", "txt", "l.txt")

	candidates := BuildCandidates([]*models.Note{note}, nil, nil)

	require.Len(t, candidates, 1)
	assert.Len(t, candidates[0].Content, noteContentLimit+3)
	assert.True(t, strings.HasSuffix(candidates[0].Content, "..."))

	short := models.NewNote(uuid.New(), "Short", "brief", "misc", "txt", "s.txt")
	candidates = BuildCandidates([]*models.Note{short}, nil, nil)
	assert.Equal(t, "brief", candidates[0].Content)
}

func TestBuildCandidates_RepoBlock(t *testing.T) {
	repo := models.NewGithubRepo(uuid.New(), "jules/raytracer", "a toy raytracer", "Go", 42)
	repo.SetAnalysis(&models.RepoAnalysis{
		Summary:      "renders spheres with path tracing",
		Technologies: []string{"Go", "SDL2"},
		Architecture: "single binary",
		KeyFiles:     []string{"main.go", "scene.go", "render.go", "extra.go"},
	})

	candidates := BuildCandidates(nil, nil, []*models.GithubRepo{repo})

	require.Len(t, candidates, 1)
	content := candidates[0].Content
	assert.Contains(t, content, "Repository: jules/raytracer")
	assert.Contains(t, content, "Description: a toy raytracer")
	assert.Contains(t, content, "Language: Go")
	assert.Contains(t, content, "Stars: 42")
	assert.Contains(t, content, "Summary: renders spheres")
	assert.Contains(t, content, "Technologies: Go, SDL2")
	assert.Contains(t, content, "Architecture: single binary")
	assert.Contains(t, content, "Key files: main.go, scene.go, render.go")
	assert.NotContains(t, content, "extra.go") // capped at three key files
}

func TestBuildCandidates_QuestionWithSolution(t *testing.T) {
	q := models.NewPlacementQuestion(uuid.New(), "Acme", "two sum", models.DifficultyEasy, "arrays", 2025)
	q.SetSolution("use a hash map")

	candidates := BuildCandidates(nil, []*models.PlacementQuestion{q}, nil)

	require.Len(t, candidates, 1)
	assert.Contains(t, candidates[0].Content, "two sum")
	assert.Contains(t, candidates[0].Content, "Solution: use a hash map")
}

func TestRank_SortedAndCapped(t *testing.T) {
	candidates := []Candidate{
		{Type: models.SourceTypeNote, Title: "none", Content: "irrelevant"},
		{Type: models.SourceTypeNote, Title: "binary", Content: "search trees explained"},
		{Type: models.SourceTypeNote, Title: "binary only", Content: "nothing else"},
		{Type: models.SourceTypeQuestion, Title: "full", Content: "binary search question"},
		{Type: models.SourceTypeGithub, Title: "partial", Content: "search index"},
		{Type: models.SourceTypeNote, Title: "alpha", Content: "beta"},
		{Type: models.SourceTypeNote, Title: "gamma", Content: "delta"},
	}

	sources := Rank(candidates, "binary search")

	require.Len(t, sources, maxSources)
	for i := 1; i < len(sources); i++ {
		assert.GreaterOrEqual(t, sources[i-1].Relevance, sources[i].Relevance)
	}
	assert.InDelta(t, 1.0, sources[0].Relevance, 1e-9)
}

func TestRank_StableTieOrder(t *testing.T) {
	// Two candidates with identical coverage keep their merge order:
	// notes before questions.
	candidates := []Candidate{
		{Type: models.SourceTypeNote, Title: "heap note", Content: ""},
		{Type: models.SourceTypeQuestion, Title: "heap question", Content: ""},
	}

	sources := Rank(candidates, "heap")

	require.Len(t, sources, 2)
	assert.Equal(t, models.SourceTypeNote, sources[0].Type)
	assert.Equal(t, models.SourceTypeQuestion, sources[1].Type)
	assert.Equal(t, sources[0].Relevance, sources[1].Relevance)
}

func TestRank_EmptyQuery(t *testing.T) {
	candidates := []Candidate{{Type: models.SourceTypeNote, Title: "t", Content: "c"}}

	sources := Rank(candidates, "   ")

	require.Len(t, sources, 1)
	assert.Zero(t, sources[0].Relevance)
}

func TestTruncate_RuneBoundary(t *testing.T) {
	long := strings.Repeat("日", 200)

	got := truncate(long, noteContentLimit)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), noteContentLimit+3)
}

func TestTruncate_ShortStringUntouched(t *testing.T) {
	assert.Equal(t, "héap", truncate("héap", noteContentLimit))
}
