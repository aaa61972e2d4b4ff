package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// User tests
func TestNewUser(t *testing.T) {
	user := NewUser("jules@example.com", "hashed", "Jules")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "jules@example.com", user.Email)
	assert.Equal(t, "hashed", user.PasswordHash)
	assert.Equal(t, "Jules", user.Name)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
}

func TestUser_HasGithubToken(t *testing.T) {
	user := NewUser("jules@example.com", "hashed", "Jules")
	assert.False(t, user.HasGithubToken())

	empty := ""
	user.GithubToken = &empty
	assert.False(t, user.HasGithubToken())

	token := "ghp_abc123"
	user.GithubToken = &token
	assert.True(t, user.HasGithubToken())
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	token := "ghp_abc123"
	user := NewUser("jules@example.com", "hashed", "Jules")
	user.GithubToken = &token

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "hashed")
	assert.NotContains(t, string(data), "ghp_abc123")
}

// Note tests
func TestNewNote(t *testing.T) {
	userID := uuid.New()

	note := NewNote(userID, "Graphs", "BFS and DFS traversal", "algorithms", "txt", "graphs.txt")

	assert.NotEqual(t, uuid.Nil, note.ID)
	assert.Equal(t, userID, note.UserID)
	assert.Equal(t, "Graphs", note.Title)
	assert.Equal(t, "algorithms", note.Subject)
	assert.False(t, note.HasEmbedding())
	assert.False(t, note.CreatedAt.IsZero())
}

func TestNote_TableName(t *testing.T) {
	assert.Equal(t, "notes", Note{}.TableName())
}

func TestNote_HasEmbedding(t *testing.T) {
	note := NewNote(uuid.New(), "t", "c", "s", "txt", "t.txt")
	assert.False(t, note.HasEmbedding())

	note.Embedding = Embedding{"graph": 0.5, "traversal": 0.5}
	assert.True(t, note.HasEmbedding())
}

// PlacementQuestion tests
func TestNewPlacementQuestion(t *testing.T) {
	userID := uuid.New()

	q := NewPlacementQuestion(userID, "Acme", "Reverse a linked list", DifficultyMedium, "linked-lists", 2025)

	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, userID, q.UserID)
	assert.Equal(t, DifficultyMedium, q.Difficulty)
	assert.False(t, q.Solved)
	assert.Nil(t, q.Solution)
}

func TestPlacementQuestion_TableName(t *testing.T) {
	assert.Equal(t, "placement_questions", PlacementQuestion{}.TableName())
}

func TestPlacementQuestion_SetSolutionAndSolved(t *testing.T) {
	q := NewPlacementQuestion(uuid.New(), "Acme", "Q", DifficultyEasy, "arrays", 2024)

	q.SetSolution("use two pointers")
	require.NotNil(t, q.Solution)
	assert.Equal(t, "use two pointers", *q.Solution)

	q.MarkSolved(true)
	assert.True(t, q.Solved)
	q.MarkSolved(false)
	assert.False(t, q.Solved)
}

// GithubRepo tests
func TestNewGithubRepo(t *testing.T) {
	userID := uuid.New()

	repo := NewGithubRepo(userID, "jules/raytracer", "A toy raytracer", "Go", 42)

	assert.NotEqual(t, uuid.Nil, repo.ID)
	assert.Equal(t, "jules/raytracer", repo.FullName)
	assert.Equal(t, 42, repo.Stars)
	assert.False(t, repo.IsAnalyzed())
	assert.Nil(t, repo.AnalyzedAt)
}

func TestGithubRepo_TableName(t *testing.T) {
	assert.Equal(t, "github_repos", GithubRepo{}.TableName())
}

func TestGithubRepo_SetAnalysis(t *testing.T) {
	repo := NewGithubRepo(uuid.New(), "jules/raytracer", "", "Go", 0)

	analysis := &RepoAnalysis{
		Summary:      "A toy raytracer written in Go",
		Technologies: []string{"Go"},
		KeyFiles:     []string{"main.go", "scene.go"},
		Architecture: "single binary",
	}
	repo.SetAnalysis(analysis)

	assert.True(t, repo.IsAnalyzed())
	require.NotNil(t, repo.AnalyzedAt)
	assert.WithinDuration(t, time.Now(), *repo.AnalyzedAt, time.Second)
	assert.Equal(t, analysis, repo.Analysis)
}

func TestRepoAnalysis_JSONRoundTrip(t *testing.T) {
	analysis := RepoAnalysis{
		Summary:      "summary",
		Technologies: []string{"Go", "Postgres"},
	}

	data, err := json.Marshal(analysis)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "key_files") // omitted when empty

	var parsed RepoAnalysis
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, analysis, parsed)
}

// Chat tests
func TestNewChatSession(t *testing.T) {
	userID := uuid.New()

	session := NewChatSession(userID, "Prep for Acme")
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, "Prep for Acme", session.Title)

	untitled := NewChatSession(userID, "")
	assert.Equal(t, "New chat", untitled.Title)
}

func TestChatSession_TableName(t *testing.T) {
	assert.Equal(t, "chat_sessions", ChatSession{}.TableName())
	assert.Equal(t, "chat_messages", ChatMessage{}.TableName())
}

func TestNewChatMessage(t *testing.T) {
	sessionID := uuid.New()
	sources := []Source{{Type: SourceTypeNote, Title: "Graphs", Content: "BFS", Relevance: 0.5}}

	msg := NewChatMessage(sessionID, RoleAssistant, "here is your answer", sources)

	assert.Equal(t, sessionID, msg.SessionID)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Len(t, msg.Sources, 1)
	assert.Equal(t, SourceTypeNote, msg.Sources[0].Type)
}

func TestTitleFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"empty", "", "New chat"},
		{"whitespace", "   ", "New chat"},
		{"short", "explain heaps", "explain heaps"},
		{"long", "explain the difference between a binary search tree and a balanced AVL tree in detail", "explain the difference between a binary search tree and a ba..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleFromQuery(tt.query)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), sessionTitleMaxLen+3)
		})
	}
}

func TestEmbedding_IsEmpty(t *testing.T) {
	var e Embedding
	assert.True(t, e.IsEmpty())
	assert.True(t, Embedding{}.IsEmpty())
	assert.False(t, Embedding{"token": 1.0}.IsEmpty())
}

func TestTitleFromQuery_MultiByteBoundary(t *testing.T) {
	query := "a" + strings.Repeat("日", 25)

	got := TitleFromQuery(query)

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
