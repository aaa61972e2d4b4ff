package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MessageRole identifies who authored a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// SourceType identifies which collection a retrieved source came from
type SourceType string

const (
	SourceTypeNote     SourceType = "note"
	SourceTypeQuestion SourceType = "question"
	SourceTypeGithub   SourceType = "github"
)

// Source is a retrieved note, question, or repository offered as grounding
// for an answer, with its query-coverage relevance score.
type Source struct {
	Type      SourceType `json:"type"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Relevance float64    `json:"relevance"`
}

// ChatSession represents one conversation with the assistant
type ChatSession struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Title     string         `json:"title" db:"title"`
	Messages  []*ChatMessage `json:"messages,omitempty" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ChatSession model
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage represents a single turn within a session
type ChatMessage struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	SessionID uuid.UUID   `json:"session_id" db:"session_id"`
	Role      MessageRole `json:"role" db:"role"`
	Content   string      `json:"content" db:"content"`
	Sources   []Source    `json:"sources,omitempty" db:"sources"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// sessionTitleMaxLen caps auto-generated session titles
const sessionTitleMaxLen = 60

// NewChatSession creates a new ChatSession instance
func NewChatSession(userID uuid.UUID, title string) *ChatSession {
	now := time.Now()
	if title == "" {
		title = "New chat"
	}
	return &ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewChatMessage creates a new ChatMessage instance
func NewChatMessage(sessionID uuid.UUID, role MessageRole, content string, sources []Source) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now(),
	}
}

// TitleFromQuery derives a session title from the first user query
func TitleFromQuery(query string) string {
	title := strings.TrimSpace(query)
	if title == "" {
		return "New chat"
	}
	if len(title) > sessionTitleMaxLen {
		// Back up to a rune boundary so multi-byte characters are not split
		cut := sessionTitleMaxLen
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = strings.TrimSpace(title[:cut]) + "..."
	}
	return title
}
