package models

import (
	"time"

	"github.com/google/uuid"
)

// Note represents an uploaded study note
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Subject   string    `json:"subject" db:"subject"`
	FileType  string    `json:"file_type" db:"file_type"`
	FileName  string    `json:"file_name" db:"file_name"`
	Embedding Embedding `json:"-" db:"embedding"` // computed asynchronously after create
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Note model
func (Note) TableName() string {
	return "notes"
}

// NewNote creates a new Note instance
func NewNote(userID uuid.UUID, title, content, subject, fileType, fileName string) *Note {
	return &Note{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Subject:   subject,
		FileType:  fileType,
		FileName:  fileName,
		CreatedAt: time.Now(),
	}
}

// HasEmbedding returns true once the async embedding pass has run
func (n *Note) HasEmbedding() bool {
	return !n.Embedding.IsEmpty()
}
