package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionDifficulty represents the difficulty tag of a placement question
type QuestionDifficulty string

const (
	DifficultyEasy   QuestionDifficulty = "easy"
	DifficultyMedium QuestionDifficulty = "medium"
	DifficultyHard   QuestionDifficulty = "hard"
)

// PlacementQuestion represents an interview question saved by a user
type PlacementQuestion struct {
	ID         uuid.UUID          `json:"id" db:"id"`
	UserID     uuid.UUID          `json:"user_id" db:"user_id"`
	Company    string             `json:"company" db:"company"`
	Question   string             `json:"question" db:"question"`
	Difficulty QuestionDifficulty `json:"difficulty" db:"difficulty"`
	Topic      string             `json:"topic" db:"topic"`
	Solution   *string            `json:"solution,omitempty" db:"solution"`
	Year       int                `json:"year" db:"year"`
	Embedding  Embedding          `json:"-" db:"embedding"`
	Solved     bool               `json:"solved" db:"solved"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the PlacementQuestion model
func (PlacementQuestion) TableName() string {
	return "placement_questions"
}

// NewPlacementQuestion creates a new PlacementQuestion instance
func NewPlacementQuestion(userID uuid.UUID, company, question string, difficulty QuestionDifficulty, topic string, year int) *PlacementQuestion {
	return &PlacementQuestion{
		ID:         uuid.New(),
		UserID:     userID,
		Company:    company,
		Question:   question,
		Difficulty: difficulty,
		Topic:      topic,
		Year:       year,
		CreatedAt:  time.Now(),
	}
}

// SetSolution attaches a solution to the question
func (q *PlacementQuestion) SetSolution(solution string) {
	q.Solution = &solution
}

// MarkSolved toggles the solved flag
func (q *PlacementQuestion) MarkSolved(solved bool) {
	q.Solved = solved
}
