package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub-backend/models"
)

func questionColumns() []string {
	return []string{"id", "user_id", "company", "question", "difficulty", "topic", "solution", "year", "embedding", "solved", "created_at"}
}

func TestQuestionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewQuestionRepository(db, db.logger)
	question := models.NewPlacementQuestion(uuid.New(), "Acme", "Reverse a linked list", models.DifficultyMedium, "linked lists", 2025)

	mock.ExpectExec("INSERT INTO placement_questions").
		WithArgs(
			question.ID,
			question.UserID,
			"Acme",
			"Reverse a linked list",
			models.DifficultyMedium,
			"linked lists",
			"",
			2025,
			nil,
			false,
			question.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), question)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_GetByUserID_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewQuestionRepository(db, db.logger)
	userID := uuid.New()

	rows := sqlmock.NewRows(questionColumns()).
		AddRow(uuid.New(), userID, "Acme", "Reverse a linked list", "medium", "linked lists", "", 2025, []byte(`{"linked":0.5,"list":0.5}`), false, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM placement_questions").
		WithArgs(userID, "Acme", "graphs").
		WillReturnRows(rows)

	questions, err := repo.GetByUserID(context.Background(), userID, "Acme", "graphs")

	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Acme", questions[0].Company)
	assert.Equal(t, models.DifficultyMedium, questions[0].Difficulty)
	assert.InDelta(t, 0.5, questions[0].Embedding["linked"], 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_SetSolved(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewQuestionRepository(db, db.logger)
	id := uuid.New()

	mock.ExpectExec("UPDATE placement_questions SET solved").
		WithArgs(id, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetSolved(context.Background(), id, true)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_SetSolved_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewQuestionRepository(db, db.logger)
	id := uuid.New()

	mock.ExpectExec("UPDATE placement_questions SET solved").
		WithArgs(id, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetSolved(context.Background(), id, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "question not found")
}

func TestQuestionRepository_CountByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	repo := NewQuestionRepository(db, db.logger)
	userID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByUserID(context.Background(), userID, true)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
