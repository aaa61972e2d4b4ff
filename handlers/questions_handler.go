package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/middleware"
	"github.com/studyhub/studyhub-backend/models"
	"github.com/studyhub/studyhub-backend/services/questions"
	"github.com/studyhub/studyhub-backend/utils"
)

// CreateQuestionRequest is the request body for POST /api/v1/questions
type CreateQuestionRequest struct {
	Company    string `json:"company" validate:"required,max=100"`
	Question   string `json:"question" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Topic      string `json:"topic" validate:"max=100"`
	Solution   string `json:"solution"`
	Year       int    `json:"year" validate:"omitempty,gte=2000,lte=2100"`
}

// SetSolvedRequest is the request body for PATCH /api/v1/questions/{id}/solved
type SetSolvedRequest struct {
	Solved bool `json:"solved"`
}

// QuestionsHandler handles placement question HTTP requests
type QuestionsHandler struct {
	service *questions.Service
	logger  *zap.Logger
}

// NewQuestionsHandler creates a new QuestionsHandler
func NewQuestionsHandler(service *questions.Service, logger *zap.Logger) *QuestionsHandler {
	return &QuestionsHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate handles POST /api/v1/questions
func (h *QuestionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	question, err := h.service.Create(r.Context(), userID, questions.CreateInput{
		Company:    req.Company,
		Question:   req.Question,
		Difficulty: models.QuestionDifficulty(req.Difficulty),
		Topic:      req.Topic,
		Solution:   req.Solution,
		Year:       req.Year,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, question)
}

// HandleList handles GET /api/v1/questions with optional company and topic
// query filters
func (h *QuestionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	filter := questions.ListFilter{
		Company: r.URL.Query().Get("company"),
		Topic:   r.URL.Query().Get("topic"),
	}

	list, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /api/v1/questions/{id}
func (h *QuestionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	questionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid question ID", nil)
		return
	}

	question, err := h.service.Get(r.Context(), userID, questionID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, question)
}

// HandleSetSolved handles PATCH /api/v1/questions/{id}/solved
func (h *QuestionsHandler) HandleSetSolved(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	questionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid question ID", nil)
		return
	}

	var req SetSolvedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	question, err := h.service.SetSolved(r.Context(), userID, questionID, req.Solved)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, question)
}

// HandleDelete handles DELETE /api/v1/questions/{id}
func (h *QuestionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	questionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid question ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID, questionID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
