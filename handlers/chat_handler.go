package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/middleware"
	"github.com/studyhub/studyhub-backend/services/chat"
	"github.com/studyhub/studyhub-backend/utils"
)

// CreateSessionRequest is the request body for POST /api/v1/chat/sessions
type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=200"`
}

// SendMessageRequest is the request body for
// POST /api/v1/chat/sessions/{id}/messages
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ChatHandler handles chat session HTTP requests
type ChatHandler struct {
	service *chat.Service
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreateSession handles POST /api/v1/chat/sessions
func (h *ChatHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req CreateSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	session, err := h.service.CreateSession(r.Context(), userID, req.Title)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, session)
}

// HandleListSessions handles GET /api/v1/chat/sessions
func (h *ChatHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	sessions, err := h.service.ListSessions(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, sessions)
}

// HandleGetSession handles GET /api/v1/chat/sessions/{id}. The response
// includes the session's messages in chronological order.
func (h *ChatHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid session ID", nil)
		return
	}

	session, err := h.service.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, session)
}

// HandleSendMessage handles POST /api/v1/chat/sessions/{id}/messages
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid session ID", nil)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	reply, err := h.service.SendMessage(r.Context(), userID, sessionID, req.Content)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, reply)
}

// HandleDeleteSession handles DELETE /api/v1/chat/sessions/{id}
func (h *ChatHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid session ID", nil)
		return
	}

	if err := h.service.DeleteSession(r.Context(), userID, sessionID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
