package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/middleware"
	"github.com/studyhub/studyhub-backend/services/github"
	"github.com/studyhub/studyhub-backend/utils"
)

// ConnectGithubRequest is the request body for POST /api/v1/github/connect
type ConnectGithubRequest struct {
	Token string `json:"token" validate:"required"`
}

// GithubHandler handles GitHub integration HTTP requests
type GithubHandler struct {
	service *github.Service
	logger  *zap.Logger
}

// NewGithubHandler creates a new GithubHandler
func NewGithubHandler(service *github.Service, logger *zap.Logger) *GithubHandler {
	return &GithubHandler{
		service: service,
		logger:  logger,
	}
}

// HandleConnect handles POST /api/v1/github/connect
func (h *GithubHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var req ConnectGithubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	account, err := h.service.Connect(r.Context(), userID, req.Token)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, account)
}

// HandleDisconnect handles DELETE /api/v1/github/connect
func (h *GithubHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	if err := h.service.Disconnect(r.Context(), userID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// HandleSync handles POST /api/v1/github/sync
func (h *GithubHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	result, err := h.service.Sync(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleListRepos handles GET /api/v1/github/repos
func (h *GithubHandler) HandleListRepos(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	repos, err := h.service.List(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, repos)
}

// HandleAnalyze handles POST /api/v1/github/repos/{id}/analyze
func (h *GithubHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	repoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid repository ID", nil)
		return
	}

	repo, err := h.service.Analyze(r.Context(), userID, repoID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, repo)
}
