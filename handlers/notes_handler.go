package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/middleware"
	"github.com/studyhub/studyhub-backend/services"
	"github.com/studyhub/studyhub-backend/services/notes"
	"github.com/studyhub/studyhub-backend/utils"
)

const (
	// maxUploadBytes caps the size of an uploaded note file
	maxUploadBytes = 5 << 20
)

// CreateNoteRequest is the JSON request body for POST /api/v1/notes
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"required"`
	Subject string `json:"subject" validate:"max=100"`
}

// NotesHandler handles note HTTP requests
type NotesHandler struct {
	service *notes.Service
	logger  *zap.Logger
}

// NewNotesHandler creates a new NotesHandler
func NewNotesHandler(service *notes.Service, logger *zap.Logger) *NotesHandler {
	return &NotesHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate handles POST /api/v1/notes. Accepts either a JSON body or a
// multipart upload with a "file" field.
func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.createFromUpload(w, r, userID)
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	note, err := h.service.Create(r.Context(), userID, notes.CreateInput{
		Title:   req.Title,
		Content: req.Content,
		Subject: req.Subject,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, note)
}

func (h *NotesHandler) createFromUpload(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Missing file field", nil)
		return
	}
	defer file.Close()

	fileName := filepath.Base(header.Filename)
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")

	content, err := readUploadContent(file, fileName, fileType)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	note, err := h.service.Create(r.Context(), userID, notes.CreateInput{
		Title:    r.FormValue("title"),
		Content:  content,
		Subject:  r.FormValue("subject"),
		FileType: fileType,
		FileName: fileName,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, note)
}

// readUploadContent extracts text from an uploaded file. Plain text formats
// are read inline; pdf and docx are stored with a placeholder until text
// extraction is wired up.
func readUploadContent(file io.Reader, fileName, fileType string) (string, error) {
	switch fileType {
	case "txt", "md":
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return "", services.WrapInternal("failed to read uploaded file", err)
		}
		return string(data), nil
	case "pdf", "docx":
		return fmt.Sprintf("[Text extraction pending for %s]", fileName), nil
	default:
		return "", services.ErrUnsupportedFile
	}
}

// HandleList handles GET /api/v1/notes
func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /api/v1/notes/{id}
func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid note ID", nil)
		return
	}

	note, err := h.service.Get(r.Context(), userID, noteID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, note)
}

// HandleDelete handles DELETE /api/v1/notes/{id}
func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid note ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID, noteID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
