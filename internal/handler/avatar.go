package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/avatarly/avatarly-go/internal/apperror"
	"github.com/avatarly/avatarly-go/internal/middleware"
	"github.com/avatarly/avatarly-go/internal/model"
	"github.com/avatarly/avatarly-go/internal/service"
)

// maxUploadBytes caps multipart avatar uploads.
const maxUploadBytes = 10 << 20 // 10MB

// AvatarHandler handles HTTP requests for the avatar lifecycle.
type AvatarHandler struct {
	service *service.AvatarService
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(svc *service.AvatarService) *AvatarHandler {
	return &AvatarHandler{service: svc}
}

// HandleUpload handles POST /api/users/avatar/upload requests. The
// image is sent as the multipart form field "avatar".
func (h *AvatarHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.Validation("No file uploaded."))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, apperror.Validation("No file uploaded."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperror.Validation("No file uploaded."))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := h.service.Upload(r.Context(), userID, data, header.Filename, contentType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGenerate handles POST /api/users/avatar/generate requests.
func (h *AvatarHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		writeError(w, apperror.Unauthorized("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.GenerateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("invalid request body"))
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSaveGenerated handles POST /api/users/avatar/save-generated requests.
func (h *AvatarHandler) HandleSaveGenerated(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.SaveGeneratedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.Validation("invalid request body"))
		return
	}

	resp, err := h.service.SaveGenerated(r.Context(), userID, req.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
