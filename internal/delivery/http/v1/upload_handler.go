package v1

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/domain"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/logger"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/storage"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/utils"
)

var (
	allowedMimeTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
	allowedExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	}
)

type UploadHandler struct {
	storage       *storage.R2Storage
	maxUploadSize int64
}

func NewUploadHandler(s *storage.R2Storage, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// UploadFile accepts one multipart image, re-encodes it (resize + WebP) and
// stores it in the media bucket. Returns the public URL for use in product
// media payloads.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.CodeUploadInvalid, "File too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, domain.CodeUploadInvalid, "Invalid file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[contentType] {
		utils.WriteError(w, http.StatusBadRequest, domain.CodeUploadInvalid, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, domain.CodeUploadInvalid, "Invalid file extension")
		return
	}

	processedData, newContentType, err := utils.ProcessImage(file, header.Filename)
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("image processing failed")
		utils.WriteError(w, http.StatusInternalServerError, domain.CodeUploadFailed, "Failed to process image")
		return
	}

	url, err := h.storage.UploadBuffer(r.Context(), processedData, newContentType)
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("media upload failed")
		utils.WriteError(w, http.StatusInternalServerError, domain.CodeUploadFailed, "Failed to upload file")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"url": url,
	})
}
