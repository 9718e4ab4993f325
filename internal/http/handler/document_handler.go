package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler handles HTTP requests for contract documents
type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler instance
func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// Upload godoc
// @Summary Upload a contract document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Contract ID" format(uuid)
// @Param file formData file true "Document to upload"
// @Success 201 {object} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(r.Context(), contractID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to upload document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// List godoc
// @Summary List contract documents
// @Tags Documents
// @Produce json
// @Param id path string true "Contract ID" format(uuid)
// @Success 200 {array} domain.DocumentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}

	docs, err := h.documentService.List(r.Context(), contractID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// Download godoc
// @Summary Download a contract document
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Contract ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 200
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/documents/{documentId} [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	doc, reader, err := h.documentService.Download(r.Context(), contractID, documentID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to download document")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream document",
			zap.String("document_id", documentID.String()),
			zap.Error(err),
		)
	}
}

// Delete godoc
// @Summary Delete a contract document
// @Tags Documents
// @Param id path string true "Contract ID" format(uuid)
// @Param documentId path string true "Document ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/documents/{documentId} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}
	documentID, err := uuid.Parse(chi.URLParam(r, "documentId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	if err := h.documentService.Delete(r.Context(), contractID, documentID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
