package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"go.uber.org/zap"
)

// QuoteHandler handles HTTP requests for quotes, including the public
// token-addressed acceptance flow
type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

// NewQuoteHandler creates a new QuoteHandler instance
func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// Create godoc
// @Summary Create a quote
// @Description Create a draft quote with at least one line item
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote details"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create quote")
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

// List godoc
// @Summary List own quotes
// @Tags Quotes
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, published, accepted, rejected, expired)
// @Success 200 {array} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.QuoteStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.QuoteStatus(raw)
		status = &s
	}

	quotes, err := h.quoteService.ListForVendor(r.Context(), status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// GetByID godoc
// @Summary Get a quote
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Update godoc
// @Summary Update a quote
// @Description Update quote metadata. Line items are fixed after creation.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteRequest true "Quote details"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// UpdateStatus godoc
// @Summary Change quote status
// @Description Move a quote through its lifecycle. Moving to deleted removes the quote.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteStatusRequest true "Target status"
// @Success 200 {object} domain.QuoteDTO
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/status [put]
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.UpdateQuoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to change quote status")
		return
	}

	// A deleted quote has no body to return
	if quote == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Delete godoc
// @Summary Delete a quote
// @Tags Quotes
// @Param id path string true "Quote ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete quote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPublished godoc
// @Summary List published quotes
// @Description Public listing of published, unexpired quotes
// @Tags Quotes
// @Produce json
// @Success 200 {array} domain.PublicQuoteDTO
// @Router /quotes/public [get]
func (h *QuoteHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.quoteService.ListPublished(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list published quotes")
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// GetPublicByToken godoc
// @Summary Get a quote by public token
// @Description Public view of a quote behind its acceptance token
// @Tags Quotes
// @Produce json
// @Param token path string true "Quote token"
// @Success 200 {object} domain.PublicQuoteDTO
// @Failure 404 {object} domain.APIError
// @Failure 410 {object} domain.APIError
// @Router /quotes/public/{token} [get]
func (h *QuoteHandler) GetPublicByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	quote, err := h.quoteService.GetPublicByToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// AcceptPublic godoc
// @Summary Accept a quote
// @Description Accept a published quote through its public token, creating a project
// @Tags Quotes
// @Accept json
// @Produce json
// @Param token path string true "Quote token"
// @Param request body domain.AcceptQuoteRequest false "Optional down payment status"
// @Success 200 {object} domain.AcceptQuoteResponse
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 410 {object} domain.APIError
// @Router /quotes/public/{token}/accept [post]
func (h *QuoteHandler) AcceptPublic(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	// The body is optional, an empty one means no down payment status
	var req domain.AcceptQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.quoteService.AcceptPublic(r.Context(), token, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to accept quote")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
