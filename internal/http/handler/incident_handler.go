package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"go.uber.org/zap"
)

// IncidentHandler handles HTTP requests for incidents
type IncidentHandler struct {
	incidentService *service.IncidentService
	logger          *zap.Logger
}

// NewIncidentHandler creates a new IncidentHandler instance
func NewIncidentHandler(incidentService *service.IncidentService, logger *zap.Logger) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Report an incident
// @Description Raise a change-order incident against a project
// @Tags Incidents
// @Accept json
// @Produce json
// @Param request body domain.CreateIncidentRequest true "Incident details"
// @Success 201 {object} domain.IncidentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /incidents [post]
func (h *IncidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	incident, err := h.incidentService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create incident")
		return
	}

	respondJSON(w, http.StatusCreated, incident)
}

// List godoc
// @Summary List incidents
// @Description Admins see all incidents, everyone else the incidents on their projects
// @Tags Incidents
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, in_progress, completed, rejected)
// @Success 200 {array} domain.IncidentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /incidents [get]
func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.IncidentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.IncidentStatus(raw)
		status = &s
	}

	incidents, err := h.incidentService.List(r.Context(), status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list incidents")
		return
	}

	respondJSON(w, http.StatusOK, incidents)
}

// GetByID godoc
// @Summary Get an incident
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID" format(uuid)
// @Success 200 {object} domain.IncidentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /incidents/{id} [get]
func (h *IncidentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid incident ID format")
		return
	}

	incident, err := h.incidentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get incident")
		return
	}

	respondJSON(w, http.StatusOK, incident)
}

// Update godoc
// @Summary Update an incident
// @Description Edit a pending incident's details and items
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID" format(uuid)
// @Param request body domain.UpdateIncidentRequest true "Incident details"
// @Success 200 {object} domain.IncidentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /incidents/{id} [put]
func (h *IncidentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid incident ID format")
		return
	}

	var req domain.UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	incident, err := h.incidentService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update incident")
		return
	}

	respondJSON(w, http.StatusOK, incident)
}

// UpdateStatus godoc
// @Summary Change incident status
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID" format(uuid)
// @Param request body domain.UpdateIncidentStatusRequest true "Target status"
// @Success 200 {object} domain.IncidentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /incidents/{id}/status [put]
func (h *IncidentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid incident ID format")
		return
	}

	var req domain.UpdateIncidentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	incident, err := h.incidentService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to change incident status")
		return
	}

	respondJSON(w, http.StatusOK, incident)
}

// Delete godoc
// @Summary Delete an incident
// @Description Delete a pending incident
// @Tags Incidents
// @Param id path string true "Incident ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /incidents/{id} [delete]
func (h *IncidentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid incident ID format")
		return
	}

	if err := h.incidentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete incident")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
