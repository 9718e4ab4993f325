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

// ContractHandler handles HTTP requests for contracts and the public signing
// flow
type ContractHandler struct {
	contractService *service.ContractService
	logger          *zap.Logger
}

// NewContractHandler creates a new ContractHandler instance
func NewContractHandler(contractService *service.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Create a contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body domain.CreateContractRequest true "Contract details"
// @Success 201 {object} domain.ContractDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create contract")
		return
	}

	respondJSON(w, http.StatusCreated, contract)
}

// List godoc
// @Summary List contracts
// @Description Admins see all contracts, vendors their own, installers their installer-service contracts
// @Tags Contracts
// @Produce json
// @Success 200 {array} domain.ContractDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list contracts")
		return
	}

	respondJSON(w, http.StatusOK, contracts)
}

// GetByID godoc
// @Summary Get a contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID" format(uuid)
// @Success 200 {object} domain.ContractDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}

	contract, err := h.contractService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get contract")
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// GenerateLink godoc
// @Summary Generate a signature link
// @Description Mint a permanent or time-boxed signature link for a contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID" format(uuid)
// @Param request body domain.GenerateLinkRequest true "Link options"
// @Success 201 {object} domain.SignatureLinkDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/link [post]
func (h *ContractHandler) GenerateLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}

	var req domain.GenerateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	link, err := h.contractService.GenerateLink(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to generate signature link")
		return
	}

	respondJSON(w, http.StatusCreated, link)
}

// DeleteLink godoc
// @Summary Revoke a signature link
// @Description Revoke a contract's signature link and return it to draft
// @Tags Contracts
// @Param id path string true "Contract ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/link [delete]
func (h *ContractHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}

	if err := h.contractService.DeleteLink(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to revoke signature link")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete godoc
// @Summary Delete a contract
// @Tags Contracts
// @Param id path string true "Contract ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID format")
		return
	}

	if err := h.contractService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete contract")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FetchByToken godoc
// @Summary Get a contract by signature token
// @Description Public signer-facing view of a contract. Signed contracts are returned with isSigned set.
// @Tags Contracts
// @Produce json
// @Param token path string true "Signature token"
// @Success 200 {object} domain.PublicContractDTO
// @Failure 404 {object} domain.APIError
// @Failure 410 {object} domain.APIError
// @Router /contracts/by-token/{token} [get]
func (h *ContractHandler) FetchByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	contract, err := h.contractService.FetchByToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get contract")
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// Sign godoc
// @Summary Sign a contract
// @Description Apply a signature through a signature token
// @Tags Contracts
// @Accept json
// @Produce json
// @Param token path string true "Signature token"
// @Param request body domain.SignContractRequest true "Signature"
// @Success 200 {object} domain.PublicContractDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 410 {object} domain.APIError
// @Router /contracts/sign/{token} [post]
func (h *ContractHandler) Sign(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req domain.SignContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.Sign(r.Context(), token, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to sign contract")
		return
	}

	respondJSON(w, http.StatusOK, contract)
}
