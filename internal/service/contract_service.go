package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultLinkExpiryHours applies when a time-boxed link request omits the
// expiry window.
const defaultLinkExpiryHours = 72

// ContractService owns the contract signature lifecycle
type ContractService struct {
	contractRepo *repository.ContractRepository
	notifier     NotificationSink
	db           *gorm.DB
	logger       *zap.Logger
}

// NewContractService creates a new ContractService instance
func NewContractService(
	contractRepo *repository.ContractRepository,
	notifier NotificationSink,
	db *gorm.DB,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		notifier:     notifier,
		db:           db,
		logger:       logger,
	}
}

// Create creates a draft contract owned by the current user
func (s *ContractService) Create(ctx context.Context, req *domain.CreateContractRequest) (*domain.ContractDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown contract type %q", ErrInvalidInput, req.Type)
	}

	number, err := newContractNumber(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	contract := &domain.Contract{
		ContractNumber: number,
		Type:           req.Type,
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.ContractStatusDraft,
		TotalAmount:    req.TotalAmount,
		FinalPrice:     req.FinalPrice,
		ClientName:     req.ClientName,
		VendorID:       &userCtx.UserID,
		InstallerID:    req.InstallerID,
		ProjectID:      req.ProjectID,
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	s.logger.Info("contract created",
		zap.String("contractID", contract.ID.String()),
		zap.String("contractNumber", contract.ContractNumber),
		zap.String("type", string(contract.Type)),
	)

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// GenerateLink mints a signature link for a contract. Permanent links carry a
// UUID token and never expire; time-boxed links carry an opaque hex token
// and a deadline. An existing token is only replaced when regenerate is set.
func (s *ContractService) GenerateLink(ctx context.Context, id uuid.UUID, req *domain.GenerateLinkRequest) (*domain.SignatureLinkDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if contract.IsSigned {
		return nil, ErrAlreadySigned
	}

	if contract.SignatureToken != nil && !req.Regenerate {
		return nil, fmt.Errorf("%w: contract already has a signature link", ErrConflict)
	}

	var token string
	var expiresAt *time.Time

	if req.Permanent {
		token = newPermanentSignatureToken()
	} else {
		token, err = newTimedSignatureToken()
		if err != nil {
			return nil, err
		}
		hours := req.ExpiryHours
		if hours <= 0 {
			hours = defaultLinkExpiryHours
		}
		deadline := time.Now().UTC().Add(time.Duration(hours) * time.Hour)
		expiresAt = &deadline
	}

	contract.SignatureToken = &token
	contract.ExpiresAt = expiresAt
	contract.Status = domain.ContractStatusSent

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to store signature link: %w", err)
	}

	s.logger.Info("signature link generated",
		zap.String("contractID", contract.ID.String()),
		zap.Bool("permanent", req.Permanent),
		zap.Bool("regenerated", req.Regenerate),
	)

	dto := mapper.ToSignatureLinkDTO(contract)
	return &dto, nil
}

// FetchByToken returns the signer-facing contract view behind a token.
// Already-signed contracts come back 200 with isSigned set, so the signer
// page renders uniformly. A nil expiry is never expired.
func (s *ContractService) FetchByToken(ctx context.Context, token string) (*domain.PublicContractDTO, error) {
	contract, err := s.contractRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if !contract.IsSigned && contract.IsExpired(time.Now().UTC()) {
		return nil, ErrExpired
	}

	dto := mapper.ToPublicContractDTO(contract)
	return &dto, nil
}

// Sign applies a signature through a token. Signing is guarded: an already
// signed contract conflicts and keeps its original signature untouched.
func (s *ContractService) Sign(ctx context.Context, token string, req *domain.SignContractRequest) (*domain.PublicContractDTO, error) {
	contract, err := s.contractRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if contract.IsSigned {
		return nil, ErrAlreadySigned
	}

	now := time.Now().UTC()
	if contract.IsExpired(now) {
		return nil, ErrExpired
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// CAS on is_signed: a concurrent signer loses on the row count
		claim := tx.Model(&domain.Contract{}).
			Where("id = ? AND is_signed = ?", contract.ID, false).
			Updates(map[string]interface{}{
				"is_signed":      true,
				"signed_at":      now,
				"status":         domain.ContractStatusSigned,
				"signature_data": req.SignatureData,
				"signer_name":    req.SignerName,
			})
		if claim.Error != nil {
			return fmt.Errorf("failed to sign contract: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			return ErrAlreadySigned
		}

		comm := &domain.ContractCommunication{
			ContractID: contract.ID,
			Kind:       "signature",
			Message:    fmt.Sprintf("Contract signed by %s", req.SignerName),
			ActorName:  req.SignerName,
		}
		if err := tx.Create(comm).Error; err != nil {
			return fmt.Errorf("failed to record signing: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	contract.IsSigned = true
	contract.SignedAt = &now
	contract.Status = domain.ContractStatusSigned
	contract.SignatureData = req.SignatureData
	contract.SignerName = req.SignerName

	s.logger.Info("contract signed",
		zap.String("contractID", contract.ID.String()),
		zap.String("signerName", req.SignerName),
	)

	if contract.VendorID != nil {
		s.notifier.Notify(ctx, *contract.VendorID, domain.NotificationTypeContractSigned,
			"Contract signed",
			fmt.Sprintf("Contract %s was signed by %s", contract.ContractNumber, req.SignerName),
			"")
	}

	dto := mapper.ToPublicContractDTO(contract)
	return &dto, nil
}

// DeleteLink revokes a signature link. The contract survives and returns to
// draft.
func (s *ContractService) DeleteLink(ctx context.Context, id uuid.UUID) error {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get contract: %w", err)
	}

	if contract.IsSigned {
		return ErrAlreadySigned
	}

	contract.SignatureToken = nil
	contract.ExpiresAt = nil
	contract.Status = domain.ContractStatusDraft

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return fmt.Errorf("failed to revoke signature link: %w", err)
	}

	s.logger.Info("signature link revoked", zap.String("contractID", id.String()))
	return nil
}

// Delete removes a contract and its communications
func (s *ContractService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contractRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get contract: %w", err)
	}

	if err := s.contractRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	s.logger.Info("contract deleted", zap.String("contractID", id.String()))
	return nil
}

// List returns contracts scoped by role: admins see all, vendors their own,
// installers their installer-service contracts.
func (s *ContractService) List(ctx context.Context) ([]domain.ContractDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	var contracts []domain.Contract
	var err error

	switch {
	case userCtx.IsAdmin():
		contracts, err = s.contractRepo.List(ctx)
	case userCtx.Role == domain.RoleInstaller:
		contracts, err = s.contractRepo.ListByInstaller(ctx, userCtx.UserID)
	default:
		contracts, err = s.contractRepo.ListByVendor(ctx, userCtx.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	dtos := make([]domain.ContractDTO, len(contracts))
	for i, contract := range contracts {
		dtos[i] = mapper.ToContractDTO(&contract)
	}
	return dtos, nil
}

// GetByID returns a contract visible to its owner, the linked installer or
// an admin
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	owns := contract.VendorID != nil && *contract.VendorID == userCtx.UserID
	assigned := contract.InstallerID != nil && *contract.InstallerID == userCtx.UserID
	if !owns && !assigned && !userCtx.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}
