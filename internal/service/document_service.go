package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"github.com/monterra-as/installer-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService manages files attached to contracts. Bytes live in the
// storage backend, metadata in the database.
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	contractRepo *repository.ContractRepository
	store        storage.Storage
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	contractRepo *repository.ContractRepository,
	store storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		contractRepo: contractRepo,
		store:        store,
		logger:       logger,
	}
}

func (s *DocumentService) loadContract(ctx context.Context, contractID uuid.UUID) (*domain.Contract, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	contract, err := s.contractRepo.GetByID(ctx, contractID)
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

	return contract, nil
}

// Upload stores a file and attaches its metadata to a contract
func (s *DocumentService) Upload(ctx context.Context, contractID uuid.UUID, filename, contentType string, data io.Reader) (*domain.DocumentDTO, error) {
	contract, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &domain.Document{
		ContractID:  contract.ID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Orphaned bytes are worse than a failed upload
		if cleanupErr := s.store.Delete(ctx, storagePath); cleanupErr != nil {
			s.logger.Warn("failed to clean up stored document after metadata failure",
				zap.String("storagePath", storagePath),
				zap.Error(cleanupErr),
			)
		}
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("documentID", doc.ID.String()),
		zap.String("contractID", contract.ID.String()),
		zap.String("filename", filename),
		zap.Int64("size", size),
	)

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// Download opens a document stream for a contract the caller can see. The
// caller owns closing the reader.
func (s *DocumentService) Download(ctx context.Context, contractID, documentID uuid.UUID) (*domain.Document, io.ReadCloser, error) {
	if _, err := s.loadContract(ctx, contractID); err != nil {
		return nil, nil, err
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc.ContractID != contractID {
		return nil, nil, ErrNotFound
	}

	reader, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}

	return doc, reader, nil
}

// List returns the documents attached to a contract
func (s *DocumentService) List(ctx context.Context, contractID uuid.UUID) ([]domain.DocumentDTO, error) {
	if _, err := s.loadContract(ctx, contractID); err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.DocumentDTO, len(docs))
	for i, doc := range docs {
		dtos[i] = mapper.ToDocumentDTO(&doc)
	}
	return dtos, nil
}

// Delete removes a document's metadata and its stored bytes
func (s *DocumentService) Delete(ctx context.Context, contractID, documentID uuid.UUID) error {
	if _, err := s.loadContract(ctx, contractID); err != nil {
		return err
	}

	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}
	if doc.ContractID != contractID {
		return ErrNotFound
	}

	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document metadata: %w", err)
	}

	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored document",
			zap.String("documentID", documentID.String()),
			zap.String("storagePath", doc.StoragePath),
			zap.Error(err),
		)
	}

	s.logger.Info("document deleted",
		zap.String("documentID", documentID.String()),
		zap.String("contractID", contractID.String()),
	)
	return nil
}
