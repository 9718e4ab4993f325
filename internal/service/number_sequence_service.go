package service

import (
	"context"
	"fmt"
	"time"

	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
)

// Sequence scopes. Projects number per year, incidents globally (the year
// column is fixed at zero for global scopes).
const (
	SequenceScopeProject  = "project"
	SequenceScopeIncident = "incident"
)

// NumberSequenceService hands out human-readable sequential numbers
type NumberSequenceService struct {
	sequenceRepo *repository.NumberSequenceRepository
	logger       *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService instance
func NewNumberSequenceService(
	sequenceRepo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// NextInvoiceNumber returns the next project invoice number (PRJ-YYYY-NNNN)
func (s *NumberSequenceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	seq, err := s.sequenceRepo.GetNextNumber(ctx, SequenceScopeProject, year)
	if err != nil {
		return "", fmt.Errorf("failed to get next invoice number: %w", err)
	}

	number := formatInvoiceNumber(year, seq)
	s.logger.Debug("invoice number assigned", zap.String("number", number))
	return number, nil
}

// NextIncidentNumber returns the next incident number (INC-NNNNN)
func (s *NumberSequenceService) NextIncidentNumber(ctx context.Context) (string, error) {
	seq, err := s.sequenceRepo.GetNextNumber(ctx, SequenceScopeIncident, 0)
	if err != nil {
		return "", fmt.Errorf("failed to get next incident number: %w", err)
	}

	number := formatIncidentNumber(seq)
	s.logger.Debug("incident number assigned", zap.String("number", number))
	return number, nil
}
