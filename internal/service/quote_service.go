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

// QuoteService owns the quote lifecycle: draft, publish, public acceptance
// and the conversion of an accepted quote into a project.
type QuoteService struct {
	quoteRepo *repository.QuoteRepository
	userRepo  *repository.UserRepository
	sequences *NumberSequenceService
	notifier  NotificationSink
	db        *gorm.DB
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService instance
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	userRepo *repository.UserRepository,
	sequences *NumberSequenceService,
	notifier NotificationSink,
	db *gorm.DB,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		userRepo:  userRepo,
		sequences: sequences,
		notifier:  notifier,
		db:        db,
		logger:    logger,
	}
}

func parseTimePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp %q", ErrInvalidInput, *value)
	}
	t = t.UTC()
	return &t, nil
}

// Create creates a draft quote for the current vendor. The total is computed
// from the items once, here, and never recomputed afterwards.
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: a quote requires at least one item", ErrInvalidInput)
	}

	expiresAt, err := parseTimePtr(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quoteNumber, err := newQuoteNumber(now)
	if err != nil {
		return nil, err
	}
	token, err := newQuoteToken()
	if err != nil {
		return nil, err
	}

	var total float64
	items := make([]domain.QuoteItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.QuoteItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
		total += item.Quantity * item.UnitPrice
	}

	quote := &domain.Quote{
		QuoteNumber: quoteNumber,
		VendorID:    userCtx.UserID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		Description: req.Description,
		Status:      domain.QuoteStatusDraft,
		TotalCost:   total,
		QuoteToken:  token,
		ExpiresAt:   expiresAt,
		DownPayment: req.DownPayment,
		Notes:       req.Notes,
		Items:       items,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("quoteID", quote.ID.String()),
		zap.String("quoteNumber", quote.QuoteNumber),
		zap.String("vendorID", userCtx.UserID.String()),
		zap.Float64("totalCost", total),
	)

	s.notifier.Notify(ctx, userCtx.UserID, domain.NotificationTypeQuoteCreated,
		"Quote created",
		fmt.Sprintf("Quote %s for %s was created", quote.QuoteNumber, quote.ClientName),
		"")

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// ListForVendor returns the current vendor's quotes with an optional status
// filter. Admins see the same view of their own quotes; cross-vendor listing
// is not exposed.
func (s *QuoteService) ListForVendor(ctx context.Context, status *domain.QuoteStatus) ([]domain.QuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
	}

	quotes, err := s.quoteRepo.ListByVendor(ctx, userCtx.UserID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i, quote := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quote)
	}
	return dtos, nil
}

// ListPublished returns the client-facing view of published, unexpired quotes
func (s *QuoteService) ListPublished(ctx context.Context) ([]domain.PublicQuoteDTO, error) {
	quotes, err := s.quoteRepo.ListPublished(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list published quotes: %w", err)
	}

	dtos := make([]domain.PublicQuoteDTO, len(quotes))
	for i, quote := range quotes {
		dtos[i] = mapper.ToPublicQuoteDTO(&quote)
	}
	return dtos, nil
}

// GetByID returns a quote visible to its owning vendor or an admin
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.VendorID != userCtx.UserID && !userCtx.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetPublicByToken returns the public view behind a quote token. Only
// published and accepted quotes are visible; a published quote past its
// expiry is flipped to expired on this read path before reporting 410.
func (s *QuoteService) GetPublicByToken(ctx context.Context, token string) (*domain.PublicQuoteDTO, error) {
	quote, err := s.quoteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch quote.Status {
	case domain.QuoteStatusPublished:
		if quote.ExpiresAt != nil && quote.ExpiresAt.Before(time.Now().UTC()) {
			if err := s.quoteRepo.MarkExpired(ctx, quote.ID); err != nil {
				s.logger.Error("failed to expire quote", zap.String("quoteID", quote.ID.String()), zap.Error(err))
			}
			return nil, ErrExpired
		}
	case domain.QuoteStatusAccepted:
		// Visible after acceptance so the client can revisit the page
	case domain.QuoteStatusExpired:
		return nil, ErrExpired
	default:
		return nil, ErrNotFound
	}

	dto := mapper.ToPublicQuoteDTO(quote)
	return &dto, nil
}

// UpdateStatus moves a quote through the transition table. The deleted
// target removes the record through the same validated path.
func (s *QuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, target domain.QuoteStatus) (*domain.QuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.VendorID != userCtx.UserID {
		return nil, ErrPermissionDenied
	}

	if !quote.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, quote.Status, target)
	}

	oldStatus := quote.Status

	if target == domain.QuoteStatusDeleted {
		if err := s.quoteRepo.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete quote: %w", err)
		}
		s.logger.Info("quote deleted",
			zap.String("quoteID", id.String()),
			zap.String("oldStatus", string(oldStatus)),
		)
		return nil, nil
	}

	if err := s.quoteRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}
	quote.Status = target

	s.logger.Info("quote status changed",
		zap.String("quoteID", id.String()),
		zap.String("oldStatus", string(oldStatus)),
		zap.String("newStatus", string(target)),
	)

	s.notifier.Notify(ctx, userCtx.UserID, domain.NotificationTypeQuoteStatusChanged,
		"Quote status changed",
		fmt.Sprintf("Quote %s moved from %s to %s", quote.QuoteNumber, oldStatus, target),
		"")

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Update edits client fields and notes on a draft or published quote.
// Items and the stored total are untouched.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.VendorID != userCtx.UserID {
		return nil, ErrPermissionDenied
	}

	if quote.Status != domain.QuoteStatusDraft && quote.Status != domain.QuoteStatusPublished {
		return nil, fmt.Errorf("%w: quote is %s", ErrConflict, quote.Status)
	}

	expiresAt, err := parseTimePtr(req.ExpiresAt)
	if err != nil {
		return nil, err
	}

	quote.ClientName = req.ClientName
	quote.ClientEmail = req.ClientEmail
	quote.ClientPhone = req.ClientPhone
	quote.Description = req.Description
	quote.DownPayment = req.DownPayment
	quote.Notes = req.Notes
	if req.ExpiresAt != nil {
		quote.ExpiresAt = expiresAt
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Delete removes a quote through the validated transition path
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.UpdateStatus(ctx, id, domain.QuoteStatusDeleted)
	return err
}

// AcceptPublic converts a published quote into a project from the public
// acceptance page. A nil req leaves the project's down payment status empty.
// The whole conversion runs in one transaction guarded by a compare-and-swap
// on the published status, so two concurrent accepts can never both succeed
// or create two projects.
func (s *QuoteService) AcceptPublic(ctx context.Context, token string, req *domain.AcceptQuoteRequest) (*domain.AcceptQuoteResponse, error) {
	quote, err := s.quoteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	now := time.Now().UTC()

	switch quote.Status {
	case domain.QuoteStatusPublished:
		if quote.ExpiresAt != nil && quote.ExpiresAt.Before(now) {
			if err := s.quoteRepo.MarkExpired(ctx, quote.ID); err != nil {
				s.logger.Error("failed to expire quote", zap.String("quoteID", quote.ID.String()), zap.Error(err))
			}
			return nil, ErrExpired
		}
	case domain.QuoteStatusExpired:
		return nil, ErrExpired
	case domain.QuoteStatusAccepted:
		return nil, fmt.Errorf("%w: quote already accepted", ErrConflict)
	default:
		return nil, ErrNotFound
	}

	invoiceNumber, err := s.sequences.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		ProjectName:       fmt.Sprintf("Project for quote %s", quote.QuoteNumber),
		InvoiceNumber:     invoiceNumber,
		ClientName:        quote.ClientName,
		Status:            domain.ProjectStatusApproved,
		TotalCost:         quote.TotalCost,
		CreatedByID:       quote.VendorID,
		ApprovedByName:    "system",
		QuoteID:           &quote.ID,
		DownPaymentAmount: quote.DownPayment,
	}
	if req != nil {
		project.DownPaymentStatus = req.DownPaymentStatus
	}

	items := make([]domain.ProjectItem, len(quote.Items))
	for i, item := range quote.Items {
		items[i] = domain.ProjectItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	project.Items = items

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim the quote first. Zero rows means someone else got here
		// between our read and now.
		claim := tx.Model(&domain.Quote{}).
			Where("id = ? AND status = ?", quote.ID, domain.QuoteStatusPublished).
			Updates(map[string]interface{}{
				"status":      domain.QuoteStatusAccepted,
				"accepted_at": now,
			})
		if claim.Error != nil {
			return fmt.Errorf("failed to accept quote: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			return fmt.Errorf("%w: quote already accepted", ErrConflict)
		}

		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		history := &domain.ProjectHistory{
			ProjectID: project.ID,
			Status:    string(domain.ProjectStatusApproved),
			Comment:   fmt.Sprintf("Created from accepted quote %s", quote.QuoteNumber),
			UserName:  "system",
			Action:    "created",
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record project history: %w", err)
		}

		if err := tx.Model(&domain.Quote{}).
			Where("id = ?", quote.ID).
			Update("project_id", project.ID).Error; err != nil {
			return fmt.Errorf("failed to link project to quote: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	quote.Status = domain.QuoteStatusAccepted
	quote.AcceptedAt = &now
	quote.ProjectID = &project.ID

	s.logger.Info("quote accepted",
		zap.String("quoteID", quote.ID.String()),
		zap.String("projectID", project.ID.String()),
		zap.String("invoiceNumber", invoiceNumber),
	)

	s.notifier.Notify(ctx, quote.VendorID, domain.NotificationTypeQuoteAccepted,
		"Quote accepted",
		fmt.Sprintf("Quote %s was accepted by the client; project %s created", quote.QuoteNumber, invoiceNumber),
		"")

	if admins, err := s.userRepo.ListAdmins(ctx); err == nil {
		ids := make([]uuid.UUID, 0, len(admins))
		for _, admin := range admins {
			ids = append(ids, admin.ID)
		}
		s.notifier.NotifyMany(ctx, ids, domain.NotificationTypeQuoteAccepted,
			"Quote accepted",
			fmt.Sprintf("Quote %s was accepted; project %s awaits scheduling", quote.QuoteNumber, invoiceNumber),
			"")
	} else {
		s.logger.Warn("failed to load admins for notification", zap.Error(err))
	}

	quoteDTO := mapper.ToQuoteDTO(quote)
	projectDTO := mapper.ToProjectDTO(project)
	return &domain.AcceptQuoteResponse{
		Quote:   &quoteDTO,
		Project: &projectDTO,
	}, nil
}
