package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/auth"
	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/mapper"
	"github.com/monterra-as/installer-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationSink receives notifications emitted as lifecycle side effects.
// The synchronous implementation below writes straight to the feed table;
// the interface keeps the emitting services decoupled from delivery.
type NotificationSink interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType domain.NotificationType, title, message, data string)
	NotifyMany(ctx context.Context, userIDs []uuid.UUID, notificationType domain.NotificationType, title, message, data string)
}

// NotificationService handles the per-user notification feed
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify creates a feed entry for one user. Delivery failures are logged and
// swallowed; notifications never fail the lifecycle operation that emitted
// them.
func (s *NotificationService) Notify(
	ctx context.Context,
	userID uuid.UUID,
	notificationType domain.NotificationType,
	title, message, data string,
) {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    string(notificationType),
		Title:   title,
		Message: message,
		Data:    data,
		Read:    false,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification",
			zap.String("userID", userID.String()),
			zap.String("type", string(notificationType)),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("notification created",
		zap.String("notificationID", notification.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("type", string(notificationType)),
	)
}

// NotifyMany creates the same feed entry for several users
func (s *NotificationService) NotifyMany(
	ctx context.Context,
	userIDs []uuid.UUID,
	notificationType domain.NotificationType,
	title, message, data string,
) {
	if len(userIDs) == 0 {
		return
	}

	notifications := make([]domain.Notification, len(userIDs))
	for i, userID := range userIDs {
		notifications[i] = domain.Notification{
			UserID:  userID,
			Type:    string(notificationType),
			Title:   title,
			Message: message,
			Data:    data,
			Read:    false,
		}
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Warn("failed to create notification batch",
			zap.Int("count", len(userIDs)),
			zap.String("type", string(notificationType)),
			zap.Error(err),
		)
	}
}

// GetForCurrentUser returns notifications for the current user with pagination
func (s *NotificationService) GetForCurrentUser(
	ctx context.Context,
	page int,
	pageSize int,
	unreadOnly bool,
) (*domain.PaginatedResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	// Clamp page size
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	notifications, total, err := s.notificationRepo.ListByUser(ctx, userCtx.UserID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i, notification := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notification)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// getOwned loads a notification and verifies it belongs to the current user
func (s *NotificationService) getOwned(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != userCtx.UserID {
		return nil, ErrPermissionDenied
	}

	return notification, nil
}

// MarkAsRead marks a notification as read. Idempotent.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	notification, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}

	if notification.Read {
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAsUnread marks a notification as unread. Idempotent.
func (s *NotificationService) MarkAsUnread(ctx context.Context, id uuid.UUID) error {
	notification, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}

	if !notification.Read {
		return nil
	}

	if err := s.notificationRepo.MarkAsUnread(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification as unread: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every notification for the current user as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	if err := s.notificationRepo.MarkAllAsRead(ctx, userCtx.UserID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	s.logger.Info("all notifications marked as read",
		zap.String("userID", userCtx.UserID.String()),
	)
	return nil
}

// Delete removes a notification owned by the current user
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, id); err != nil {
		return err
	}

	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notifications for the current user
func (s *NotificationService) GetUnreadCount(ctx context.Context) (*domain.UnreadCountDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	count, err := s.notificationRepo.CountUnread(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &domain.UnreadCountDTO{Count: count}, nil
}
