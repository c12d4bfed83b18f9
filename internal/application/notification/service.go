package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/domain/notification"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service handles notification operations
type Service struct {
	notificationRepo notification.Repository
	pusher           notification.Pusher
	logger           zerolog.Logger
	now              func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithPusher forwards every stored notification to p
func WithPusher(p notification.Pusher) Option {
	return func(s *Service) { s.pusher = p }
}

// NewService creates a new notification service
func NewService(notificationRepo notification.Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		notificationRepo: notificationRepo,
		logger:           logger.With().Str("service", "notification").Logger(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNotifications stores one notification per recipient in a single batch.
// Duplicate recipients receive one notification.
func (s *Service) CreateNotifications(ctx context.Context, recipientIDs []uuid.UUID, notificationType notification.Type, content, link string) ([]*notification.Notification, error) {
	if !notificationType.IsValid() {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown notification type %q", notificationType))
	}
	if len(recipientIDs) == 0 {
		return nil, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(recipientIDs))
	batch := make([]*notification.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		batch = append(batch, notification.NewNotification(id, notificationType, content, link))
	}
	if len(batch) == 0 {
		return nil, nil
	}

	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}

	s.logger.Info().
		Str("type", string(notificationType)).
		Int("count", len(batch)).
		Msg("notifications stored")

	if s.pusher != nil {
		for _, n := range batch {
			s.pusher.Push(n)
		}
	}
	return batch, nil
}

// List returns the caller's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	filter := notification.Filter{RecipientID: userID, UnreadOnly: unreadOnly}
	items, err := s.notificationRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

// UnreadCount returns how many notifications the caller has not read
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead marks one of the caller's notifications as read. Marking an
// already read notification succeeds without change.
func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return fmt.Errorf("failed to get notification: %w", err)
	}
	if n == nil {
		return apperr.NotFound("notification not found")
	}

	now := s.now()
	if err := n.MarkRead(userID, now); err != nil {
		switch {
		case errors.Is(err, notification.ErrAlreadyRead):
			return nil
		case errors.Is(err, notification.ErrNotOwner):
			// Do not reveal other users' notifications.
			return apperr.NotFound("notification not found")
		default:
			return err
		}
	}

	if err := s.notificationRepo.MarkRead(ctx, notificationID, now); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification of the caller as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.logger.Debug().Str("user_id", userID.String()).Int64("count", count).Msg("notifications marked read")
	return count, nil
}
