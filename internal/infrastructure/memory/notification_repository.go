package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/domain/notification"
)

// NotificationRepository is an in-memory notification.Repository
type NotificationRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*notification.Notification
	seq   int64
}

// NewNotificationRepository creates an empty repository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[uuid.UUID]*notification.Notification)}
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range notifications {
		r.seq++
		n.ID = r.seq
		c := *n
		r.items[n.NotificationID] = &c
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.items[notificationID]; ok {
		c := *n
		return &c, nil
	}
	return nil, nil
}

func (r *NotificationRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*notification.Notification
	for _, n := range r.items {
		if n.RecipientID != filter.RecipientID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		if filter.Since != nil && n.CreatedAt.Before(*filter.Since) {
			continue
		}
		c := *n
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return page(result, limit, offset), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.items[notificationID]; ok && !n.IsRead {
		readAt := at.UTC()
		n.IsRead = true
		n.ReadAt = &readAt
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	readAt := at.UTC()
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &readAt
			count++
		}
	}
	return count, nil
}
