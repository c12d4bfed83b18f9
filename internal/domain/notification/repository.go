package notification

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for notification persistence
type Repository interface {
	// CreateBatch inserts all notifications in one round trip.
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByID(ctx context.Context, notificationID uuid.UUID) (*Notification, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// Read state
	MarkRead(ctx context.Context, notificationID uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error)
}

// Pusher forwards stored notifications to the recipient's live connections.
// Delivery is best effort.
type Pusher interface {
	Push(n *Notification)
}
