package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type represents the kind of in-app notification
type Type string

const (
	TypeMatchApplication         Type = "MATCH_APPLICATION"
	TypeMatchApplicationAccepted Type = "MATCH_APPLICATION_ACCEPTED"
	TypeMatchApplicationRejected Type = "MATCH_APPLICATION_REJECTED"
)

var titles = map[Type]string{
	TypeMatchApplication:         "Match application",
	TypeMatchApplicationAccepted: "Match accepted",
	TypeMatchApplicationRejected: "Match rejected",
}

// Title returns the display title of the notification type
func (t Type) Title() string {
	if title, ok := titles[t]; ok {
		return title
	}
	return string(t)
}

// IsValid reports whether t is a known type
func (t Type) IsValid() bool {
	_, ok := titles[t]
	return ok
}

var (
	ErrAlreadyRead = errors.New("notification already read")
	ErrNotOwner    = errors.New("notification belongs to another user")
)

// Notification is an in-app message addressed to a single user
type Notification struct {
	ID             int64      `json:"id"`
	NotificationID uuid.UUID  `json:"notificationId"`
	RecipientID    uuid.UUID  `json:"recipientId"`
	Type           Type       `json:"type"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Link           string     `json:"link"`
	IsRead         bool       `json:"isRead"`
	CreatedAt      time.Time  `json:"createdAt"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
}

// NewNotification creates an unread notification for recipientID
func NewNotification(recipientID uuid.UUID, notificationType Type, content, link string) *Notification {
	return &Notification{
		NotificationID: uuid.New(),
		RecipientID:    recipientID,
		Type:           notificationType,
		Title:          notificationType.Title(),
		Content:        content,
		Link:           link,
		CreatedAt:      time.Now().UTC(),
	}
}

// MarkRead marks the notification as read by userID
func (n *Notification) MarkRead(userID uuid.UUID, now time.Time) error {
	if n.RecipientID != userID {
		return ErrNotOwner
	}
	if n.IsRead {
		return ErrAlreadyRead
	}
	at := now.UTC()
	n.IsRead = true
	n.ReadAt = &at
	return nil
}

// Filter represents filters for querying notifications
type Filter struct {
	RecipientID uuid.UUID
	Type        *Type
	UnreadOnly  bool
	Since       *time.Time
}
