// Package sse fans stored notifications out to open event-stream connections.
package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/match-hub/match-hub/internal/domain/notification"
)

const (
	EventNotification = "notification"
	clientBuffer      = 32
)

// Client is one open stream of a user.
type Client struct {
	ClientID    string
	UserID      uuid.UUID
	ConnectedAt time.Time
	Messages    chan *Message

	closeOnce sync.Once
}

func NewClient(userID uuid.UUID) *Client {
	return &Client{
		ClientID:    uuid.NewString(),
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		Messages:    make(chan *Message, clientBuffer),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.Messages) })
}

// Message is one server-sent event
type Message struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMessage(event string, data json.RawMessage) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Hub manages SSE clients. It implements notification.Pusher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger.With().Str("component", "sse").Logger(),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ClientID] = client
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[clientID]; ok {
		c.close()
		delete(h.clients, clientID)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToUser offers msg to every stream of userID and returns how many took
// it. A stream whose buffer is full misses the message.
func (h *Hub) SendToUser(userID uuid.UUID, msg *Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, c := range h.clients {
		if c.UserID != userID {
			continue
		}
		if trySend(c, msg) {
			sent++
		} else {
			h.logger.Warn().Str("client_id", c.ClientID).Msg("sse client buffer full, message dropped")
		}
	}
	return sent
}

// Push implements notification.Pusher.
func (h *Hub) Push(n *notification.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error().Err(err).Str("notification_id", n.NotificationID.String()).Msg("failed to encode notification")
		return
	}
	h.SendToUser(n.RecipientID, NewMessage(EventNotification, data))
}

// Stop closes every stream.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

func trySend(c *Client, msg *Message) bool {
	select {
	case c.Messages <- msg:
		return true
	default:
		return false
	}
}
