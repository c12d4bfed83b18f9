package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/match-hub/match-hub/internal/infrastructure/sse"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	limit, offset := parseLimitOffset(r, 20, 100)
	items, err := s.notificationSvc.List(r.Context(), callerID(r), unreadOnly, limit, offset)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.notificationSvc.UnreadCount(r.Context(), callerID(r))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "notificationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT_VALUE", "invalid notificationId")
		return
	}
	if err := s.notificationSvc.MarkAsRead(r.Context(), callerID(r), id); err != nil {
		respondAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := s.notificationSvc.MarkAllAsRead(r.Context(), callerID(r))
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// streamNotifications pushes the caller's new notifications as server-sent
// events until the client disconnects or the hub stops.
func (s *Server) streamNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}

	client := sse.NewClient(callerID(r))
	s.stream.Register(client)
	defer s.stream.Unregister(client.ClientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case msg, ok := <-client.Messages:
			if !ok {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("failed to encode stream message")
				continue
			}
			_, _ = w.Write([]byte("event: " + msg.Event + "\nid: " + msg.ID + "\ndata: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
