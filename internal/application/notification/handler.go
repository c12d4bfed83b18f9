package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/match-hub/match-hub/internal/domain/event"
	"github.com/match-hub/match-hub/internal/domain/match"
	"github.com/match-hub/match-hub/internal/domain/notification"
	"github.com/match-hub/match-hub/internal/domain/team"
)

// EventHandler turns committed match events into notifications for the
// leaders of the team concerned.
type EventHandler struct {
	service   *Service
	directory team.Directory
	logger    zerolog.Logger
}

// NewEventHandler creates a handler for the dispatcher
func NewEventHandler(service *Service, directory team.Directory, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service:   service,
		directory: directory,
		logger:    logger.With().Str("handler", "match_notification").Logger(),
	}
}

// Handle dispatches on the concrete event type
func (h *EventHandler) Handle(ctx context.Context, e event.Event) error {
	switch ev := e.(type) {
	case *event.ApplicationCreated:
		return h.handleCreated(ctx, ev)
	case *event.ApplicationProcessed:
		return h.handleProcessed(ctx, ev)
	default:
		h.logger.Warn().Str("event_type", string(e.Type())).Msg("no notification for event type")
		return nil
	}
}

func (h *EventHandler) handleCreated(ctx context.Context, ev *event.ApplicationCreated) error {
	content := fmt.Sprintf("%s applied to your match.", ev.ApplicantTeamName)
	link := "/matches/" + ev.PostID.String()
	return h.notifyLeaders(ctx, ev.OwnerTeamID, notification.TypeMatchApplication, content, link, ev)
}

func (h *EventHandler) handleProcessed(ctx context.Context, ev *event.ApplicationProcessed) error {
	var notificationType notification.Type
	var content string
	switch ev.Status {
	case match.ApplicationStatusAccepted:
		notificationType = notification.TypeMatchApplicationAccepted
		content = fmt.Sprintf("Your application to %q was accepted.", ev.PostTitle)
	case match.ApplicationStatusRejected:
		notificationType = notification.TypeMatchApplicationRejected
		content = fmt.Sprintf("Your application to %q was rejected.", ev.PostTitle)
	default:
		return fmt.Errorf("unexpected processed status %s", ev.Status)
	}
	return h.notifyLeaders(ctx, ev.ApplicantTeamID, notificationType, content, "/matches", ev)
}

func (h *EventHandler) notifyLeaders(ctx context.Context, teamID uuid.UUID, notificationType notification.Type, content, link string, e event.Event) error {
	recipients, err := h.directory.MemberUserIDs(ctx, teamID, team.LeadershipRoles)
	if err != nil {
		return fmt.Errorf("failed to resolve team leaders: %w", err)
	}
	if len(recipients) == 0 {
		h.logger.Warn().
			Str("team_id", teamID.String()).
			Str("event_id", e.ID().String()).
			Msg("team has no leaders to notify")
		return nil
	}

	created, err := h.service.CreateNotifications(ctx, recipients, notificationType, content, link)
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("event_id", e.ID().String()).
		Str("post_id", e.AggregateID().String()).
		Str("type", string(notificationType)).
		Int("count", len(created)).
		Msg("match notifications created")
	return nil
}
