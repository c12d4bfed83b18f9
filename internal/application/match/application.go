package match

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/application/outbox"
	"github.com/match-hub/match-hub/internal/domain/event"
	domainMatch "github.com/match-hub/match-hub/internal/domain/match"
)

const maxMessageLength = 500

// ApplyToMatch submits the caller's team as an opponent for a post
func (s *Service) ApplyToMatch(ctx context.Context, postID, userID uuid.UUID, message string) (*domainMatch.Application, error) {
	ctx, span := tracer.Start(ctx, "match.ApplyToMatch", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
	))
	defer span.End()

	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, s.fail(span, apperr.InvalidInput("message is too long"))
	}

	actor, err := s.requireLeadership(ctx, userID)
	if err != nil {
		return nil, s.fail(span, err)
	}

	var created *domainMatch.Application
	err = s.publisher.Transact(ctx, func(ctx context.Context, buf *outbox.Buffer) error {
		post, err := s.loadPost(ctx, postID)
		if err != nil {
			return err
		}
		if post.Status != domainMatch.PostStatusOpen {
			return apperr.InvalidState("match post is closed")
		}
		if post.IsPast(s.now()) {
			return apperr.InvalidState("match date has passed")
		}
		if post.OwnedBy(actor.TeamID) {
			return apperr.InvalidInput("cannot apply to your own team's match post")
		}

		app := domainMatch.NewApplication(post.PostID, actor.TeamID, message)
		// Uniqueness of (post, team) is enforced by the store.
		if err := s.repo.CreateApplication(ctx, app); err != nil {
			return err
		}

		buf.Add(event.NewApplicationCreated(post, app, s.teamName(ctx, actor.TeamID)))
		created = app
		return nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.logger.Info().
		Str("post_id", postID.String()).
		Str("application_id", created.ApplicationID.String()).
		Str("team_id", actor.TeamID.String()).
		Msg("match application created")

	return created, nil
}

// CancelApplication withdraws the caller's team's pending application
func (s *Service) CancelApplication(ctx context.Context, postID, userID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "match.CancelApplication", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
	))
	defer span.End()

	actor, err := s.requireLeadership(ctx, userID)
	if err != nil {
		return s.fail(span, err)
	}

	err = s.publisher.Transact(ctx, func(ctx context.Context, _ *outbox.Buffer) error {
		post, err := s.loadPost(ctx, postID)
		if err != nil {
			return err
		}

		app, err := s.repo.GetApplicationByTeam(ctx, post.PostID, actor.TeamID)
		if err != nil {
			return err
		}
		if app == nil {
			return apperr.NotFound("match application not found")
		}
		if !app.IsPending() {
			return apperr.InvalidState("only pending applications can be cancelled")
		}

		now := s.now()
		if err := app.Cancel(now); err != nil {
			return err
		}
		return s.repo.TransitionApplication(ctx, app.ApplicationID, domainMatch.ApplicationStatusPending, domainMatch.ApplicationStatusCancelled, now)
	})
	if err != nil {
		return s.fail(span, err)
	}

	s.logger.Info().
		Str("post_id", postID.String()).
		Str("team_id", actor.TeamID.String()).
		Msg("match application cancelled")
	return nil
}

// ListApplicants returns every application of the caller's post with the
// applying team's name
func (s *Service) ListApplicants(ctx context.Context, postID, userID uuid.UUID) ([]*domainMatch.Applicant, error) {
	actor, err := s.ResolveActor(ctx, userID)
	if err != nil {
		return nil, err
	}

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := requirePostOwner(actor, post); err != nil {
		return nil, err
	}

	apps, err := s.repo.ListApplications(ctx, post.PostID)
	if err != nil {
		return nil, err
	}

	teamIDs := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		teamIDs = append(teamIDs, a.ApplicantTeamID)
	}
	teams, err := s.directory.GetTeams(ctx, teamIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*domainMatch.Applicant, 0, len(apps))
	for _, a := range apps {
		name := a.ApplicantTeamID.String()
		if t, ok := teams[a.ApplicantTeamID]; ok && t != nil {
			name = t.Name
		}
		result = append(result, &domainMatch.Applicant{
			ApplicationID:   a.ApplicationID,
			ApplicantTeamID: a.ApplicantTeamID,
			TeamName:        name,
			Message:         a.Message,
			Status:          a.Status,
			AppliedAt:       a.CreatedAt,
		})
	}
	return result, nil
}
