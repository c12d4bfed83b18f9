package match

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/domain/event"
	domainMatch "github.com/match-hub/match-hub/internal/domain/match"
	"github.com/match-hub/match-hub/internal/domain/team"
)

// Actor is the caller acting on behalf of their team
type Actor struct {
	UserID uuid.UUID
	TeamID uuid.UUID
	Role   team.Role
}

// ResolveActor looks up the caller's team membership
func (s *Service) ResolveActor(ctx context.Context, userID uuid.UUID) (*Actor, error) {
	if userID == uuid.Nil {
		return nil, apperr.New(apperr.CodeUnauthorized, "caller is not identified")
	}
	member, err := s.directory.MembershipOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team membership: %w", err)
	}
	if member == nil {
		return nil, apperr.Forbidden("user does not belong to a team")
	}
	return &Actor{UserID: userID, TeamID: member.TeamID, Role: member.Role}, nil
}

// requireLeadership resolves the caller and checks they lead their team
func (s *Service) requireLeadership(ctx context.Context, userID uuid.UUID) (*Actor, error) {
	actor, err := s.ResolveActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManageMatches() {
		return nil, apperr.Forbidden("only team leaders can manage matches")
	}
	return actor, nil
}

func requirePostOwner(actor *Actor, post *domainMatch.Post) error {
	if !post.OwnedBy(actor.TeamID) {
		return apperr.Forbidden("match post belongs to another team")
	}
	return nil
}

// loadPost returns a live post or NotFound
func (s *Service) loadPost(ctx context.Context, postID uuid.UUID) (*domainMatch.Post, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match post: %w", err)
	}
	if post == nil || post.IsDeleted {
		return nil, apperr.NotFound("match post not found")
	}
	return post, nil
}

// loadApplication returns an application of postID or NotFound
func (s *Service) loadApplication(ctx context.Context, postID, applicationID uuid.UUID) (*domainMatch.Application, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match application: %w", err)
	}
	if app == nil || app.PostID != postID {
		return nil, apperr.NotFound("match application not found")
	}
	return app, nil
}

// teamName resolves a display name, falling back to the id when the
// directory cannot answer. Callers use it after commit.
func (s *Service) teamName(ctx context.Context, teamID uuid.UUID) string {
	t, err := s.directory.GetTeam(ctx, teamID)
	if err != nil {
		s.logger.Warn().Err(err).Str("team_id", teamID.String()).Msg("failed to resolve team name")
		return teamID.String()
	}
	if t == nil {
		return teamID.String()
	}
	return t.Name
}

func newProcessed(post *domainMatch.Post, app *domainMatch.Application) event.Event {
	return event.NewApplicationProcessed(post, app)
}
