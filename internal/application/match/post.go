package match

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/apperr"
	domainMatch "github.com/match-hub/match-hub/internal/domain/match"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RegisterPostInput is the payload for publishing a match post
type RegisterPostInput struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MatchDate time.Time `json:"matchDate"`
	Address   string    `json:"address"`
	PlaceName *string   `json:"placeName,omitempty"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
}

// Validate checks the input against the post constraints at now
func (in RegisterPostInput) Validate(now time.Time) error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "" || utf8.RuneCountInString(title) > 100:
		return apperr.InvalidInput("title must be between 1 and 100 characters")
	case strings.TrimSpace(in.Content) == "":
		return apperr.InvalidInput("content is required")
	case in.MatchDate.IsZero() || !in.MatchDate.After(now):
		return apperr.InvalidInput("match date must be in the future")
	case in.Lat < -90 || in.Lat > 90:
		return apperr.InvalidInput("lat must be between -90 and 90")
	case in.Lng < -180 || in.Lng > 180:
		return apperr.InvalidInput("lng must be between -180 and 180")
	case strings.TrimSpace(in.Address) == "" || utf8.RuneCountInString(in.Address) > 255:
		return apperr.InvalidInput("address must be between 1 and 255 characters")
	case in.PlaceName != nil && utf8.RuneCountInString(*in.PlaceName) > 120:
		return apperr.InvalidInput("place name must be at most 120 characters")
	}
	return nil
}

// RegisterPost publishes a new open match post for the caller's team
func (s *Service) RegisterPost(ctx context.Context, userID uuid.UUID, in RegisterPostInput) (*domainMatch.Post, error) {
	actor, err := s.requireLeadership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}

	post := domainMatch.NewPost(actor.TeamID, strings.TrimSpace(in.Title), in.Content, in.MatchDate, in.Address, in.PlaceName, in.Lat, in.Lng)
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create match post: %w", err)
	}

	s.logger.Info().
		Str("post_id", post.PostID.String()).
		Str("team_id", actor.TeamID.String()).
		Time("match_date", post.MatchDate).
		Msg("match post registered")

	return post, nil
}

// DeletePost soft-deletes the caller's post while it has no pending applications
func (s *Service) DeletePost(ctx context.Context, postID, userID uuid.UUID) error {
	actor, err := s.requireLeadership(ctx, userID)
	if err != nil {
		return err
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		post, err := s.loadPost(ctx, postID)
		if err != nil {
			return err
		}
		if err := requirePostOwner(actor, post); err != nil {
			return err
		}

		pending, err := s.repo.HasApplicationWithStatus(ctx, post.PostID, domainMatch.ApplicationStatusPending)
		if err != nil {
			return fmt.Errorf("failed to check pending applications: %w", err)
		}
		if pending {
			return apperr.InvalidState("cannot delete a match post with pending applications")
		}

		expectedVersion := post.Version
		if err := post.SoftDelete(s.now()); err != nil {
			return err
		}
		return s.repo.UpdatePost(ctx, post, expectedVersion)
	})
	if err != nil {
		return translate(err)
	}

	s.logger.Info().Str("post_id", postID.String()).Str("user_id", userID.String()).Msg("match post deleted")
	return nil
}

// GetPost returns a live match post
func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (*domainMatch.Post, error) {
	return s.loadPost(ctx, postID)
}

// ListOpenPosts returns open upcoming posts ordered by match date. teamID
// narrows the listing to one team when set.
func (s *Service) ListOpenPosts(ctx context.Context, teamID *uuid.UUID, limit, offset int) ([]*domainMatch.Post, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	open := domainMatch.PostStatusOpen
	now := s.now()
	posts, err := s.repo.ListPosts(ctx, domainMatch.PostFilter{
		TeamID:     teamID,
		Status:     &open,
		MatchAfter: &now,
	}, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list match posts: %w", err)
	}
	return posts, nil
}
