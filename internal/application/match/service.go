package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/match-hub/match-hub/internal/apperr"
	"github.com/match-hub/match-hub/internal/application/outbox"
	"github.com/match-hub/match-hub/internal/domain/lock"
	domainMatch "github.com/match-hub/match-hub/internal/domain/match"
	"github.com/match-hub/match-hub/internal/domain/team"
)

var tracer = otel.Tracer("github.com/match-hub/match-hub/internal/application/match")

// Config tunes the match use cases
type Config struct {
	Lock lock.Options
	// RejectUsesLock serializes rejections with acceptances on the post lock.
	RejectUsesLock bool
}

// Service implements match post and application use cases
type Service struct {
	repo      domainMatch.Repository
	txManager domainMatch.TxManager
	directory team.Directory
	locker    lock.Locker
	publisher *outbox.Publisher
	cfg       Config
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a new match service
func NewService(
	repo domainMatch.Repository,
	txManager domainMatch.TxManager,
	directory team.Directory,
	locker lock.Locker,
	publisher *outbox.Publisher,
	cfg Config,
	logger zerolog.Logger,
) *Service {
	s := &Service{
		repo:      repo,
		txManager: txManager,
		directory: directory,
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("service", "match").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	if s.cfg.Lock.OnReleaseError == nil {
		s.cfg.Lock.OnReleaseError = func(key string, err error) {
			s.logger.Error().Err(err).Str("lock_key", key).Msg("failed to release lock")
		}
	}
	return s
}

// AcceptApplication accepts one application of a post, closes the post and
// rejects every other pending application in the same transaction. The
// decision runs under the post lock so concurrent accepts are serialized.
// Returns the accepted team's display name.
func (s *Service) AcceptApplication(ctx context.Context, postID, applicationID, userID uuid.UUID) (string, error) {
	ctx, span := tracer.Start(ctx, "match.AcceptApplication", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
		attribute.String("application.id", applicationID.String()),
	))
	defer span.End()

	actor, err := s.requireLeadership(ctx, userID)
	if err != nil {
		return "", s.fail(span, err)
	}

	var accepted *domainMatch.Application
	var cascaded int
	err = s.decide(ctx, postID, true, func(ctx context.Context, buf *outbox.Buffer) error {
		now := s.now()

		post, err := s.loadPost(ctx, postID)
		if err != nil {
			return err
		}
		if post.IsPast(now) {
			return apperr.InvalidState("cannot accept applications for a past match")
		}
		if post.Status != domainMatch.PostStatusOpen {
			return apperr.InvalidState("match post is already closed")
		}
		if err := requirePostOwner(actor, post); err != nil {
			return err
		}

		app, err := s.loadApplication(ctx, post.PostID, applicationID)
		if err != nil {
			return err
		}
		if !app.IsPending() {
			return apperr.InvalidState("application has already been processed")
		}

		if err := app.Accept(now); err != nil {
			return err
		}
		if err := s.repo.TransitionApplication(ctx, app.ApplicationID, domainMatch.ApplicationStatusPending, domainMatch.ApplicationStatusAccepted, now); err != nil {
			return err
		}

		expectedVersion := post.Version
		if err := post.Close(app.ApplicationID, now); err != nil {
			return err
		}
		if err := s.repo.UpdatePost(ctx, post, expectedVersion); err != nil {
			return err
		}

		rejected, err := s.repo.RejectPendingApplications(ctx, post.PostID, app.ApplicationID, now)
		if err != nil {
			return fmt.Errorf("failed to reject remaining applications: %w", err)
		}

		buf.Add(newProcessed(post, app))
		for _, r := range rejected {
			buf.Add(newProcessed(post, r))
		}

		accepted = app
		cascaded = len(rejected)
		return nil
	})
	if err != nil {
		return "", s.fail(span, err)
	}

	span.SetAttributes(attribute.Int("match.cascaded_rejections", cascaded))
	s.logger.Info().
		Str("post_id", postID.String()).
		Str("application_id", applicationID.String()).
		Str("user_id", userID.String()).
		Int("cascaded_rejections", cascaded).
		Msg("match application accepted")

	return s.teamName(ctx, accepted.ApplicantTeamID), nil
}

// RejectApplication rejects a single pending application of the caller's post.
// Returns the rejected team's display name.
func (s *Service) RejectApplication(ctx context.Context, postID, applicationID, userID uuid.UUID) (string, error) {
	ctx, span := tracer.Start(ctx, "match.RejectApplication", trace.WithAttributes(
		attribute.String("post.id", postID.String()),
		attribute.String("application.id", applicationID.String()),
	))
	defer span.End()

	actor, err := s.requireLeadership(ctx, userID)
	if err != nil {
		return "", s.fail(span, err)
	}

	var rejected *domainMatch.Application
	err = s.decide(ctx, postID, s.cfg.RejectUsesLock, func(ctx context.Context, buf *outbox.Buffer) error {
		now := s.now()

		post, err := s.loadPost(ctx, postID)
		if err != nil {
			return err
		}
		if err := requirePostOwner(actor, post); err != nil {
			return err
		}

		app, err := s.loadApplication(ctx, post.PostID, applicationID)
		if err != nil {
			return err
		}
		if !app.IsPending() {
			return apperr.InvalidState("application has already been processed")
		}

		if err := app.Reject(now); err != nil {
			return err
		}
		if err := s.repo.TransitionApplication(ctx, app.ApplicationID, domainMatch.ApplicationStatusPending, domainMatch.ApplicationStatusRejected, now); err != nil {
			return err
		}

		buf.Add(newProcessed(post, app))
		rejected = app
		return nil
	})
	if err != nil {
		return "", s.fail(span, err)
	}

	s.logger.Info().
		Str("post_id", postID.String()).
		Str("application_id", applicationID.String()).
		Str("user_id", userID.String()).
		Msg("match application rejected")

	return s.teamName(ctx, rejected.ApplicantTeamID), nil
}

// decide runs fn in a transaction, optionally under the post lock, and
// publishes the buffered events after the transaction committed and the
// lock was released.
func (s *Service) decide(ctx context.Context, postID uuid.UUID, locked bool, fn func(ctx context.Context, buf *outbox.Buffer) error) error {
	buf := outbox.NewBuffer()

	var err error
	if locked {
		key := lock.MatchPostKey(postID)
		err = lock.WithLock(ctx, s.locker, key, s.cfg.Lock, func(ctx context.Context, lease *lock.Lease) error {
			trace.SpanFromContext(ctx).AddEvent("lock acquired", trace.WithAttributes(
				attribute.String("lock.key", key),
				attribute.Int64("lock.fence", lease.Fence),
			))
			return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
				if err := fn(ctx, buf); err != nil {
					return err
				}
				// Refuse to commit once the lease has lapsed; another holder may
				// already be deciding on this post.
				if lease.Expired(time.Now()) {
					return lock.ErrLeaseExpired
				}
				return nil
			})
		})
	} else {
		err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			return fn(ctx, buf)
		})
	}
	if err != nil {
		return err
	}

	s.publisher.Flush(ctx, buf)
	return nil
}

// fail maps err onto the business taxonomy and records it on the span
func (s *Service) fail(span trace.Span, err error) error {
	mapped := translate(err)
	if apperr.CodeOf(mapped) == "" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("error.code", string(apperr.CodeOf(mapped))))
	}
	return mapped
}

func translate(err error) error {
	var coded *apperr.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, lock.ErrNotAcquired):
		return apperr.Wrap(apperr.CodeLockAcquisitionFailed, "match post is busy, try again", err)
	case errors.Is(err, lock.ErrLeaseExpired):
		return apperr.Wrap(apperr.CodeLockAcquisitionFailed, "match decision timed out, try again", err)
	case errors.Is(err, domainMatch.ErrStaleWrite):
		return apperr.Wrap(apperr.CodeInvalidState, "match changed concurrently", err)
	case errors.Is(err, domainMatch.ErrInvalidTransition):
		return apperr.Wrap(apperr.CodeInvalidState, "invalid state transition", err)
	case errors.Is(err, domainMatch.ErrPostDeleted):
		return apperr.Wrap(apperr.CodeNotFound, "match post not found", err)
	case errors.Is(err, domainMatch.ErrDuplicateApplication):
		return apperr.Wrap(apperr.CodeDuplicateResource, "team already applied to this match", err)
	default:
		return err
	}
}
