// Package memory provides in-process adapters for single-instance runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/domain/match"
)

type txKey struct{}

// tx records undo steps so a failed transaction leaves no trace
type tx struct {
	undo []func()
}

func (t *tx) record(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

// Store is an in-memory match.Repository and match.TxManager. Transactions
// are serialized against each other; reads made outside a transaction may
// observe writes of one still in progress.
type Store struct {
	writer chan struct{}

	mu           sync.RWMutex
	posts        map[uuid.UUID]*match.Post
	applications map[uuid.UUID]*match.Application
	seq          int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		writer:       make(chan struct{}, 1),
		posts:        make(map[uuid.UUID]*match.Post),
		applications: make(map[uuid.UUID]*match.Application),
	}
}

// WithinTx runs fn as one transaction. The transaction rolls back when fn
// fails or ctx is done by the time fn returns.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*tx); nested {
		return fn(ctx)
	}

	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("begin transaction: %w", ctx.Err())
	}
	defer func() { <-s.writer }()

	t := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.rollback(t)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.rollback(t)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.rollback()
}

// write runs fn with the map lock held, joining the caller's transaction or
// running as its own.
func (s *Store) write(ctx context.Context, fn func(t *tx) error) error {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(t)
	}
	return s.WithinTx(ctx, func(ctx context.Context) error {
		return s.write(ctx, fn)
	})
}

func (s *Store) CreatePost(ctx context.Context, post *match.Post) error {
	return s.write(ctx, func(t *tx) error {
		if _, exists := s.posts[post.PostID]; exists {
			return fmt.Errorf("match post %s already exists", post.PostID)
		}
		s.seq++
		post.ID = s.seq
		s.posts[post.PostID] = clonePost(post)
		t.record(func() { delete(s.posts, post.PostID) })
		return nil
	})
}

func (s *Store) GetPost(ctx context.Context, postID uuid.UUID) (*match.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.posts[postID]; ok {
		return clonePost(p), nil
	}
	return nil, nil
}

func (s *Store) ListPosts(ctx context.Context, filter match.PostFilter, limit, offset int) ([]*match.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []*match.Post
	for _, p := range s.posts {
		if p.IsDeleted {
			continue
		}
		if filter.TeamID != nil && p.TeamID != *filter.TeamID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.MatchAfter != nil && !p.MatchDate.After(*filter.MatchAfter) {
			continue
		}
		if filter.MatchBefore != nil && !p.MatchDate.Before(*filter.MatchBefore) {
			continue
		}
		posts = append(posts, clonePost(p))
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].MatchDate.Equal(posts[j].MatchDate) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].MatchDate.Before(posts[j].MatchDate)
	})
	return page(posts, limit, offset), nil
}

func (s *Store) UpdatePost(ctx context.Context, post *match.Post, expectedVersion int64) error {
	return s.write(ctx, func(t *tx) error {
		stored, ok := s.posts[post.PostID]
		if !ok || stored.Version != expectedVersion {
			return match.ErrStaleWrite
		}
		post.Version = expectedVersion + 1
		s.posts[post.PostID] = clonePost(post)
		t.record(func() { s.posts[post.PostID] = stored })
		return nil
	})
}

func (s *Store) CreateApplication(ctx context.Context, app *match.Application) error {
	return s.write(ctx, func(t *tx) error {
		for _, a := range s.applications {
			if a.PostID == app.PostID && a.ApplicantTeamID == app.ApplicantTeamID {
				return match.ErrDuplicateApplication
			}
		}
		s.seq++
		app.ID = s.seq
		s.applications[app.ApplicationID] = cloneApplication(app)
		t.record(func() { delete(s.applications, app.ApplicationID) })
		return nil
	})
}

func (s *Store) GetApplication(ctx context.Context, applicationID uuid.UUID) (*match.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.applications[applicationID]; ok {
		return cloneApplication(a), nil
	}
	return nil, nil
}

func (s *Store) GetApplicationByTeam(ctx context.Context, postID, teamID uuid.UUID) (*match.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if a.PostID == postID && a.ApplicantTeamID == teamID {
			return cloneApplication(a), nil
		}
	}
	return nil, nil
}

func (s *Store) ListApplications(ctx context.Context, postID uuid.UUID) ([]*match.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicationsOf(postID, nil), nil
}

func (s *Store) HasApplicationWithStatus(ctx context.Context, postID uuid.UUID, status match.ApplicationStatus) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.applicationsOf(postID, &status)) > 0, nil
}

func (s *Store) TransitionApplication(ctx context.Context, applicationID uuid.UUID, from, to match.ApplicationStatus, at time.Time) error {
	return s.write(ctx, func(t *tx) error {
		stored, ok := s.applications[applicationID]
		if !ok || stored.Status != from {
			return match.ErrStaleWrite
		}
		if to == match.ApplicationStatusAccepted {
			for _, a := range s.applications {
				if a.PostID == stored.PostID && a.Status == match.ApplicationStatusAccepted {
					return match.ErrStaleWrite
				}
			}
		}
		s.setStatus(t, stored, to, at)
		return nil
	})
}

func (s *Store) RejectPendingApplications(ctx context.Context, postID, exceptApplicationID uuid.UUID, at time.Time) ([]*match.Application, error) {
	var rejected []*match.Application
	err := s.write(ctx, func(t *tx) error {
		pending := match.ApplicationStatusPending
		for _, a := range s.applicationsOf(postID, &pending) {
			if a.ApplicationID == exceptApplicationID {
				continue
			}
			s.setStatus(t, s.applications[a.ApplicationID], match.ApplicationStatusRejected, at)
			rejected = append(rejected, cloneApplication(s.applications[a.ApplicationID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// setStatus replaces the stored application; callers hold s.mu
func (s *Store) setStatus(t *tx, stored *match.Application, to match.ApplicationStatus, at time.Time) {
	updated := cloneApplication(stored)
	updated.Status = to
	updated.UpdatedAt = at.UTC()
	s.applications[stored.ApplicationID] = updated
	t.record(func() { s.applications[stored.ApplicationID] = stored })
}

// applicationsOf returns copies ordered by creation; callers hold s.mu
func (s *Store) applicationsOf(postID uuid.UUID, status *match.ApplicationStatus) []*match.Application {
	var apps []*match.Application
	for _, a := range s.applications {
		if a.PostID != postID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		apps = append(apps, cloneApplication(a))
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}

func clonePost(p *match.Post) *match.Post {
	c := *p
	if p.AcceptedApplicationID != nil {
		id := *p.AcceptedApplicationID
		c.AcceptedApplicationID = &id
	}
	if p.PlaceName != nil {
		name := *p.PlaceName
		c.PlaceName = &name
	}
	if p.DeletedAt != nil {
		at := *p.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func cloneApplication(a *match.Application) *match.Application {
	c := *a
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
