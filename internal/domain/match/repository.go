package match

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository,TxManager

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for match post and application persistence.
// Lookups return (nil, nil) when the row does not exist. Calls made with a
// context produced by TxManager.WithinTx join that transaction.
type Repository interface {
	// Post operations
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, postID uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context, filter PostFilter, limit, offset int) ([]*Post, error)
	// UpdatePost writes post if its stored version still equals expectedVersion
	// and bumps post.Version. Returns ErrStaleWrite otherwise.
	UpdatePost(ctx context.Context, post *Post, expectedVersion int64) error

	// Application operations
	// CreateApplication returns ErrDuplicateApplication when the team already
	// holds an application for the post.
	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, applicationID uuid.UUID) (*Application, error)
	GetApplicationByTeam(ctx context.Context, postID, teamID uuid.UUID) (*Application, error)
	ListApplications(ctx context.Context, postID uuid.UUID) ([]*Application, error)
	HasApplicationWithStatus(ctx context.Context, postID uuid.UUID, status ApplicationStatus) (bool, error)
	// TransitionApplication moves one application from -> to. Returns
	// ErrStaleWrite when the stored status is no longer from.
	TransitionApplication(ctx context.Context, applicationID uuid.UUID, from, to ApplicationStatus, at time.Time) error
	// RejectPendingApplications rejects every PENDING application of the post
	// except the given one and returns the rows it actually changed.
	RejectPendingApplications(ctx context.Context, postID, exceptApplicationID uuid.UUID, at time.Time) ([]*Application, error)
}

// TxManager runs fn inside a single store transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
