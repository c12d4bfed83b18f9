package match

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the lifecycle state of a match post
type PostStatus string

const (
	PostStatusOpen   PostStatus = "OPEN"
	PostStatusClosed PostStatus = "CLOSED"
)

// ApplicationStatus represents the lifecycle state of a match application
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "PENDING"
	ApplicationStatusAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
	ApplicationStatusCancelled ApplicationStatus = "CANCELLED"
)

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrPostDeleted          = errors.New("match post is deleted")
	ErrDuplicateApplication = errors.New("team already applied to this match post")
	// ErrStaleWrite is returned by conditional writes whose precondition
	// (expected status or version) no longer holds.
	ErrStaleWrite = errors.New("row changed since it was read")
)

var postTransitions = map[PostStatus][]PostStatus{
	PostStatusOpen:   {PostStatusClosed},
	PostStatusClosed: {},
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:   {ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusCancelled},
	ApplicationStatusAccepted:  {},
	ApplicationStatusRejected:  {},
	ApplicationStatusCancelled: {},
}

// CanTransitionTo checks if a post transition to target is legal
func (s PostStatus) CanTransitionTo(target PostStatus) bool {
	for _, allowed := range postTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanTransitionTo checks if an application transition to target is legal
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true when no further transition is possible
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// Post is a match proposal published by a team looking for an opponent
type Post struct {
	ID                    int64      `json:"id"`
	PostID                uuid.UUID  `json:"postId"`
	TeamID                uuid.UUID  `json:"teamId"`
	Title                 string     `json:"title"`
	Content               string     `json:"content"`
	MatchDate             time.Time  `json:"matchDate"`
	Address               string     `json:"address"`
	PlaceName             *string    `json:"placeName,omitempty"`
	Lat                   float64    `json:"lat"`
	Lng                   float64    `json:"lng"`
	Status                PostStatus `json:"status"`
	AcceptedApplicationID *uuid.UUID `json:"acceptedApplicationId,omitempty"`
	IsDeleted             bool       `json:"-"`
	Version               int64      `json:"version"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	DeletedAt             *time.Time `json:"-"`
}

// NewPost creates an open match post owned by teamID
func NewPost(teamID uuid.UUID, title, content string, matchDate time.Time, address string, placeName *string, lat, lng float64) *Post {
	now := time.Now().UTC()
	return &Post{
		PostID:    uuid.New(),
		TeamID:    teamID,
		Title:     title,
		Content:   content,
		MatchDate: matchDate.UTC(),
		Address:   address,
		PlaceName: placeName,
		Lat:       lat,
		Lng:       lng,
		Status:    PostStatusOpen,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPast reports whether the match date is before now
func (p *Post) IsPast(now time.Time) bool {
	return p.MatchDate.Before(now)
}

// IsOpen reports whether the post still accepts applications
func (p *Post) IsOpen() bool {
	return p.Status == PostStatusOpen && !p.IsDeleted
}

// OwnedBy reports whether teamID published the post
func (p *Post) OwnedBy(teamID uuid.UUID) bool {
	return teamID != uuid.Nil && p.TeamID == teamID
}

// Close moves the post to CLOSED and records the accepted application.
// Status and back-reference change together so CLOSED always carries an
// accepted application.
func (p *Post) Close(applicationID uuid.UUID, now time.Time) error {
	if applicationID == uuid.Nil {
		return ErrInvalidTransition
	}
	if !p.Status.CanTransitionTo(PostStatusClosed) {
		return ErrInvalidTransition
	}
	p.Status = PostStatusClosed
	p.AcceptedApplicationID = &applicationID
	p.UpdatedAt = now.UTC()
	return nil
}

// SoftDelete marks the post deleted
func (p *Post) SoftDelete(now time.Time) error {
	if p.IsDeleted {
		return ErrPostDeleted
	}
	at := now.UTC()
	p.IsDeleted = true
	p.DeletedAt = &at
	p.UpdatedAt = at
	return nil
}

// Application is a team's request to play against a match post
type Application struct {
	ID              int64             `json:"id"`
	ApplicationID   uuid.UUID         `json:"applicationId"`
	PostID          uuid.UUID         `json:"postId"`
	ApplicantTeamID uuid.UUID         `json:"applicantTeamId"`
	Message         string            `json:"message"`
	Status          ApplicationStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// NewApplication creates a pending application
func NewApplication(postID, applicantTeamID uuid.UUID, message string) *Application {
	now := time.Now().UTC()
	return &Application{
		ApplicationID:   uuid.New(),
		PostID:          postID,
		ApplicantTeamID: applicantTeamID,
		Message:         message,
		Status:          ApplicationStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsPending reports whether the application still awaits a decision
func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

// Accept marks the application as accepted
func (a *Application) Accept(now time.Time) error {
	return a.transition(ApplicationStatusAccepted, now)
}

// Reject marks the application as rejected
func (a *Application) Reject(now time.Time) error {
	return a.transition(ApplicationStatusRejected, now)
}

// Cancel marks the application as withdrawn by the applicant
func (a *Application) Cancel(now time.Time) error {
	return a.transition(ApplicationStatusCancelled, now)
}

func (a *Application) transition(target ApplicationStatus, now time.Time) error {
	if !a.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	a.Status = target
	a.UpdatedAt = now.UTC()
	return nil
}

// Applicant is an application joined with the applying team's display data
type Applicant struct {
	ApplicationID   uuid.UUID         `json:"applicationId"`
	ApplicantTeamID uuid.UUID         `json:"teamId"`
	TeamName        string            `json:"teamName"`
	Message         string            `json:"message"`
	Status          ApplicationStatus `json:"status"`
	AppliedAt       time.Time         `json:"appliedAt"`
}

// PostFilter controls match post listing
type PostFilter struct {
	TeamID      *uuid.UUID
	Status      *PostStatus
	MatchAfter  *time.Time
	MatchBefore *time.Time
}
