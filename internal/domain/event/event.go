// Package event defines the domain events emitted by match use cases.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/domain/match"
)

// Type names an event kind
type Type string

const (
	TypeApplicationCreated   Type = "MATCH_APPLICATION_CREATED"
	TypeApplicationProcessed Type = "MATCH_APPLICATION_PROCESSED"
)

// Event is a fact produced inside a committed transaction
type Event interface {
	ID() uuid.UUID
	Type() Type
	OccurredAt() time.Time
	// AggregateID is the match post the event belongs to.
	AggregateID() uuid.UUID
}

// Meta carries the identity shared by all events
type Meta struct {
	EventID uuid.UUID `json:"eventId"`
	At      time.Time `json:"occurredAt"`
}

func newMeta() Meta {
	return Meta{EventID: uuid.New(), At: time.Now().UTC()}
}

func (m Meta) ID() uuid.UUID         { return m.EventID }
func (m Meta) OccurredAt() time.Time { return m.At }

// ApplicationCreated is raised when a team applies to a match post
type ApplicationCreated struct {
	Meta
	PostID            uuid.UUID `json:"postId"`
	PostTitle         string    `json:"postTitle"`
	OwnerTeamID       uuid.UUID `json:"ownerTeamId"`
	ApplicationID     uuid.UUID `json:"applicationId"`
	ApplicantTeamID   uuid.UUID `json:"applicantTeamId"`
	ApplicantTeamName string    `json:"applicantTeamName"`
}

// NewApplicationCreated builds the event for a freshly inserted application
func NewApplicationCreated(post *match.Post, app *match.Application, applicantTeamName string) *ApplicationCreated {
	return &ApplicationCreated{
		Meta:              newMeta(),
		PostID:            post.PostID,
		PostTitle:         post.Title,
		OwnerTeamID:       post.TeamID,
		ApplicationID:     app.ApplicationID,
		ApplicantTeamID:   app.ApplicantTeamID,
		ApplicantTeamName: applicantTeamName,
	}
}

func (e *ApplicationCreated) Type() Type             { return TypeApplicationCreated }
func (e *ApplicationCreated) AggregateID() uuid.UUID { return e.PostID }

// ApplicationProcessed is raised when an application reaches ACCEPTED or REJECTED
type ApplicationProcessed struct {
	Meta
	PostID          uuid.UUID               `json:"postId"`
	PostTitle       string                  `json:"postTitle"`
	ApplicationID   uuid.UUID               `json:"applicationId"`
	ApplicantTeamID uuid.UUID               `json:"applicantTeamId"`
	Status          match.ApplicationStatus `json:"status"`
}

// NewApplicationProcessed builds the event for a decided application
func NewApplicationProcessed(post *match.Post, app *match.Application) *ApplicationProcessed {
	return &ApplicationProcessed{
		Meta:            newMeta(),
		PostID:          post.PostID,
		PostTitle:       post.Title,
		ApplicationID:   app.ApplicationID,
		ApplicantTeamID: app.ApplicantTeamID,
		Status:          app.Status,
	}
}

func (e *ApplicationProcessed) Type() Type             { return TypeApplicationProcessed }
func (e *ApplicationProcessed) AggregateID() uuid.UUID { return e.PostID }
