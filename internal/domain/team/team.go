// Package team is the read-only view of team rosters that match decisions
// and notifications depend on.
package team

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_directory.go -package=mocks . Directory

import (
	"context"

	"github.com/google/uuid"
)

// Role is a member's role inside a team
type Role string

const (
	RoleLeader   Role = "LEADER"
	RoleCoLeader Role = "CO_LEADER"
	RoleMember   Role = "MEMBER"
)

// CanManageMatches reports whether the role may publish and decide match posts
func (r Role) CanManageMatches() bool {
	return r == RoleLeader || r == RoleCoLeader
}

// LeadershipRoles are the roles notified about match activity
var LeadershipRoles = []Role{RoleLeader, RoleCoLeader}

// Team is a squad that publishes or applies to match posts
type Team struct {
	TeamID uuid.UUID `json:"teamId"`
	Name   string    `json:"name"`
}

// Member is a user's membership in a team
type Member struct {
	TeamID uuid.UUID `json:"teamId"`
	UserID uuid.UUID `json:"userId"`
	Role   Role      `json:"role"`
}

// Directory resolves team membership. Lookups return (nil, nil) when the
// user or team is unknown.
type Directory interface {
	MembershipOf(ctx context.Context, userID uuid.UUID) (*Member, error)
	GetTeam(ctx context.Context, teamID uuid.UUID) (*Team, error)
	GetTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]*Team, error)
	// MemberUserIDs lists users of teamID holding any of roles.
	MemberUserIDs(ctx context.Context, teamID uuid.UUID, roles []Role) ([]uuid.UUID, error)
}
