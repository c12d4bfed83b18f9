package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/match-hub/match-hub/internal/domain/team"
)

// Directory is an in-memory team.Directory
type Directory struct {
	mu      sync.RWMutex
	teams   map[uuid.UUID]*team.Team
	members map[uuid.UUID]*team.Member // by user id
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		teams:   make(map[uuid.UUID]*team.Team),
		members: make(map[uuid.UUID]*team.Member),
	}
}

// AddTeam registers t and its members. A user belongs to one team at a time.
func (d *Directory) AddTeam(t team.Team, members ...team.Member) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.teams[t.TeamID] = &t
	for _, m := range members {
		m.TeamID = t.TeamID
		member := m
		d.members[m.UserID] = &member
	}
}

func (d *Directory) MembershipOf(ctx context.Context, userID uuid.UUID) (*team.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if m, ok := d.members[userID]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (d *Directory) GetTeam(ctx context.Context, teamID uuid.UUID) (*team.Team, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if t, ok := d.teams[teamID]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (d *Directory) GetTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]*team.Team, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make(map[uuid.UUID]*team.Team, len(teamIDs))
	for _, id := range teamIDs {
		if t, ok := d.teams[id]; ok {
			c := *t
			result[id] = &c
		}
	}
	return result, nil
}

func (d *Directory) MemberUserIDs(ctx context.Context, teamID uuid.UUID, roles []team.Role) ([]uuid.UUID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var ids []uuid.UUID
	for _, m := range d.members {
		if m.TeamID != teamID {
			continue
		}
		for _, r := range roles {
			if m.Role == r {
				ids = append(ids, m.UserID)
				break
			}
		}
	}
	return ids, nil
}
