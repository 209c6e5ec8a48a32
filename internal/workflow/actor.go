package workflow

import (
	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// Actor is an already-authenticated user with a normalized role. The core
// never sees raw role strings or auth tokens.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

func (a Actor) isAdmin() bool { return a.Role.IsAdmin() }

// ownsAsPhotographer reports whether the actor is the photographer assigned
// to the shoot.
func ownsAsPhotographer(a Actor, s *models.Shoot) bool {
	return a.Role == models.RolePhotographer && s.PhotographerID.Valid && s.PhotographerID.UUID == a.ID
}

// ownsAsEditor reports whether the actor is the editor assigned to the shoot,
// or holds the editor role while no editor is assigned.
func ownsAsEditor(a Actor, s *models.Shoot) bool {
	if a.Role != models.RoleEditor {
		return false
	}
	return !s.EditorID.Valid || s.EditorID.UUID == a.ID
}
