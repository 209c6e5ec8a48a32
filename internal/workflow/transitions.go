package workflow

import "shootflow-backend/internal/models"

// Action is a shoot-level state machine operation.
type Action string

const (
	ActionSchedule       Action = "schedule"
	ActionApproveRequest Action = "approve_request"
	ActionDeclineRequest Action = "decline_request"
	ActionStartEditing   Action = "start_editing"
	ActionSubmitReview   Action = "submit_for_review"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionResolveIssues  Action = "resolve_issues"
	ActionPutOnHold      Action = "put_on_hold"
	ActionComplete       Action = "complete"
	ActionCancel         Action = "cancel"
)

func (a Action) String() string { return string(a) }

type edge struct {
	to models.Status
	// from reports whether the edge exists for the shoot's current state.
	// Flags on the shoot (is_flagged, admin_verified_at) are part of the
	// state for the subflow edges.
	from func(*models.Shoot) bool
}

func anyNonTerminal(s *models.Shoot) bool {
	return !s.Status.Terminal()
}

func fromStatuses(statuses ...models.Status) func(*models.Shoot) bool {
	return func(s *models.Shoot) bool {
		for _, st := range statuses {
			if s.Status == st {
				return true
			}
		}
		return false
	}
}

// The fixed transition table. An action absent here for the current state is
// a TransitionError regardless of who asks.
var edges = map[Action]edge{
	ActionSchedule: {to: models.StatusScheduled, from: func(s *models.Shoot) bool {
		return anyNonTerminal(s) && s.Status != models.StatusRequested
	}},
	ActionApproveRequest: {to: models.StatusScheduled, from: fromStatuses(models.StatusRequested)},
	ActionDeclineRequest: {to: models.StatusDeclined, from: fromStatuses(models.StatusRequested)},
	ActionStartEditing:   {to: models.StatusEditing, from: fromStatuses(models.StatusScheduled, models.StatusUploaded)},
	ActionSubmitReview: {to: models.StatusPendingReview, from: func(s *models.Shoot) bool {
		switch s.Status {
		case models.StatusUploaded, models.StatusEditing:
			return true
		case models.StatusOnHold:
			// Resubmission after a reject is only legal once the flag has
			// been addressed.
			return s.IsFlagged || s.IssuesResolvedAt.Valid
		}
		return false
	}},
	ActionApprove: {to: models.StatusDelivered, from: fromStatuses(models.StatusPendingReview)},
	ActionReject:  {to: models.StatusOnHold, from: fromStatuses(models.StatusPendingReview)},
	ActionResolveIssues: {to: models.StatusPendingReview, from: func(s *models.Shoot) bool {
		return s.Status == models.StatusOnHold && s.IsFlagged
	}},
	ActionPutOnHold: {to: models.StatusOnHold, from: func(s *models.Shoot) bool {
		return anyNonTerminal(s) && s.Status != models.StatusOnHold
	}},
	ActionComplete: {to: models.StatusDelivered, from: func(s *models.Shoot) bool {
		return s.Status == models.StatusDelivered && s.AdminVerifiedAt.Valid
	}},
	ActionCancel: {to: models.StatusCancelled, from: anyNonTerminal},
}

// roleChecks gives the minimum capability per action. Checked only after the
// edge is confirmed to exist.
var roleChecks = map[Action]func(Actor, *models.Shoot) bool{
	ActionSchedule: func(a Actor, s *models.Shoot) bool {
		return a.isAdmin() || ownsAsPhotographer(a, s)
	},
	ActionApproveRequest: adminOnly,
	ActionDeclineRequest: adminOnly,
	ActionStartEditing: func(a Actor, s *models.Shoot) bool {
		return a.isAdmin() || ownsAsPhotographer(a, s)
	},
	ActionSubmitReview: func(a Actor, s *models.Shoot) bool {
		return a.isAdmin() || ownsAsPhotographer(a, s) || ownsAsEditor(a, s)
	},
	ActionApprove: adminOnly,
	ActionReject:  adminOnly,
	ActionResolveIssues: func(a Actor, s *models.Shoot) bool {
		return a.isAdmin() || ownsAsPhotographer(a, s) || ownsAsEditor(a, s)
	},
	ActionPutOnHold: func(a Actor, s *models.Shoot) bool {
		return a.isAdmin() || a.Role == models.RoleRep || ownsAsPhotographer(a, s)
	},
	ActionComplete: adminOnly,
	ActionCancel:   adminOnly,
}

func adminOnly(a Actor, _ *models.Shoot) bool { return a.isAdmin() }

// CanTransition is the single capability check consulted by the state
// machine: true when the edge exists for the shoot's current state and the
// actor is allowed to take it.
func CanTransition(a Actor, s *models.Shoot, action Action) bool {
	e, ok := edges[action]
	if !ok || !e.from(s) {
		return false
	}
	return roleChecks[action](a, s)
}

// checkTransition validates the edge first, then the role, and returns the
// target status. The ordering is load-bearing: a missing edge is always a
// TransitionError, independent of who asks.
func checkTransition(a Actor, s *models.Shoot, action Action) (models.Status, error) {
	e, ok := edges[action]
	if !ok || !e.from(s) {
		return "", &TransitionError{From: s.Status, Action: action}
	}
	if !roleChecks[action](a, s) {
		return "", ErrForbidden
	}
	return e.to, nil
}
