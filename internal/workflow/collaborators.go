package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// Handle is an opaque pointer into the storage collaborator.
type Handle string

// Storage is the durable-file collaborator. Relocations use the file's stable
// path as the idempotency key, so retrying a rolled-back transition does not
// duplicate objects.
type Storage interface {
	Store(ctx context.Context, shootID uuid.UUID, stage models.Stage, filename string, data []byte, contentType string) (Handle, error)
	Relocate(ctx context.Context, h Handle, target models.Stage) (Handle, error)
	// ResolveURL returns "" while the object is not yet available rather
	// than failing.
	ResolveURL(h Handle) string
	Delete(ctx context.Context, h Handle) error
	// EnsureShootFolders creates the per-stage prefixes for a shoot if absent.
	EnsureShootFolders(ctx context.Context, shootID uuid.UUID) error
}

// Notifier is fire-and-forget: failures are logged by the caller and never
// block a transition.
type Notifier interface {
	Notify(ctx context.Context, event string, shoot *models.Shoot, recipients []uuid.UUID) error
}

// AvailabilityChecker is consulted only by schedule-type transitions.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, photographerID uuid.UUID, when time.Time, excludeShoot uuid.UUID) (bool, error)
}

// TaskQueue enqueues background work triggered by transitions (watermark
// regeneration, archival). Implementations must tolerate being nil-checked by
// the service; enqueue failures never fail the transition.
type TaskQueue interface {
	Enqueue(ctx context.Context, shootID uuid.UUID, kind string, payload any) error
}
