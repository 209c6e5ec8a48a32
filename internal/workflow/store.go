package workflow

import (
	"context"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
)

// Store provides transactional access to a single shoot and everything hanging
// off it. The shoot row is the lock boundary: WithShoot serializes concurrent
// callers for the same shoot and never contends across shoots.
type Store interface {
	// WithShoot runs fn inside one atomic unit with the shoot row locked.
	// If fn returns an error the whole unit rolls back.
	WithShoot(ctx context.Context, shootID uuid.UUID, fn func(Tx) error) error

	// CreateShoot persists a new shoot together with its booking log entry.
	CreateShoot(ctx context.Context, shoot *models.Shoot, entry *models.ActivityLogEntry) error

	GetShoot(ctx context.Context, id uuid.UUID) (*models.Shoot, error)
	GetReschedule(ctx context.Context, id uuid.UUID) (*models.RescheduleRequest, error)
}

// Tx is the view inside one WithShoot unit.
type Tx interface {
	// Shoot returns the locked row. Mutations are persisted by SaveShoot.
	Shoot() *models.Shoot
	SaveShoot() error

	Files() ([]*models.MediaFile, error)
	File(id uuid.UUID) (*models.MediaFile, error)
	InsertFile(f *models.MediaFile) error
	SaveFile(f *models.MediaFile) error
	DeleteFile(id uuid.UUID) error
	// ClearCover unsets is_cover on every file of the shoot.
	ClearCover() error

	InsertReschedule(r *models.RescheduleRequest) error
	Reschedule(id uuid.UUID) (*models.RescheduleRequest, error)
	SaveReschedule(r *models.RescheduleRequest) error

	// AppendLog records an immutable activity entry in the same unit as the
	// state change it describes.
	AppendLog(e *models.ActivityLogEntry) error
}
