package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Shoot struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	PhotographerID uuid.NullUUID
	EditorID       uuid.NullUUID
	RepID          uuid.NullUUID

	Address      sql.NullString
	PropertySlug sql.NullString

	ScheduledAt   sql.NullTime
	ScheduledTime sql.NullString
	Status        Status

	IsFlagged       bool
	AdminIssueNotes sql.NullString
	HoldReason      sql.NullString

	PhotosUploadedAt     sql.NullTime
	SubmittedForReviewAt sql.NullTime
	AdminVerifiedAt      sql.NullTime
	VerifiedBy           uuid.NullUUID
	IssuesResolvedAt     sql.NullTime
	IssuesResolvedBy     uuid.NullUUID
	CompletedAt          sql.NullTime

	ApprovedAt     sql.NullTime
	ApprovedBy     uuid.NullUUID
	DeclinedAt     sql.NullTime
	DeclinedBy     uuid.NullUUID
	DeclinedReason sql.NullString

	CancellationRequestedAt     sql.NullTime
	CancellationRequestedBy     uuid.NullUUID
	CancellationRequestedReason sql.NullString

	// Derived media counters, recomputed after every file mutation. Never
	// hand-edited.
	ExpectedRawCount   int
	ExpectedFinalCount int
	RawPhotoCount      int
	EditedPhotoCount   int
	RawMissingCount    int
	EditedMissingCount int
	MissingRaw         bool
	MissingFinal       bool

	CreatedBy uuid.NullUUID
	UpdatedBy uuid.NullUUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MediaFile struct {
	ID      uuid.UUID
	ShootID uuid.UUID

	Filename string
	Kind     MediaKind
	Stage    Stage

	FlagReason sql.NullString
	IsCover    bool
	IsFavorite bool

	// StoragePath is an opaque handle into the storage collaborator. The core
	// never interprets it beyond present/absent.
	StoragePath string
	FileSize    sql.NullInt64
	MimeType    string

	VerifiedAt        sql.NullTime
	VerifiedBy        uuid.NullUUID
	VerificationNotes sql.NullString

	Comments []FileComment

	CreatedAt time.Time
	UpdatedAt time.Time
}

type FileComment struct {
	UserID    uuid.UUID `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
