package models

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RescheduleStatus string

const (
	ReschedulePending  RescheduleStatus = "pending"
	RescheduleApproved RescheduleStatus = "approved"
	RescheduleRejected RescheduleStatus = "rejected"
)

func ParseRescheduleStatus(s string) (RescheduleStatus, error) {
	switch RescheduleStatus(s) {
	case ReschedulePending, RescheduleApproved, RescheduleRejected:
		return RescheduleStatus(s), nil
	}
	return "", fmt.Errorf("unrecognized reschedule status %q", s)
}

func (s RescheduleStatus) String() string { return string(s) }

type RescheduleRequest struct {
	ID          uuid.UUID
	ShootID     uuid.UUID
	RequestedBy uuid.UUID

	OriginalDate  sql.NullTime
	RequestedDate time.Time
	RequestedTime sql.NullString
	Reason        sql.NullString

	Status     RescheduleStatus
	ReviewedAt sql.NullTime
	ApprovedBy uuid.NullUUID

	CreatedAt time.Time
}
