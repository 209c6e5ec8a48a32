package models

import "fmt"

// Status is the canonical shoot lifecycle state. The database keeps a legacy
// workflow_status column mirrored to the same value; the rest of the code only
// ever sees this enum.
type Status string

const (
	StatusRequested     Status = "requested"
	StatusScheduled     Status = "scheduled"
	StatusUploaded      Status = "uploaded"
	StatusEditing       Status = "editing"
	StatusPendingReview Status = "pending_review"
	StatusDelivered     Status = "delivered"
	StatusOnHold        Status = "on_hold"
	StatusCancelled     Status = "cancelled"
	StatusDeclined      Status = "declined"
)

// legacyStatuses maps the synonym vocabulary accumulated across old migrations
// onto the canonical set. Parsing happens once, at the data-access boundary.
var legacyStatuses = map[string]Status{
	"booked":             StatusScheduled,
	"raw_upload_pending": StatusScheduled,
	"in_progress":        StatusUploaded,
	"completed":          StatusUploaded,
	"raw_uploaded":       StatusUploaded,
	"photos_uploaded":    StatusUploaded,
	"raw_issue":          StatusUploaded,
	"editing_uploaded":   StatusPendingReview,
	"editing_complete":   StatusPendingReview,
	"editing_issue":      StatusPendingReview,
	"review":             StatusPendingReview,
	"ready_for_review":   StatusPendingReview,
	"qc":                 StatusPendingReview,
	"ready":              StatusDelivered,
	"ready_for_client":   StatusDelivered,
	"admin_verified":     StatusDelivered,
	"hold":               StatusOnHold,
	"hold_on":            StatusOnHold,
}

// ParseStatus normalizes a raw status string, accepting both canonical values
// and legacy synonyms. Unrecognized values are an error, never a silent default.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRequested, StatusScheduled, StatusUploaded, StatusEditing,
		StatusPendingReview, StatusDelivered, StatusOnHold, StatusCancelled,
		StatusDeclined:
		return Status(s), nil
	}
	if canonical, ok := legacyStatuses[s]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("unrecognized shoot status %q", s)
}

func (s Status) String() string { return string(s) }

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusDeclined
}
