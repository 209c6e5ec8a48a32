package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ShootResponse struct {
	ID             string `json:"shoot_id"`
	ClientID       string `json:"client_id"`
	PhotographerID string `json:"photographer_id,omitempty"`
	EditorID       string `json:"editor_id,omitempty"`
	RepID          string `json:"rep_id,omitempty"`

	Status string `json:"status"`
	// Mirrors Status; kept for consumers that still read the old field name.
	WorkflowStatus string `json:"workflow_status"`

	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	ScheduledTime string     `json:"scheduled_time,omitempty"`

	IsFlagged       bool   `json:"is_flagged"`
	AdminIssueNotes string `json:"admin_issue_notes,omitempty"`
	HoldReason      string `json:"hold_reason,omitempty"`

	SubmittedForReviewAt *time.Time `json:"submitted_for_review_at,omitempty"`
	AdminVerifiedAt      *time.Time `json:"admin_verified_at,omitempty"`
	IssuesResolvedAt     *time.Time `json:"issues_resolved_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`

	ExpectedRawCount   int  `json:"expected_raw_count"`
	ExpectedFinalCount int  `json:"expected_final_count"`
	RawPhotoCount      int  `json:"raw_photo_count"`
	EditedPhotoCount   int  `json:"edited_photo_count"`
	RawMissingCount    int  `json:"raw_missing_count"`
	EditedMissingCount int  `json:"edited_missing_count"`
	MissingRaw         bool `json:"missing_raw"`
	MissingFinal       bool `json:"missing_final"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MediaFileResponse struct {
	ID         string `json:"id"`
	ShootID    string `json:"shoot_id"`
	Filename   string `json:"filename"`
	Kind       string `json:"kind"`
	Stage      string `json:"workflow_stage"`
	FlagReason string `json:"flag_reason,omitempty"`
	IsCover    bool   `json:"is_cover"`
	IsFavorite bool   `json:"is_favorite"`
	StorageURL string `json:"storage_url,omitempty"`
	FileSize   int64  `json:"file_size,omitempty"`
	MimeType   string `json:"mime_type"`

	CreatedAt time.Time `json:"created_at"`
}

type UploadedFileInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Stage    string `json:"workflow_stage"`
	Size     int64  `json:"size"`
}

type UploadErrorInfo struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
	Stage    string `json:"stage"`
}

type UploadResponse struct {
	ShootID      string             `json:"shoot_id"`
	Uploaded     []UploadedFileInfo `json:"uploaded_files"`
	Errors       []UploadErrorInfo  `json:"errors,omitempty"`
	SuccessCount int                `json:"success_count"`
	ErrorCount   int                `json:"error_count"`
	Shoot        *ShootResponse     `json:"shoot"`
}

type RescheduleResponse struct {
	ID            string     `json:"id"`
	ShootID       string     `json:"shoot_id"`
	RequestedBy   string     `json:"requested_by"`
	OriginalDate  *time.Time `json:"original_date,omitempty"`
	RequestedDate time.Time  `json:"requested_date"`
	RequestedTime string     `json:"requested_time,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Status        string     `json:"status"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ApprovedBy    string     `json:"approved_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ActivityLogResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Metadata  any       `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FileStats struct {
	Total     int `json:"total"`
	Todo      int `json:"todo"`
	Completed int `json:"completed"`
	Verified  int `json:"verified"`
	Flagged   int `json:"flagged"`
}

type WorkflowStatusResponse struct {
	ShootID        string                `json:"shoot_id"`
	Status         string                `json:"status"`
	WorkflowStatus string                `json:"workflow_status"`
	FileStats      FileStats             `json:"file_stats"`
	RecentActivity []ActivityLogResponse `json:"recent_activity"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
