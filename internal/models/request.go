package models

type CreateShootRequest struct {
	ClientID       string `json:"client_id,omitempty"`
	PhotographerID string `json:"photographer_id,omitempty"`
	RepID          string `json:"rep_id,omitempty"`
	Address        string `json:"address,omitempty"`
	// RFC 3339; omit to create the shoot unscheduled (on hold).
	ScheduledAt        string `json:"scheduled_at,omitempty"`
	ScheduledTime      string `json:"scheduled_time,omitempty" example:"10:15 AM"`
	ExpectedRawCount   int    `json:"expected_raw_count,omitempty"`
	ExpectedFinalCount int    `json:"expected_final_count,omitempty"`
}

type ScheduleShootRequest struct {
	ScheduledAt    string `json:"scheduled_at" example:"2026-09-12T10:00:00Z"`
	ScheduledTime  string `json:"scheduled_time,omitempty"`
	PhotographerID string `json:"photographer_id,omitempty"`
}

type RejectShootRequest struct {
	Notes string `json:"notes"`
}

type ReasonRequest struct {
	Reason string `json:"reason,omitempty"`
}

type FlagFileRequest struct {
	Reason    string `json:"reason,omitempty"`
	ClearFlag bool   `json:"clear_flag,omitempty"`
}

type VerifyFileRequest struct {
	Notes string `json:"notes,omitempty"`
}

type CommentFileRequest struct {
	Comment string `json:"comment"`
}

type CreateRescheduleRequest struct {
	RequestedDate string `json:"requested_date" example:"2026-09-20"`
	RequestedTime string `json:"requested_time,omitempty" example:"1:30 PM"`
	Reason        string `json:"reason,omitempty"`
}

type ReviewRescheduleRequest struct {
	Status string `json:"status" example:"approved"`
}
