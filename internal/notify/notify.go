// Package notify publishes workflow events to interested users. Delivery is
// fire-and-forget: the workflow logs failures and moves on, so a notification
// outage can never wedge a transition.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"shootflow-backend/internal/models"
)

type Client struct {
	client *supabase.Client
	log    *slog.Logger
}

func NewClient(supabaseURL, publishableKey string, log *slog.Logger) (*Client, error) {
	client, err := supabase.NewClient(supabaseURL, publishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Client{client: client, log: log}, nil
}

type notificationRow struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ShootID   string         `json:"shoot_id"`
	Event     string         `json:"event"`
	Channel   string         `json:"channel"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"created_at"`
}

// Notify inserts one notification row per recipient. Subscribed clients pick
// the rows up over Realtime; the insert itself is the publish.
func (c *Client) Notify(ctx context.Context, event string, shoot *models.Shoot, recipients []uuid.UUID) error {
	if len(recipients) == 0 {
		return nil
	}
	payload := shootEventPayload(event, shoot)
	now := time.Now().UTC().Format(time.RFC3339)

	rows := make([]notificationRow, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, notificationRow{
			ID:        uuid.New().String(),
			UserID:    userID.String(),
			ShootID:   shoot.ID.String(),
			Event:     event,
			Channel:   fmt.Sprintf("shoot:%s", shoot.ID.String()),
			Payload:   payload,
			CreatedAt: now,
		})
	}

	_, _, err := c.client.From("notifications").Insert(rows, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event, err)
	}
	c.log.Debug("published event", "event", event, "shoot_id", shoot.ID, "recipients", len(recipients))
	return nil
}

func shootEventPayload(event string, shoot *models.Shoot) map[string]any {
	payload := map[string]any{
		"shoot_id": shoot.ID.String(),
		"event":    event,
		"status":   shoot.Status.String(),
	}
	if shoot.ScheduledAt.Valid {
		payload["scheduled_at"] = shoot.ScheduledAt.Time.Format(time.RFC3339)
	}
	if shoot.IsFlagged {
		payload["flagged"] = true
		if shoot.AdminIssueNotes.Valid {
			payload["issue_notes"] = shoot.AdminIssueNotes.String
		}
	}
	return payload
}
