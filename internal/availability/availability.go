// Package availability answers whether a photographer can take a shoot at a
// given time. The check is a window query over their other active shoots. It
// runs on its own connection, so it is advisory: two bookings validated
// concurrently can still both commit.
package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Window is how long a shoot blocks the photographer's calendar on either
// side of its start.
const Window = 2 * time.Hour

type Checker struct {
	db *sql.DB
}

func NewChecker(db *sql.DB) *Checker {
	return &Checker{db: db}
}

func (c *Checker) IsAvailable(ctx context.Context, photographerID uuid.UUID, when time.Time, excludeShoot uuid.UUID) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM shoots
		WHERE photographer_id = $1
		  AND id <> $2
		  AND status NOT IN ('cancelled', 'declined', 'delivered')
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at > $3
		  AND scheduled_at < $4
	`, photographerID, excludeShoot, when.Add(-Window), when.Add(Window)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return count == 0, nil
}
