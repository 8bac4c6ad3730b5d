package domain

import (
	"time"

	"github.com/google/uuid"
)

// Deadline is static regulatory reference data.
// Days-until is always derived from a reference date, never stored.
type Deadline struct {
	ID           uuid.UUID
	Name         string
	Date         time.Time
	Regulation   string
	Description  string
	ApplicableTo string
	CreatedAt    time.Time
}

// DaysUntil returns the number of whole calendar days from today to the
// deadline. Both dates are truncated to midnight UTC first.
func (d Deadline) DaysUntil(today time.Time) int {
	return int(TruncateDay(d.Date).Sub(TruncateDay(today)).Hours() / 24)
}

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
