package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking reserves a property for the half-open stay [StartDate, EndDate):
// the guest checks in on StartDate and leaves on EndDate.
type Booking struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Overlaps reports whether the booking collides with [start, end).
// Back-to-back stays, where one ends on the day the other starts, do not.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}

// DateRange is a booked [Start, End) span on a property calendar.
type DateRange struct {
	Start time.Time
	End   time.Time
}
