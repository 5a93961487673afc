package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

// ParseStayDates validates the raw start/end query or body values. The
// returned AppError names the first problem found: a missing value, an
// unparsable date, or a range whose end is not after its start.
func ParseStayDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	if strings.TrimSpace(startRaw) == "" || strings.TrimSpace(endRaw) == "" {
		return time.Time{}, time.Time{}, utils.NewValidationError(constants.MsgDatesRequired, utils.ErrInvalidDateRange)
	}
	start, err := utils.ParseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, utils.NewValidationError(constants.MsgDateFormat, err)
	}
	end, err := utils.ParseDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, utils.NewValidationError(constants.MsgDateFormat, err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, utils.NewValidationError(constants.MsgDateOrder, utils.ErrInvalidDateRange)
	}
	return start, end, nil
}

// ConflictChecker answers "is [start, end) free on this property?" using
// half-open overlap: an existing booking conflicts when
// existing.start < end && existing.end > start.
type ConflictChecker struct {
	bookingRepo repositories.BookingRepository
}

func NewConflictChecker(bookingRepo repositories.BookingRepository) *ConflictChecker {
	return &ConflictChecker{bookingRepo: bookingRepo}
}

// IsAvailable returns false if any booking other than excludeID overlaps.
// Passing the booking's own id when rescheduling keeps it from conflicting
// with itself.
func (c *ConflictChecker) IsAvailable(
	ctx context.Context,
	propertyID uuid.UUID,
	start, end time.Time,
	excludeID *uuid.UUID,
) (bool, error) {
	if !start.Before(end) {
		return false, utils.NewValidationError(constants.MsgDateOrder, utils.ErrInvalidDateRange)
	}
	overlap, err := c.bookingRepo.HasOverlap(ctx, propertyID, start, end, excludeID)
	if err != nil {
		return false, utils.NewInternalError("Could not check availability", err)
	}
	return !overlap, nil
}
