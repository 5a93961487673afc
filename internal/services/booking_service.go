package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
	"github.com/sirupsen/logrus"
)

const msgBookingConflict = "The property is already booked for some of these dates."

type BookingService interface {
	CheckAvailability(ctx context.Context, propertyID uuid.UUID, startRaw, endRaw string) (*dtos.AvailabilityResponse, error)
	CreateBooking(ctx context.Context, guestID uuid.UUID, req dtos.CreateBookingRequest) (*dtos.BookingResponse, error)
	ListBookings(ctx context.Context, guestID uuid.UUID, q dtos.PageQuery) (*dtos.PageResponse[dtos.BookingResponse], error)
	GetBooking(ctx context.Context, guestID, bookingID uuid.UUID) (*dtos.BookingResponse, error)
	// UpdateBooking reschedules a booking. With partial=false both dates
	// are required (PUT); otherwise missing dates keep their stored value.
	UpdateBooking(ctx context.Context, guestID, bookingID uuid.UUID, req dtos.UpdateBookingRequest, partial bool) (*dtos.BookingResponse, error)
	DeleteBooking(ctx context.Context, guestID, bookingID uuid.UUID) error
}

type bookingService struct {
	bookingRepo  repositories.BookingRepository
	propertyRepo repositories.PropertyRepository
	userRepo     repositories.UserRepository
	checker      *ConflictChecker
	notifier     BookingNotifier
}

func NewBookingService(
	bookingRepo repositories.BookingRepository,
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	notifier BookingNotifier,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		checker:      NewConflictChecker(bookingRepo),
		notifier:     notifier,
	}
}

func (s *bookingService) CheckAvailability(
	ctx context.Context,
	propertyID uuid.UUID,
	startRaw, endRaw string,
) (*dtos.AvailabilityResponse, error) {
	prop, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if prop == nil || !prop.IsActive {
		return nil, utils.NewNotFoundError("Property not found")
	}

	start, end, err := ParseStayDates(startRaw, endRaw)
	if err != nil {
		return nil, err
	}
	ok, err := s.checker.IsAvailable(ctx, propertyID, start, end, nil)
	if err != nil {
		return nil, err
	}
	if ok {
		return &dtos.AvailabilityResponse{IsAvailable: true, Message: constants.MsgDatesAvailable}, nil
	}
	return &dtos.AvailabilityResponse{IsAvailable: false, Message: constants.MsgDatesUnavailable}, nil
}

func (s *bookingService) CreateBooking(
	ctx context.Context,
	guestID uuid.UUID,
	req dtos.CreateBookingRequest,
) (*dtos.BookingResponse, error) {
	if req.PropertyID == uuid.Nil {
		return nil, utils.NewValidationError("property_id is required.", nil)
	}
	start, end, err := ParseStayDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	prop, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if prop == nil {
		return nil, utils.NewValidationError("Property does not exist.", utils.ErrNotFound)
	}
	if !prop.IsActive {
		return nil, utils.NewValidationError("This property is not accepting bookings.", utils.ErrPropertyNotBookable)
	}

	// Fast path: reject obvious overlaps without opening a transaction.
	// The repository repeats the check under the property row lock.
	ok, err := s.checker.IsAvailable(ctx, prop.ID, start, end, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflictError(msgBookingConflict, utils.ErrBookingConflict)
	}

	total, err := stayTotal(start, end, prop.PricePerNight)
	if err != nil {
		return nil, err
	}
	guest, err := requireCaller(ctx, s.userRepo, guestID)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:         uuid.New(),
		PropertyID: prop.ID,
		GuestID:    guestID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: total,
	}
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		return nil, s.mapWriteError(err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"booking_id":  b.ID,
		"property_id": b.PropertyID,
		"guest_id":    guestID,
	}).Info("Booking created")

	s.notify(ctx, b, prop, guest)

	resp := toBookingResponse(b)
	return &resp, nil
}

func (s *bookingService) ListBookings(
	ctx context.Context,
	guestID uuid.UUID,
	q dtos.PageQuery,
) (*dtos.PageResponse[dtos.BookingResponse], error) {
	list, total, err := s.bookingRepo.ListByGuest(ctx, guestID, q.PageSize, q.Offset())
	if err != nil {
		return nil, utils.NewInternalError("Could not list bookings", err)
	}
	return newPage(q, total, mapSlice(list, toBookingResponse)), nil
}

func (s *bookingService) GetBooking(ctx context.Context, guestID, bookingID uuid.UUID) (*dtos.BookingResponse, error) {
	b, err := s.ownBooking(ctx, guestID, bookingID)
	if err != nil {
		return nil, err
	}
	resp := toBookingResponse(b)
	return &resp, nil
}

func (s *bookingService) UpdateBooking(
	ctx context.Context,
	guestID, bookingID uuid.UUID,
	req dtos.UpdateBookingRequest,
	partial bool,
) (*dtos.BookingResponse, error) {
	b, err := s.ownBooking(ctx, guestID, bookingID)
	if err != nil {
		return nil, err
	}

	startRaw, endRaw := utils.FormatDate(b.StartDate), utils.FormatDate(b.EndDate)
	if !partial || req.StartDate != nil {
		startRaw = utils.Val(req.StartDate)
	}
	if !partial || req.EndDate != nil {
		endRaw = utils.Val(req.EndDate)
	}
	start, end, err := ParseStayDates(startRaw, endRaw)
	if err != nil {
		return nil, err
	}

	prop, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if prop == nil {
		return nil, utils.NewNotFoundError("Booking not found")
	}
	total, err := stayTotal(start, end, prop.PricePerNight)
	if err != nil {
		return nil, err
	}

	ok, err := s.checker.IsAvailable(ctx, b.PropertyID, start, end, &b.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflictError(msgBookingConflict, utils.ErrBookingConflict)
	}

	b.StartDate, b.EndDate = start, end
	b.TotalPrice = total
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, s.mapWriteError(err)
	}
	resp := toBookingResponse(b)
	return &resp, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, guestID, bookingID uuid.UUID) error {
	if _, err := s.ownBooking(ctx, guestID, bookingID); err != nil {
		return err
	}
	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		return notFoundOr(err, "Booking", "Could not delete booking")
	}
	return nil
}

// ownBooking loads a booking the guest made. Bookings of other guests are
// reported as missing.
func (s *bookingService) ownBooking(ctx context.Context, guestID, bookingID uuid.UUID) (*models.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load booking", err)
	}
	if b == nil || b.GuestID != guestID {
		return nil, utils.NewNotFoundError("Booking not found")
	}
	return b, nil
}

func (s *bookingService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, utils.ErrBookingConflict):
		return utils.NewConflictError(msgBookingConflict, err)
	case errors.Is(err, pgx.ErrNoRows):
		return utils.NewValidationError("Property does not exist.", err)
	case repositories.IsForeignKeyViolationOn(err, repositories.FKBookingGuest):
		return utils.NewUnauthorizedError(constants.MsgUnknownCaller)
	case repositories.IsForeignKeyViolation(err):
		return utils.NewValidationError("Property does not exist.", err)
	case repositories.IsNumericOverflow(err):
		return utils.NewValidationError(constants.MsgTotalTooLarge, err)
	case repositories.IsCheckViolation(err):
		return utils.NewValidationError(constants.MsgDateOrder, utils.ErrInvalidDateRange)
	default:
		return utils.NewInternalError("Could not save booking", err)
	}
}

func (s *bookingService) notify(ctx context.Context, b *models.Booking, prop *models.Property, guest *models.User) {
	if s.notifier == nil {
		return
	}
	host, err := s.userRepo.GetByID(ctx, prop.OwnerID)
	if err != nil || host == nil {
		utils.Logger.WithError(err).Warnf("Skipping host notice for booking %s: host not loaded", b.ID)
		host = nil
	}
	s.notifier.BookingConfirmed(ctx, BookingNotice{Booking: b, Property: prop, Guest: guest, Host: host})
}

// stayTotal prices [start, end) at pricePerNight, rejecting stays longer
// than MaxStayNights and totals that would not fit total_price.
func stayTotal(start, end time.Time, pricePerNight float64) (float64, error) {
	nights := utils.Nights(start, end)
	if nights > constants.MaxStayNights {
		return 0, utils.NewValidationError(constants.MsgStayTooLong, utils.ErrInvalidDateRange)
	}
	total := round2(float64(nights) * pricePerNight)
	if total > constants.MaxBookingTotal {
		return 0, utils.NewValidationError(constants.MsgTotalTooLarge, nil)
	}
	return total, nil
}
