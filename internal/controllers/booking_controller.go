package controllers

import (
	"net/http"

	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/services"
	"github.com/poofware/rental-service/internal/utils"
)

// BookingController serves the caller's own bookings.
type BookingController struct {
	bookingService services.BookingService
}

func NewBookingController(bs services.BookingService) *BookingController {
	return &BookingController{bookingService: bs}
}

// GET /api/v1/bookings/
func (c *BookingController) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, err := parsePageQuery(r)
	if err != nil {
		badQuery(w, err)
		return
	}
	resp, err := c.bookingService.ListBookings(r.Context(), userID, page)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/bookings/
func (c *BookingController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dtos.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.bookingService.CreateBooking(r.Context(), userID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/bookings/{id}/
func (c *BookingController) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.bookingService.GetBooking(r.Context(), userID, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PUT and PATCH /api/v1/bookings/{id}/
func (c *BookingController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.bookingService.UpdateBooking(r.Context(), userID, id, req, r.Method == http.MethodPatch)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/bookings/{id}/
func (c *BookingController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.bookingService.DeleteBooking(r.Context(), userID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
