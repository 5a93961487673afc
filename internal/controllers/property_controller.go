package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/services"
	"github.com/poofware/rental-service/internal/utils"
)

type PropertyController struct {
	propertyService services.PropertyService
	bookingService  services.BookingService
	searchService   services.SearchService
}

func NewPropertyController(
	ps services.PropertyService,
	bs services.BookingService,
	ss services.SearchService,
) *PropertyController {
	return &PropertyController{propertyService: ps, bookingService: bs, searchService: ss}
}

// ----------------------------------------------------------------
// GET /api/v1/properties/
// ----------------------------------------------------------------
func (c *PropertyController) ListHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		badQuery(w, err)
		return
	}
	q := dtos.ListPropertiesQuery{
		PageQuery: page,
		City:      r.URL.Query().Get("city"),
		Country:   r.URL.Query().Get("country"),
		Category:  r.URL.Query().Get("category"),
	}
	if q.MinPrice, err = optionalFloat(r, "min_price"); err != nil {
		badQuery(w, err)
		return
	}
	if q.MaxPrice, err = optionalFloat(r, "max_price"); err != nil {
		badQuery(w, err)
		return
	}
	if v := r.URL.Query().Get("guests"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			badQuery(w, fmt.Errorf("invalid guests %q", v))
			return
		}
		q.MinGuests = n
	}

	resp, err := c.propertyService.ListProperties(r.Context(), q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/properties/search/?q=
// ----------------------------------------------------------------
func (c *PropertyController) SearchHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.searchService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}/check_availability/
// ----------------------------------------------------------------
func (c *PropertyController) CheckAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.bookingService.CheckAvailability(
		r.Context(),
		id,
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
	)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}/
// ----------------------------------------------------------------
func (c *PropertyController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.propertyService.GetProperty(r.Context(), id, optionalUser(r))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/
// ----------------------------------------------------------------
func (c *PropertyController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dtos.CreatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.propertyService.CreateProperty(r.Context(), userID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// PUT /api/v1/properties/{id}/
// ----------------------------------------------------------------
func (c *PropertyController) ReplaceHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.CreatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.propertyService.ReplaceProperty(r.Context(), userID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// PATCH /api/v1/properties/{id}/
// ----------------------------------------------------------------
func (c *PropertyController) PatchHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.propertyService.PatchProperty(r.Context(), userID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// DELETE /api/v1/properties/{id}/
// ----------------------------------------------------------------
func (c *PropertyController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.propertyService.DeleteProperty(r.Context(), userID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/images/
// ----------------------------------------------------------------
func (c *PropertyController) AddImageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.AddPropertyImageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.propertyService.AddImage(r.Context(), userID, id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// DELETE /api/v1/properties/{id}/images/{imageID}/
// ----------------------------------------------------------------
func (c *PropertyController) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := pathUUID(w, r, "imageID")
	if !ok {
		return
	}
	if err := c.propertyService.DeleteImage(r.Context(), userID, id, imageID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
