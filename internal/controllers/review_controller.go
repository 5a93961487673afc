package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/services"
	"github.com/poofware/rental-service/internal/utils"
)

type ReviewController struct {
	reviewService services.ReviewService
}

func NewReviewController(rs services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: rs}
}

// GET /api/v1/reviews/?property_id=
func (c *ReviewController) ListHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageQuery(r)
	if err != nil {
		badQuery(w, err)
		return
	}
	var propertyID *uuid.UUID
	if v := r.URL.Query().Get("property_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			badQuery(w, err)
			return
		}
		propertyID = &id
	}
	resp, err := c.reviewService.ListReviews(r.Context(), propertyID, page)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/reviews/{id}/
func (c *ReviewController) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.reviewService.GetReview(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/reviews/
func (c *ReviewController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dtos.CreateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.reviewService.CreateReview(r.Context(), userID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// PUT and PATCH /api/v1/reviews/{id}/
func (c *ReviewController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.reviewService.UpdateReview(r.Context(), userID, id, req, r.Method == http.MethodPatch)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/reviews/{id}/
func (c *ReviewController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.reviewService.DeleteReview(r.Context(), userID, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
