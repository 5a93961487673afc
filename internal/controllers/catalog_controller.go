package controllers

import (
	"net/http"

	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/services"
	"github.com/poofware/rental-service/internal/utils"
)

// CatalogController serves categories and amenities. Write routes are
// mounted behind AdminAuthMiddleware.
type CatalogController struct {
	catalogService services.CatalogService
}

func NewCatalogController(cs services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: cs}
}

// GET /api/v1/categories/
func (c *CatalogController) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.catalogService.ListCategories(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/categories/{id}/
func (c *CatalogController) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.catalogService.GetCategory(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/categories/
func (c *CatalogController) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.catalogService.CreateCategory(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// PUT /api/v1/categories/{id}/
func (c *CatalogController) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.catalogService.UpdateCategory(r.Context(), id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/categories/{id}/
func (c *CatalogController) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.catalogService.DeleteCategory(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/amenities/
func (c *CatalogController) ListAmenitiesHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.catalogService.ListAmenities(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/v1/amenities/{id}/
func (c *CatalogController) GetAmenityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.catalogService.GetAmenity(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/amenities/
func (c *CatalogController) CreateAmenityHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.AmenityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.catalogService.CreateAmenity(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// PUT /api/v1/amenities/{id}/
func (c *CatalogController) UpdateAmenityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.AmenityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.catalogService.UpdateAmenity(r.Context(), id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/amenities/{id}/
func (c *CatalogController) DeleteAmenityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.catalogService.DeleteAmenity(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
