package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/cache"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

// CatalogService manages the category and amenity lookup tables. Reads
// are public and cached; writes are staff-only at the routing layer.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]dtos.CategoryResponse, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*dtos.CategoryResponse, error)
	CreateCategory(ctx context.Context, req dtos.CategoryRequest) (*dtos.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dtos.CategoryRequest) (*dtos.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListAmenities(ctx context.Context) ([]dtos.AmenityResponse, error)
	GetAmenity(ctx context.Context, id uuid.UUID) (*dtos.AmenityResponse, error)
	CreateAmenity(ctx context.Context, req dtos.AmenityRequest) (*dtos.AmenityResponse, error)
	UpdateAmenity(ctx context.Context, id uuid.UUID, req dtos.AmenityRequest) (*dtos.AmenityResponse, error)
	DeleteAmenity(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo repositories.CategoryRepository
	amenityRepo  repositories.AmenityRepository
	cache        cache.Store
}

func NewCatalogService(
	categoryRepo repositories.CategoryRepository,
	amenityRepo repositories.AmenityRepository,
	store cache.Store,
) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, amenityRepo: amenityRepo, cache: store}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dtos.CategoryResponse, error) {
	var cached []dtos.CategoryResponse
	if s.cache.Get(ctx, constants.CategoriesCacheKey, &cached) {
		return cached, nil
	}
	list, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Could not list categories", err)
	}
	out := mapSlice(list, toCategoryResponse)
	s.cache.Set(ctx, constants.CategoriesCacheKey, out, constants.CatalogCacheTTL)
	return out, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*dtos.CategoryResponse, error) {
	c, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load category", err)
	}
	if c == nil {
		return nil, utils.NewNotFoundError("Category not found")
	}
	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req dtos.CategoryRequest) (*dtos.CategoryResponse, error) {
	c := &models.Category{ID: uuid.New(), Name: req.Name, Slug: categorySlug(req)}
	if c.Slug == "" {
		return nil, utils.NewValidationError("slug could not be derived from name.", nil)
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, mapCatalogWriteError(err, "Category")
	}
	// Property listings filter by slug, so they go stale too.
	invalidate(ctx, s.cache, constants.CategoriesCacheKey, constants.PropertyListCachePrefix)
	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req dtos.CategoryRequest) (*dtos.CategoryResponse, error) {
	c := &models.Category{ID: id, Name: req.Name, Slug: categorySlug(req)}
	if c.Slug == "" {
		return nil, utils.NewValidationError("slug could not be derived from name.", nil)
	}
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, mapCatalogWriteError(err, "Category")
	}
	invalidate(ctx, s.cache, constants.CategoriesCacheKey, constants.PropertyListCachePrefix)
	resp := toCategoryResponse(c)
	return &resp, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Category", "Could not delete category")
	}
	invalidate(ctx, s.cache, constants.CategoriesCacheKey, constants.PropertyListCachePrefix)
	return nil
}

func (s *catalogService) ListAmenities(ctx context.Context) ([]dtos.AmenityResponse, error) {
	var cached []dtos.AmenityResponse
	if s.cache.Get(ctx, constants.AmenitiesCacheKey, &cached) {
		return cached, nil
	}
	list, err := s.amenityRepo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Could not list amenities", err)
	}
	out := mapSlice(list, toAmenityResponse)
	s.cache.Set(ctx, constants.AmenitiesCacheKey, out, constants.CatalogCacheTTL)
	return out, nil
}

func (s *catalogService) GetAmenity(ctx context.Context, id uuid.UUID) (*dtos.AmenityResponse, error) {
	a, err := s.amenityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load amenity", err)
	}
	if a == nil {
		return nil, utils.NewNotFoundError("Amenity not found")
	}
	resp := toAmenityResponse(a)
	return &resp, nil
}

func (s *catalogService) CreateAmenity(ctx context.Context, req dtos.AmenityRequest) (*dtos.AmenityResponse, error) {
	a := &models.Amenity{ID: uuid.New(), Name: req.Name}
	if err := s.amenityRepo.Create(ctx, a); err != nil {
		return nil, mapCatalogWriteError(err, "Amenity")
	}
	invalidate(ctx, s.cache, constants.AmenitiesCacheKey)
	resp := toAmenityResponse(a)
	return &resp, nil
}

func (s *catalogService) UpdateAmenity(ctx context.Context, id uuid.UUID, req dtos.AmenityRequest) (*dtos.AmenityResponse, error) {
	a := &models.Amenity{ID: id, Name: req.Name}
	if err := s.amenityRepo.Update(ctx, a); err != nil {
		return nil, mapCatalogWriteError(err, "Amenity")
	}
	invalidate(ctx, s.cache, constants.AmenitiesCacheKey)
	resp := toAmenityResponse(a)
	return &resp, nil
}

func (s *catalogService) DeleteAmenity(ctx context.Context, id uuid.UUID) error {
	if err := s.amenityRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Amenity", "Could not delete amenity")
	}
	invalidate(ctx, s.cache, constants.AmenitiesCacheKey)
	return nil
}

func categorySlug(req dtos.CategoryRequest) string {
	if req.Slug != "" {
		return Slugify(req.Slug)
	}
	return Slugify(req.Name)
}

func mapCatalogWriteError(err error, what string) error {
	if errors.Is(err, utils.ErrDuplicateSlug) {
		return utils.NewConflictError("A category with this slug already exists.", err)
	}
	return notFoundOr(err, what, "Could not save "+what)
}
