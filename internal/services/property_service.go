package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/cache"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

type PropertyService interface {
	ListProperties(ctx context.Context, q dtos.ListPropertiesQuery) (*dtos.PageResponse[dtos.PropertySummary], error)
	// GetProperty returns the full detail view. caller is nil for
	// anonymous requests; inactive listings are only shown to their owner.
	GetProperty(ctx context.Context, id uuid.UUID, caller *uuid.UUID) (*dtos.PropertyDetail, error)
	CreateProperty(ctx context.Context, ownerID uuid.UUID, req dtos.CreatePropertyRequest) (*dtos.PropertyDetail, error)
	ReplaceProperty(ctx context.Context, callerID, id uuid.UUID, req dtos.CreatePropertyRequest) (*dtos.PropertyDetail, error)
	PatchProperty(ctx context.Context, callerID, id uuid.UUID, req dtos.UpdatePropertyRequest) (*dtos.PropertyDetail, error)
	DeleteProperty(ctx context.Context, callerID, id uuid.UUID) error

	AddImage(ctx context.Context, callerID, propertyID uuid.UUID, req dtos.AddPropertyImageRequest) (*dtos.PropertyImage, error)
	DeleteImage(ctx context.Context, callerID, propertyID, imageID uuid.UUID) error
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	bookingRepo  repositories.BookingRepository
	reviewRepo   repositories.ReviewRepository
	categoryRepo repositories.CategoryRepository
	amenityRepo  repositories.AmenityRepository
	imageRepo    repositories.PropertyImageRepository
	userRepo     repositories.UserRepository
	cache        cache.Store
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	bookingRepo repositories.BookingRepository,
	reviewRepo repositories.ReviewRepository,
	categoryRepo repositories.CategoryRepository,
	amenityRepo repositories.AmenityRepository,
	imageRepo repositories.PropertyImageRepository,
	userRepo repositories.UserRepository,
	store cache.Store,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		reviewRepo:   reviewRepo,
		categoryRepo: categoryRepo,
		amenityRepo:  amenityRepo,
		imageRepo:    imageRepo,
		userRepo:     userRepo,
		cache:        store,
	}
}

/* ------------------------------------------------------------------
   Reads
------------------------------------------------------------------ */

func (s *propertyService) ListProperties(
	ctx context.Context,
	q dtos.ListPropertiesQuery,
) (*dtos.PageResponse[dtos.PropertySummary], error) {
	key := cache.Key(constants.PropertyListCachePrefix, listCacheParams(q))

	var cached dtos.PageResponse[dtos.PropertySummary]
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	listings, total, err := s.propertyRepo.ListActive(ctx, models.PropertyFilter{
		City:         q.City,
		Country:      q.Country,
		CategorySlug: q.Category,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		MinGuests:    q.MinGuests,
		Limit:        q.PageSize,
		Offset:       q.Offset(),
	})
	if err != nil {
		return nil, utils.NewInternalError("Could not list properties", err)
	}

	page := newPage(q.PageQuery, total, mapSlice(listings, func(l *models.PropertyListing) dtos.PropertySummary {
		return toPropertySummary(l, false)
	}))
	s.cache.Set(ctx, key, page, constants.PropertyListCacheTTL)
	return page, nil
}

func listCacheParams(q dtos.ListPropertiesQuery) map[string]string {
	params := map[string]string{
		"page":      strconv.Itoa(q.Page),
		"page_size": strconv.Itoa(q.PageSize),
		"city":      q.City,
		"country":   q.Country,
		"category":  q.Category,
		"guests":    strconv.Itoa(q.MinGuests),
	}
	if q.MinPrice != nil {
		params["min_price"] = strconv.FormatFloat(*q.MinPrice, 'f', -1, 64)
	}
	if q.MaxPrice != nil {
		params["max_price"] = strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64)
	}
	return params
}

func (s *propertyService) GetProperty(ctx context.Context, id uuid.UUID, caller *uuid.UUID) (*dtos.PropertyDetail, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if !visibleTo(p, caller) {
		return nil, utils.NewNotFoundError("Property not found")
	}
	return s.buildDetail(ctx, p)
}

func (s *propertyService) buildDetail(ctx context.Context, p *models.Property) (*dtos.PropertyDetail, error) {
	d := &dtos.PropertyDetail{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Title:         p.Title,
		Description:   p.Description,
		Address:       p.Address,
		City:          p.City,
		Country:       p.Country,
		PricePerNight: p.PricePerNight,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		MainImage:     p.MainImage,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		RowVersion:    p.RowVersion,
	}

	owner, err := s.userRepo.GetByID(ctx, p.OwnerID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property owner", err)
	}
	if owner != nil {
		d.Owner = owner.Username
	}

	if p.CategoryID != nil {
		c, err := s.categoryRepo.GetByID(ctx, *p.CategoryID)
		if err != nil {
			return nil, utils.NewInternalError("Could not load category", err)
		}
		if c != nil {
			cr := toCategoryResponse(c)
			d.Category = &cr
		}
	}

	amenities, err := s.amenityRepo.ListByProperty(ctx, p.ID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load amenities", err)
	}
	d.Amenities = mapSlice(amenities, toAmenityResponse)

	images, err := s.imageRepo.ListByProperty(ctx, p.ID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load images", err)
	}
	d.Images = mapSlice(images, toPropertyImage)

	reviews, _, err := s.reviewRepo.List(ctx, &p.ID, 0, 0)
	if err != nil {
		return nil, utils.NewInternalError("Could not load reviews", err)
	}
	d.Reviews = mapSlice(reviews, toReviewResponse)

	summary, err := s.reviewRepo.Summary(ctx, p.ID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load rating summary", err)
	}
	d.ReviewCount = summary.Count
	if summary.Count > 0 {
		avg := round2(summary.Average)
		d.AverageRating = &avg
	}

	ranges, err := s.bookingRepo.ListBookedRanges(ctx, p.ID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load booked dates", err)
	}
	d.BookedDates = mapSlice(ranges, func(r models.DateRange) dtos.BookedDateRange {
		return dtos.BookedDateRange{StartDate: utils.FormatDate(r.Start), EndDate: utils.FormatDate(r.End)}
	})
	return d, nil
}

/* ------------------------------------------------------------------
   Writes
------------------------------------------------------------------ */

func (s *propertyService) CreateProperty(
	ctx context.Context,
	ownerID uuid.UUID,
	req dtos.CreatePropertyRequest,
) (*dtos.PropertyDetail, error) {
	if _, err := requireCaller(ctx, s.userRepo, ownerID); err != nil {
		return nil, err
	}
	p := &models.Property{ID: uuid.New(), OwnerID: ownerID}
	applyCreateRequest(p, req)

	if err := s.propertyRepo.Create(ctx, p, req.AmenityIDs); err != nil {
		return nil, mapPropertyWriteError(err)
	}
	utils.Logger.Infof("Property %s created by %s", p.ID, ownerID)
	s.invalidateListings(ctx)

	return s.reload(ctx, p.ID)
}

func (s *propertyService) ReplaceProperty(
	ctx context.Context,
	callerID, id uuid.UUID,
	req dtos.CreatePropertyRequest,
) (*dtos.PropertyDetail, error) {
	return s.update(ctx, callerID, id, func(p *models.Property) {
		applyCreateRequest(p, req)
	}, &req.AmenityIDs)
}

func (s *propertyService) PatchProperty(
	ctx context.Context,
	callerID, id uuid.UUID,
	req dtos.UpdatePropertyRequest,
) (*dtos.PropertyDetail, error) {
	return s.update(ctx, callerID, id, func(p *models.Property) {
		applyPatchRequest(p, req)
	}, req.AmenityIDs)
}

// update applies change under optimistic locking after checking that the
// caller owns the property. A non-nil amenityIDs replaces the amenity set
// in the same transaction as the row.
func (s *propertyService) update(
	ctx context.Context,
	callerID, id uuid.UUID,
	change func(*models.Property),
	amenityIDs *[]uuid.UUID,
) (*dtos.PropertyDetail, error) {
	if _, err := s.ownedProperty(ctx, callerID, id); err != nil {
		return nil, err
	}

	err := s.propertyRepo.UpdateWithRetry(ctx, id, amenityIDs, func(p *models.Property) error {
		if p.OwnerID != callerID {
			return utils.ErrNotOwner
		}
		change(p)
		return nil
	})
	if err != nil {
		return nil, mapPropertyWriteError(err)
	}
	s.invalidateListings(ctx)
	return s.reload(ctx, id)
}

func (s *propertyService) DeleteProperty(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.ownedProperty(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Property", "Could not delete property")
	}
	utils.Logger.Infof("Property %s deleted by %s", id, callerID)
	s.invalidateListings(ctx)
	return nil
}

func (s *propertyService) AddImage(
	ctx context.Context,
	callerID, propertyID uuid.UUID,
	req dtos.AddPropertyImageRequest,
) (*dtos.PropertyImage, error) {
	if _, err := s.ownedProperty(ctx, callerID, propertyID); err != nil {
		return nil, err
	}
	img := &models.PropertyImage{ID: uuid.New(), PropertyID: propertyID, Image: req.Image}
	if err := s.imageRepo.Create(ctx, img); err != nil {
		return nil, mapPropertyWriteError(err)
	}
	out := toPropertyImage(img)
	return &out, nil
}

func (s *propertyService) DeleteImage(ctx context.Context, callerID, propertyID, imageID uuid.UUID) error {
	if _, err := s.ownedProperty(ctx, callerID, propertyID); err != nil {
		return err
	}
	img, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return utils.NewInternalError("Could not load image", err)
	}
	if img == nil || img.PropertyID != propertyID {
		return utils.NewNotFoundError("Image not found")
	}
	if err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return notFoundOr(err, "Image", "Could not delete image")
	}
	return nil
}

// ownedProperty loads a property for mutation. Hidden listings are 404,
// visible listings owned by someone else are 403.
func (s *propertyService) ownedProperty(ctx context.Context, callerID, id uuid.UUID) (*models.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if !visibleTo(p, &callerID) {
		return nil, utils.NewNotFoundError("Property not found")
	}
	if p.OwnerID != callerID {
		return nil, utils.NewForbiddenError("You do not own this property")
	}
	return p, nil
}

func (s *propertyService) reload(ctx context.Context, id uuid.UUID) (*dtos.PropertyDetail, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if p == nil {
		return nil, utils.NewNotFoundError("Property not found")
	}
	return s.buildDetail(ctx, p)
}

func (s *propertyService) invalidateListings(ctx context.Context) {
	invalidate(ctx, s.cache, constants.PropertyListCachePrefix, constants.SearchCachePrefix)
}

func applyCreateRequest(p *models.Property, req dtos.CreatePropertyRequest) {
	p.Title = req.Title
	p.Description = req.Description
	p.Address = req.Address
	p.City = req.City
	p.Country = req.Country
	p.PricePerNight = utils.Val(req.PricePerNight)
	p.MaxGuests = intOr(req.MaxGuests, 1)
	p.Bedrooms = intOr(req.Bedrooms, 1)
	p.Bathrooms = intOr(req.Bathrooms, 1)
	p.CategoryID = req.CategoryID
	p.MainImage = req.MainImage
	p.IsActive = req.IsActive == nil || *req.IsActive
}

func applyPatchRequest(p *models.Property, req dtos.UpdatePropertyRequest) {
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.PricePerNight != nil {
		p.PricePerNight = *req.PricePerNight
	}
	if req.MaxGuests != nil {
		p.MaxGuests = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.MainImage != nil {
		p.MainImage = req.MainImage
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func mapPropertyWriteError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNotOwner):
		return utils.NewForbiddenError("You do not own this property")
	case errors.Is(err, pgx.ErrNoRows):
		return utils.NewNotFoundError("Property not found")
	case errors.Is(err, utils.ErrRowVersionConflict):
		return err
	case repositories.IsForeignKeyViolationOn(err, repositories.FKPropertyOwner):
		return utils.NewUnauthorizedError(constants.MsgUnknownCaller)
	case repositories.IsForeignKeyViolation(err):
		return utils.NewValidationError("Unknown category or amenity.", err)
	case repositories.IsCheckViolation(err):
		return utils.NewValidationError("Invalid property data.", err)
	default:
		return utils.NewInternalError("Could not save property", err)
	}
}
