package services

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/cache"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// notFoundOr maps a repository "no row" into a 404 and anything else into
// a 500 with the given public message.
func notFoundOr(err error, what, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NewNotFoundError(what + " not found")
	}
	return utils.NewInternalError(msg, err)
}

// requireCaller loads the authenticated user. A token can outlive its user,
// which is reported as 401 rather than surfacing later as a foreign key
// failure.
func requireCaller(ctx context.Context, users repositories.UserRepository, id uuid.UUID) (*models.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load user", err)
	}
	if u == nil {
		return nil, utils.NewUnauthorizedError(constants.MsgUnknownCaller)
	}
	return u, nil
}

// visibleTo reports whether the caller may see the property. Inactive
// listings are only visible to their owner.
func visibleTo(p *models.Property, caller *uuid.UUID) bool {
	if p == nil {
		return false
	}
	return p.IsActive || (caller != nil && *caller == p.OwnerID)
}

func newPage[T any](q dtos.PageQuery, total int, results []T) *dtos.PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	return &dtos.PageResponse[T]{Count: total, Page: q.Page, PageSize: q.PageSize, Results: results}
}

func toPropertySummary(l *models.PropertyListing, withRank bool) dtos.PropertySummary {
	s := dtos.PropertySummary{
		ID:            l.ID,
		Title:         l.Title,
		City:          l.City,
		Country:       l.Country,
		PricePerNight: l.PricePerNight,
		MainImage:     l.MainImage,
		Owner:         l.OwnerUsername,
	}
	if withRank {
		s.Rank = utils.Ptr(l.Rank)
	}
	return s
}

func toBookingResponse(b *models.Booking) dtos.BookingResponse {
	return dtos.BookingResponse{
		ID:         b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		StartDate:  utils.FormatDate(b.StartDate),
		EndDate:    utils.FormatDate(b.EndDate),
		Nights:     utils.Nights(b.StartDate, b.EndDate),
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func toReviewResponse(r *models.ReviewWithAuthor) dtos.ReviewResponse {
	return dtos.ReviewResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		AuthorID:   r.AuthorID,
		Author:     r.AuthorUsername,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toCategoryResponse(c *models.Category) dtos.CategoryResponse {
	return dtos.CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func toAmenityResponse(a *models.Amenity) dtos.AmenityResponse {
	return dtos.AmenityResponse{ID: a.ID, Name: a.Name}
}

func toPropertyImage(img *models.PropertyImage) dtos.PropertyImage {
	return dtos.PropertyImage{ID: img.ID, Image: img.Image, CreatedAt: img.CreatedAt}
}

func toUserResponse(u *models.User) dtos.UserResponse {
	return dtos.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		IsStaff:     u.IsStaff,
		CreatedAt:   u.CreatedAt,
	}
}

func toUserAccountResponse(ua *models.UserAccountWithCreator) dtos.UserAccountResponse {
	return dtos.UserAccountResponse{
		ID:            ua.ID,
		UserAccountID: ua.UserAccountID,
		Name:          ua.Name,
		Avatar:        ua.Avatar,
		CreatorID:     ua.CreatorID,
		Creator:       ua.CreatorUsername,
		CreatedAt:     ua.CreatedAt,
	}
}

func mapSlice[S any, D any](in []S, f func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

// invalidate drops cached listings after a write.
func invalidate(ctx context.Context, store cache.Store, prefixes ...string) {
	for _, p := range prefixes {
		store.DeletePrefix(ctx, p)
	}
}
