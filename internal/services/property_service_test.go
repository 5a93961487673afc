package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createReq(title, city string) dtos.CreatePropertyRequest {
	return dtos.CreatePropertyRequest{
		Title:         title,
		Address:       "2 Main St",
		City:          city,
		Country:       "Portugal",
		PricePerNight: utils.Ptr(95.5),
	}
}

func TestCreateProperty_Defaults(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")

	d, err := w.propertySvc.CreateProperty(ctx, owner.ID, createReq("Cottage", "Porto"))
	require.NoError(t, err)
	assert.Equal(t, "owner", d.Owner)
	assert.Equal(t, owner.ID, d.OwnerID)
	assert.True(t, d.IsActive)
	assert.Equal(t, 1, d.MaxGuests)
	assert.Equal(t, 1, d.Bedrooms)
	assert.Equal(t, 1, d.Bathrooms)
	assert.Equal(t, 95.5, d.PricePerNight)
	assert.Empty(t, d.Reviews)
	assert.Nil(t, d.AverageRating)
	assert.Contains(t, w.store.cleared, constants.SearchCachePrefix)
	assert.Contains(t, w.store.cleared, constants.PropertyListCachePrefix)
}

func TestCreateProperty_DeletedOwner(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	require.NoError(t, w.users.Delete(ctx, owner.ID))

	_, err := w.propertySvc.CreateProperty(ctx, owner.ID, createReq("Cottage", "Porto"))
	appErr := requireAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, constants.MsgUnknownCaller, appErr.Message)
	assert.Empty(t, w.props.rows)
	assert.Empty(t, w.store.cleared)

	t.Run("OwnerForeignKeyRace", func(t *testing.T) {
		fk := &pgconn.PgError{Code: "23503", ConstraintName: "properties_owner_id_fkey"}
		requireAppError(t, mapPropertyWriteError(fk), http.StatusUnauthorized)
	})
}

func TestGetProperty_InactiveVisibleOnlyToOwner(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	stranger := w.users.add("stranger")
	hidden := w.property(owner, false)

	_, err := w.propertySvc.GetProperty(ctx, hidden.ID, nil)
	requireAppError(t, err, http.StatusNotFound)

	_, err = w.propertySvc.GetProperty(ctx, hidden.ID, &stranger.ID)
	requireAppError(t, err, http.StatusNotFound)

	d, err := w.propertySvc.GetProperty(ctx, hidden.ID, &owner.ID)
	require.NoError(t, err)
	assert.False(t, d.IsActive)

	// A stranger touching a hidden listing learns nothing about it.
	requireAppError(t, w.propertySvc.DeleteProperty(ctx, stranger.ID, hidden.ID), http.StatusNotFound)
}

func TestGetProperty_Detail(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	guest := w.users.add("guest")
	p := w.property(owner, true)

	_, err := w.bookingSvc.CreateBooking(ctx, guest.ID, dtos.CreateBookingRequest{
		PropertyID: p.ID, StartDate: "2025-06-03", EndDate: "2025-06-07",
	})
	require.NoError(t, err)
	_, err = w.reviewSvc.CreateReview(ctx, guest.ID, dtos.CreateReviewRequest{PropertyID: p.ID, Rating: 4})
	require.NoError(t, err)
	_, err = w.reviewSvc.CreateReview(ctx, owner.ID, dtos.CreateReviewRequest{PropertyID: p.ID, Rating: 5})
	require.NoError(t, err)

	d, err := w.propertySvc.GetProperty(ctx, p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, d.ReviewCount)
	require.NotNil(t, d.AverageRating)
	assert.Equal(t, 4.5, *d.AverageRating)
	assert.Equal(t, []dtos.BookedDateRange{{StartDate: "2025-06-03", EndDate: "2025-06-07"}}, d.BookedDates)
}

func TestPatchProperty(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	stranger := w.users.add("stranger")
	p := w.property(owner, true)

	_, err := w.propertySvc.PatchProperty(ctx, stranger.ID, p.ID, dtos.UpdatePropertyRequest{Title: utils.Ptr("Mine now")})
	requireAppError(t, err, http.StatusForbidden)

	amenity := uuid.New()
	require.NoError(t, w.amenities.Create(ctx, &models.Amenity{ID: amenity, Name: "Wifi"}))
	d, err := w.propertySvc.PatchProperty(ctx, owner.ID, p.ID, dtos.UpdatePropertyRequest{
		PricePerNight: utils.Ptr(150.0),
		IsActive:      utils.Ptr(false),
		AmenityIDs:    &[]uuid.UUID{amenity},
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, d.PricePerNight)
	assert.False(t, d.IsActive)
	assert.Equal(t, "Harbour loft", d.Title, "untouched fields keep their value")
	assert.Equal(t, int64(2), d.RowVersion)
	assert.Equal(t, []uuid.UUID{amenity}, w.props.amenities[p.ID])

	// Deactivated: owner can still reactivate it.
	d, err = w.propertySvc.PatchProperty(ctx, owner.ID, p.ID, dtos.UpdatePropertyRequest{IsActive: utils.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, d.IsActive)
}

func TestPatchProperty_UnknownAmenityLeavesRowUntouched(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	p := w.property(owner, true)

	_, err := w.propertySvc.PatchProperty(ctx, owner.ID, p.ID, dtos.UpdatePropertyRequest{
		Title:      utils.Ptr("Renamed"),
		AmenityIDs: &[]uuid.UUID{uuid.New()},
	})
	requireAppError(t, err, http.StatusBadRequest)

	stored, err := w.props.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbour loft", stored.Title)
	assert.Equal(t, int64(1), stored.RowVersion)
	assert.Empty(t, w.props.amenities[p.ID])
	assert.Empty(t, w.store.cleared, "nothing changed, nothing to invalidate")
}

func TestReplaceProperty_ResetsOmittedFields(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	p := w.property(owner, true)

	d, err := w.propertySvc.ReplaceProperty(ctx, owner.ID, p.ID, createReq("Renamed", "Faro"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", d.Title)
	assert.Equal(t, "Faro", d.City)
	assert.Equal(t, 1, d.MaxGuests)
}

func TestListProperties_CachedUntilWrite(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	w.property(owner, true)
	w.property(owner, false)

	q := dtos.ListPropertiesQuery{PageQuery: dtos.PageQuery{Page: 1, PageSize: 10}}
	page, err := w.propertySvc.ListProperties(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count, "inactive listings are hidden")

	// Written behind the service's back: the cached page is still served.
	w.property(owner, true)
	page, err = w.propertySvc.ListProperties(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)

	_, err = w.propertySvc.CreateProperty(ctx, owner.ID, createReq("New", "Braga"))
	require.NoError(t, err)
	page, err = w.propertySvc.ListProperties(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
}

func TestPropertyImages(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	stranger := w.users.add("stranger")
	p := w.property(owner, true)
	other := w.property(owner, true)

	_, err := w.propertySvc.AddImage(ctx, stranger.ID, p.ID, dtos.AddPropertyImageRequest{Image: "a.jpg"})
	requireAppError(t, err, http.StatusForbidden)

	img, err := w.propertySvc.AddImage(ctx, owner.ID, p.ID, dtos.AddPropertyImageRequest{Image: "a.jpg"})
	require.NoError(t, err)

	requireAppError(t, w.propertySvc.DeleteImage(ctx, owner.ID, other.ID, img.ID), http.StatusNotFound)
	require.NoError(t, w.propertySvc.DeleteImage(ctx, owner.ID, p.ID, img.ID))
}

func TestDeleteProperty(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	owner := w.users.add("owner")
	stranger := w.users.add("stranger")
	p := w.property(owner, true)

	requireAppError(t, w.propertySvc.DeleteProperty(ctx, stranger.ID, p.ID), http.StatusForbidden)
	require.NoError(t, w.propertySvc.DeleteProperty(ctx, owner.ID, p.ID))
	_, err := w.propertySvc.GetProperty(ctx, p.ID, &owner.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestSearch(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	_, err := w.searchSvc.Search(ctx, "   ")
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, msgSearchQueryRequired, appErr.Message)

	cityMatch := &models.PropertyListing{Property: models.Property{ID: uuid.New(), Title: "Flat", City: "Lisbon"}, Rank: 0.6}
	descMatch := &models.PropertyListing{Property: models.Property{ID: uuid.New(), Title: "Cabin"}, Rank: 0.1}
	w.props.searchResults = []*models.PropertyListing{cityMatch, descMatch}

	results, err := w.searchSvc.Search(ctx, "Lisbon")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, cityMatch.ID, results[0].ID)
	require.NotNil(t, results[0].Rank)
	assert.InDelta(t, 0.6, *results[0].Rank, 1e-6)

	_, err = w.searchSvc.Search(ctx, "lisbon")
	require.NoError(t, err)
	assert.Equal(t, 1, w.props.searchCalls, "same query in another case hits the cache")

	require.NoError(t, w.searchSvc.RebuildIndex(ctx))
	_, err = w.searchSvc.Search(ctx, "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 1, w.props.searchCalls, "rebuilding an empty table leaves the cache alone")
}

func TestMapPropertyWriteError(t *testing.T) {
	t.Run("CheckViolationHidesDriverText", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:           "23514",
			Message:        `new row for relation "properties" violates check constraint "properties_price_per_night_check"`,
			ConstraintName: "properties_price_per_night_check",
		}
		appErr := requireAppError(t, mapPropertyWriteError(pgErr), http.StatusBadRequest)
		assert.Equal(t, "Invalid property data.", appErr.Message)
		assert.NotContains(t, appErr.Message, "properties_price_per_night_check")
		assert.ErrorIs(t, appErr, pgErr)
	})

	t.Run("ForeignKeyViolation", func(t *testing.T) {
		appErr := requireAppError(t, mapPropertyWriteError(&pgconn.PgError{Code: "23503"}), http.StatusBadRequest)
		assert.Equal(t, "Unknown category or amenity.", appErr.Message)
	})
}
