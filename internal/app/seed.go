package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

// Fixed IDs so that seeding is idempotent and tests can refer to them.
const (
	SeedHostUserID  = "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaa1"
	SeedGuestUserID = "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaa2"
	seedPassword    = "password123"
)

type SeedRepos struct {
	Users      repositories.UserRepository
	Properties repositories.PropertyRepository
	Categories repositories.CategoryRepository
	Amenities  repositories.AmenityRepository
	Bookings   repositories.BookingRepository
	Reviews    repositories.ReviewRepository
}

// SeedAllTestData loads a small demo catalogue. The host user doubles as
// the sentinel: if it exists, nothing is written.
func SeedAllTestData(ctx context.Context, r SeedRepos) error {
	hostID := uuid.MustParse(SeedHostUserID)
	if existing, err := r.Users.GetByID(ctx, hostID); err != nil {
		return fmt.Errorf("check sentinel user: %w", err)
	} else if existing != nil {
		utils.Logger.Info("rental-service: Seed data already present; skipping seeding.")
		return nil
	}

	hash, err := utils.HashPassword(seedPassword)
	if err != nil {
		return err
	}
	host := &models.User{
		ID: hostID, Username: "demo-host", Email: "host@poofstays.test",
		FirstName: "Demo", LastName: "Host", PhoneNumber: utils.Ptr("+15555550106"),
		PasswordHash: hash, IsStaff: true,
	}
	guest := &models.User{
		ID: uuid.MustParse(SeedGuestUserID), Username: "demo-guest", Email: "guest@poofstays.test",
		FirstName: "Demo", LastName: "Guest", PasswordHash: hash,
	}
	for _, u := range []*models.User{host, guest} {
		if err := r.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	apartment := &models.Category{ID: uuid.New(), Name: "Apartment", Slug: "apartment"}
	cabin := &models.Category{ID: uuid.New(), Name: "Cabin", Slug: "cabin"}
	for _, c := range []*models.Category{apartment, cabin} {
		if err := r.Categories.Create(ctx, c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
	}

	var amenityIDs []uuid.UUID
	for _, name := range []string{"Wi-Fi", "Kitchen", "Parking", "Air conditioning"} {
		a := &models.Amenity{ID: uuid.New(), Name: name}
		if err := r.Amenities.Create(ctx, a); err != nil {
			return fmt.Errorf("seed amenity %s: %w", name, err)
		}
		amenityIDs = append(amenityIDs, a.ID)
	}

	props := []*models.Property{
		{
			Title: "Harbour view loft", City: "Lisbon", Country: "Portugal",
			Address: "12 Rua do Alecrim", Description: "Bright loft above the river.",
			PricePerNight: 140, MaxGuests: 3, Bedrooms: 1, Bathrooms: 1, CategoryID: &apartment.ID,
		},
		{
			Title: "Pine cabin", City: "Geres", Country: "Portugal",
			Address: "Estrada Florestal 4", Description: "Two hours from Lisbon, deep in the forest.",
			PricePerNight: 95, MaxGuests: 5, Bedrooms: 2, Bathrooms: 1, CategoryID: &cabin.ID,
		},
		{
			Title: "Old town studio", City: "Porto", Country: "Portugal",
			Address: "8 Rua das Flores", Description: "Compact studio next to the cathedral.",
			PricePerNight: 70, MaxGuests: 2, Bedrooms: 1, Bathrooms: 1, CategoryID: &apartment.ID,
		},
	}
	for _, p := range props {
		p.ID = uuid.New()
		p.OwnerID = hostID
		p.IsActive = true
		if err := r.Properties.Create(ctx, p, amenityIDs[:2]); err != nil {
			return fmt.Errorf("seed property %q: %w", p.Title, err)
		}
	}

	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 14)
	end := start.AddDate(0, 0, 3)
	b := &models.Booking{
		ID:         uuid.New(),
		PropertyID: props[0].ID,
		GuestID:    guest.ID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: float64(utils.Nights(start, end)) * props[0].PricePerNight,
	}
	if err := r.Bookings.Create(ctx, b); err != nil {
		return fmt.Errorf("seed booking: %w", err)
	}

	rv := &models.Review{
		ID: uuid.New(), PropertyID: props[0].ID, AuthorID: guest.ID,
		Rating: 5, Comment: "Great light and a great host.",
	}
	if err := r.Reviews.Create(ctx, rv); err != nil {
		return fmt.Errorf("seed review: %w", err)
	}

	utils.Logger.Info("rental-service: Seeding completed successfully.")
	return nil
}
