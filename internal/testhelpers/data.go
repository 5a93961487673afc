package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/utils"
	"github.com/stretchr/testify/require"
)

// UniqueUsername generates a username no other test run will collide with.
func UniqueUsername(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CreateTestUser creates and persists a new user with password "password123".
func (h *TestHelper) CreateTestUser(ctx context.Context, prefix string) *models.User {
	hash, err := utils.HashPassword("password123")
	require.NoError(h.T, err)

	username := UniqueUsername(prefix)
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     prefix,
		PasswordHash: hash,
	}
	require.NoError(h.T, h.UserRepo.Create(ctx, u), "Failed to create test user")

	created, err := h.UserRepo.GetByID(ctx, u.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch user immediately after creation")
	return created
}

// CreateTestProperty persists a listing owned by ownerID. The title, city
// and description let search tests control which field a term hits.
func (h *TestHelper) CreateTestProperty(ctx context.Context, ownerID uuid.UUID, title, city, description string, active bool) *models.Property {
	p := &models.Property{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         title,
		Description:   description,
		Address:       "1 Test Street",
		City:          city,
		Country:       "Portugal",
		PricePerNight: 100,
		MaxGuests:     2,
		Bedrooms:      1,
		Bathrooms:     1,
		IsActive:      active,
	}
	require.NoError(h.T, h.PropertyRepo.Create(ctx, p, nil), "Failed to create test property")

	created, err := h.PropertyRepo.GetByID(ctx, p.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created)
	return created
}
