package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a rentable listing. SearchVector is maintained by the
// repository on every write and never read back into Go.
type Property struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	Country       string     `json:"country"`
	PricePerNight float64    `json:"price_per_night"`
	MaxGuests     int        `json:"max_guests"`
	Bedrooms      int        `json:"bedrooms"`
	Bathrooms     int        `json:"bathrooms"`
	MainImage     *string    `json:"main_image,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Versioned
}

// PropertyListing is a Property joined with its owner's username, as shown
// in list and search results.
type PropertyListing struct {
	Property
	OwnerUsername string
	Rank          float32
}

// PropertyFilter narrows the active-property list. Zero values are ignored.
type PropertyFilter struct {
	City         string
	Country      string
	CategorySlug string
	MinPrice     *float64
	MaxPrice     *float64
	MinGuests    int
	Limit        int
	Offset       int
}
