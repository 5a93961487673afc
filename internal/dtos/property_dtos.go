package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
CreatePropertyRequest is the body of POST /properties/ and PUT
/properties/{id}/. Omitted counts default to 1 and is_active to true.
*/
type CreatePropertyRequest struct {
	Title         string      `json:"title" validate:"required,max=200"`
	Description   string      `json:"description"`
	Address       string      `json:"address" validate:"required,max=255"`
	City          string      `json:"city" validate:"required,max=100"`
	Country       string      `json:"country" validate:"required,max=100"`
	PricePerNight *float64    `json:"price_per_night" validate:"required,gte=0,lt=100000000"`
	MaxGuests     *int        `json:"max_guests" validate:"omitempty,gte=1"`
	Bedrooms      *int        `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms     *int        `json:"bathrooms" validate:"omitempty,gte=0"`
	CategoryID    *uuid.UUID  `json:"category_id"`
	AmenityIDs    []uuid.UUID `json:"amenity_ids"`
	MainImage     *string     `json:"main_image" validate:"omitempty,max=500"`
	IsActive      *bool       `json:"is_active"`
}

// UpdatePropertyRequest is the PATCH body; only non-nil fields change.
type UpdatePropertyRequest struct {
	Title         *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string      `json:"description"`
	Address       *string      `json:"address" validate:"omitempty,min=1,max=255"`
	City          *string      `json:"city" validate:"omitempty,min=1,max=100"`
	Country       *string      `json:"country" validate:"omitempty,min=1,max=100"`
	PricePerNight *float64     `json:"price_per_night" validate:"omitempty,gte=0,lt=100000000"`
	MaxGuests     *int         `json:"max_guests" validate:"omitempty,gte=1"`
	Bedrooms      *int         `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms     *int         `json:"bathrooms" validate:"omitempty,gte=0"`
	CategoryID    *uuid.UUID   `json:"category_id"`
	AmenityIDs    *[]uuid.UUID `json:"amenity_ids"`
	MainImage     *string      `json:"main_image" validate:"omitempty,max=500"`
	IsActive      *bool        `json:"is_active"`
}

// ListPropertiesQuery carries the optional filters of GET /properties/.
type ListPropertiesQuery struct {
	PageQuery
	City      string
	Country   string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	MinGuests int
}

type PropertySummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	PricePerNight float64   `json:"price_per_night"`
	MainImage     *string   `json:"main_image"`
	Owner         string    `json:"owner"`
	Rank          *float32  `json:"rank,omitempty"`
}

type PropertyDetail struct {
	ID            uuid.UUID         `json:"id"`
	Owner         string            `json:"owner"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Address       string            `json:"address"`
	City          string            `json:"city"`
	Country       string            `json:"country"`
	PricePerNight float64           `json:"price_per_night"`
	MaxGuests     int               `json:"max_guests"`
	Bedrooms      int               `json:"bedrooms"`
	Bathrooms     int               `json:"bathrooms"`
	Category      *CategoryResponse `json:"category"`
	Amenities     []AmenityResponse `json:"amenities"`
	MainImage     *string           `json:"main_image"`
	Images        []PropertyImage   `json:"images"`
	IsActive      bool              `json:"is_active"`
	Reviews       []ReviewResponse  `json:"reviews"`
	ReviewCount   int               `json:"review_count"`
	AverageRating *float64          `json:"average_rating"`
	BookedDates   []BookedDateRange `json:"booked_dates"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	RowVersion    int64             `json:"row_version"`
}

// BookedDateRange is a taken [start_date, end_date) span.
type BookedDateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type AvailabilityResponse struct {
	IsAvailable bool   `json:"is_available"`
	Message     string `json:"message"`
}

type AddPropertyImageRequest struct {
	Image string `json:"image" validate:"required,max=500"`
}

type PropertyImage struct {
	ID        uuid.UUID `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}
