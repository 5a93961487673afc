package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyImage is one gallery entry. Image holds the storage key or URL;
// the bytes live elsewhere.
type PropertyImage struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"created_at"`
}
