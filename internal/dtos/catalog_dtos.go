package dtos

import "github.com/google/uuid"

// CategoryRequest: an empty slug is derived from the name.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=100"`
}

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type AmenityRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AmenityResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
