package dtos

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,max=150"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8,max=128"`
	FirstName   string  `json:"first_name" validate:"max=150"`
	LastName    string  `json:"last_name" validate:"max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,e164"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=128"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,e164"`
}

type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	PhoneNumber      *string   `json:"phone_number"`
	IsStaff          bool      `json:"is_staff"`
	PropertyCount    *int      `json:"property_count,omitempty"`
	UserAccountCount *int      `json:"useraccount_count,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
