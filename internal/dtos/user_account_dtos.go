package dtos

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserAccountRequest struct {
	UserAccountID string  `json:"useraccount_id" validate:"required,max=10"`
	Name          string  `json:"name" validate:"required,max=100"`
	Avatar        *string `json:"avatar" validate:"omitempty,url"`
}

type UpdateUserAccountRequest struct {
	UserAccountID *string `json:"useraccount_id" validate:"omitempty,min=1,max=10"`
	Name          *string `json:"name" validate:"omitempty,min=1,max=100"`
	Avatar        *string `json:"avatar" validate:"omitempty,url"`
}

// ListUserAccountsQuery mirrors the branch/username/search/ordering
// query parameters of GET /useraccounts/.
type ListUserAccountsQuery struct {
	PageQuery
	Branch   string
	Username string
	Search   string
	Ordering string
}

type UserAccountResponse struct {
	ID            uuid.UUID `json:"id"`
	UserAccountID string    `json:"useraccount_id"`
	Name          string    `json:"name"`
	Avatar        *string   `json:"avatar"`
	CreatorID     uuid.UUID `json:"creator_id"`
	Creator       string    `json:"creator"`
	CreatedAt     time.Time `json:"created_at"`
}
