package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount is a named public handle (UserAccountID) created by a user.
type UserAccount struct {
	ID            uuid.UUID `json:"id"`
	UserAccountID string    `json:"useraccount_id"`
	Name          string    `json:"name"`
	Avatar        *string   `json:"avatar,omitempty"`
	CreatorID     uuid.UUID `json:"creator_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserAccountWithCreator struct {
	UserAccount
	CreatorUsername string
}

// UserAccountFilter drives the filtered/ordered user-account listing.
type UserAccountFilter struct {
	// CreatorID scopes the list to one creator; nil means every creator.
	CreatorID       *uuid.UUID
	Branch          string
	CreatorUsername string
	Search          string
	OrderBy         string
	Descending      bool
	Limit           int
	Offset          int
}
