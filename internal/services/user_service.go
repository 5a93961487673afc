package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/cache"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

type UserService interface {
	CreateUser(ctx context.Context, req dtos.CreateUserRequest) (*dtos.UserResponse, error)
	// GetMe includes how many properties and user accounts the caller owns.
	GetMe(ctx context.Context, userID uuid.UUID) (*dtos.UserResponse, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req dtos.UpdateUserRequest) (*dtos.UserResponse, error)
	DeleteMe(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	userRepo repositories.UserRepository
	store    cache.Store
}

func NewUserService(userRepo repositories.UserRepository, store cache.Store) UserService {
	return &userService{userRepo: userRepo, store: store}
}

func (s *userService) CreateUser(ctx context.Context, req dtos.CreateUserRequest) (*dtos.UserResponse, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.NewInternalError("Could not hash password", err)
	}
	u := &models.User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, mapUserError(err)
	}
	utils.Logger.Infof("User %s (%s) registered", u.ID, u.Username)
	return s.GetMe(ctx, u.ID)
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*dtos.UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load user", err)
	}
	if u == nil {
		return nil, utils.NewNotFoundError("User not found")
	}
	props, accounts, err := s.userRepo.Counts(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load user counts", err)
	}
	resp := toUserResponse(u)
	resp.PropertyCount = utils.Ptr(props)
	resp.UserAccountCount = utils.Ptr(accounts)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req dtos.UpdateUserRequest) (*dtos.UserResponse, error) {
	var newHash string
	if req.Password != nil {
		h, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, utils.NewInternalError("Could not hash password", err)
		}
		newHash = h
	}

	err := s.userRepo.UpdateWithRetry(ctx, userID, func(u *models.User) error {
		if req.Email != nil {
			u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.PhoneNumber != nil {
			if *req.PhoneNumber == "" {
				u.PhoneNumber = nil
			} else {
				u.PhoneNumber = req.PhoneNumber
			}
		}
		if newHash != "" {
			u.PasswordHash = newHash
		}
		return nil
	})
	if err != nil {
		return nil, mapUserError(err)
	}
	return s.GetMe(ctx, userID)
}

func (s *userService) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return notFoundOr(err, "User", "Could not delete user")
	}
	utils.Logger.Infof("User %s deleted", userID)
	// Their properties went with them through ON DELETE CASCADE.
	invalidate(ctx, s.store, constants.PropertyListCachePrefix, constants.SearchCachePrefix)
	return nil
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, utils.ErrUsernameExists):
		return utils.NewConflictError("A user with that username already exists.", err)
	case errors.Is(err, utils.ErrEmailExists):
		return utils.NewConflictError("A user with that email already exists.", err)
	case errors.Is(err, pgx.ErrNoRows):
		return utils.NewNotFoundError("User not found")
	case errors.Is(err, utils.ErrRowVersionConflict):
		return err
	default:
		return utils.NewInternalError("Could not save user", err)
	}
}
