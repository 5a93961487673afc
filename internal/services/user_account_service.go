package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

// Caller identifies the authenticated user. Admin is set from the token's
// role claim.
type Caller struct {
	ID    uuid.UUID
	Admin bool
}

type UserAccountService interface {
	// ListUserAccounts shows staff every account and everyone else only
	// the accounts they created.
	ListUserAccounts(ctx context.Context, caller Caller, q dtos.ListUserAccountsQuery) (*dtos.PageResponse[dtos.UserAccountResponse], error)
	GetUserAccount(ctx context.Context, caller Caller, id uuid.UUID) (*dtos.UserAccountResponse, error)
	CreateUserAccount(ctx context.Context, caller Caller, req dtos.CreateUserAccountRequest) (*dtos.UserAccountResponse, error)
	UpdateUserAccount(ctx context.Context, caller Caller, id uuid.UUID, req dtos.UpdateUserAccountRequest, partial bool) (*dtos.UserAccountResponse, error)
	DeleteUserAccount(ctx context.Context, caller Caller, id uuid.UUID) error
}

type userAccountService struct {
	accountRepo repositories.UserAccountRepository
	userRepo    repositories.UserRepository
}

func NewUserAccountService(accountRepo repositories.UserAccountRepository, userRepo repositories.UserRepository) UserAccountService {
	return &userAccountService{accountRepo: accountRepo, userRepo: userRepo}
}

// isStaff accepts either an admin token or the is_staff column.
func (s *userAccountService) isStaff(ctx context.Context, caller Caller) (bool, error) {
	if caller.Admin {
		return true, nil
	}
	u, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return false, utils.NewInternalError("Could not load user", err)
	}
	return u != nil && u.IsStaff, nil
}

func (s *userAccountService) ListUserAccounts(
	ctx context.Context,
	caller Caller,
	q dtos.ListUserAccountsQuery,
) (*dtos.PageResponse[dtos.UserAccountResponse], error) {
	orderBy, desc := "created_at", true
	if q.Ordering != "" {
		desc = strings.HasPrefix(q.Ordering, "-")
		orderBy = strings.TrimPrefix(q.Ordering, "-")
		if !repositories.IsValidUserAccountOrdering(orderBy) {
			return nil, utils.NewValidationError("ordering must be one of created_at, name, creator__username.", nil)
		}
	}

	staff, err := s.isStaff(ctx, caller)
	if err != nil {
		return nil, err
	}
	f := models.UserAccountFilter{
		Branch:          q.Branch,
		CreatorUsername: q.Username,
		Search:          q.Search,
		OrderBy:         orderBy,
		Descending:      desc,
		Limit:           q.PageSize,
		Offset:          q.Offset(),
	}
	if !staff {
		f.CreatorID = &caller.ID
	}

	list, total, err := s.accountRepo.List(ctx, f)
	if err != nil {
		return nil, utils.NewInternalError("Could not list user accounts", err)
	}
	return newPage(q.PageQuery, total, mapSlice(list, toUserAccountResponse)), nil
}

func (s *userAccountService) GetUserAccount(ctx context.Context, caller Caller, id uuid.UUID) (*dtos.UserAccountResponse, error) {
	ua, err := s.visibleAccount(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toUserAccountResponse(ua)
	return &resp, nil
}

func (s *userAccountService) CreateUserAccount(
	ctx context.Context,
	caller Caller,
	req dtos.CreateUserAccountRequest,
) (*dtos.UserAccountResponse, error) {
	ua := &models.UserAccount{
		ID:            uuid.New(),
		UserAccountID: strings.TrimSpace(req.UserAccountID),
		Name:          strings.TrimSpace(req.Name),
		Avatar:        req.Avatar,
		CreatorID:     caller.ID,
	}
	if ua.UserAccountID == "" || ua.Name == "" {
		return nil, utils.NewValidationError("useraccount_id and name are required.", nil)
	}
	if err := s.accountRepo.Create(ctx, ua); err != nil {
		return nil, mapUserAccountError(err)
	}
	return s.GetUserAccount(ctx, caller, ua.ID)
}

func (s *userAccountService) UpdateUserAccount(
	ctx context.Context,
	caller Caller,
	id uuid.UUID,
	req dtos.UpdateUserAccountRequest,
	partial bool,
) (*dtos.UserAccountResponse, error) {
	existing, err := s.visibleAccount(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatorID != caller.ID {
		return nil, utils.NewForbiddenError("Only the creator can change this account")
	}
	if !partial && (req.UserAccountID == nil || req.Name == nil) {
		return nil, utils.NewValidationError("useraccount_id and name are required.", nil)
	}

	ua := existing.UserAccount
	if req.UserAccountID != nil {
		ua.UserAccountID = strings.TrimSpace(*req.UserAccountID)
	}
	if req.Name != nil {
		ua.Name = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil || !partial {
		ua.Avatar = req.Avatar
	}
	if err := s.accountRepo.Update(ctx, &ua); err != nil {
		return nil, mapUserAccountError(err)
	}
	return s.GetUserAccount(ctx, caller, id)
}

func (s *userAccountService) DeleteUserAccount(ctx context.Context, caller Caller, id uuid.UUID) error {
	existing, err := s.visibleAccount(ctx, caller, id)
	if err != nil {
		return err
	}
	if existing.CreatorID != caller.ID {
		return utils.NewForbiddenError("Only the creator can delete this account")
	}
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "User account", "Could not delete user account")
	}
	return nil
}

// visibleAccount hides other users' accounts from non-staff callers.
func (s *userAccountService) visibleAccount(ctx context.Context, caller Caller, id uuid.UUID) (*models.UserAccountWithCreator, error) {
	ua, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load user account", err)
	}
	if ua == nil {
		return nil, utils.NewNotFoundError("User account not found")
	}
	if ua.CreatorID == caller.ID {
		return ua, nil
	}
	staff, err := s.isStaff(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !staff {
		return nil, utils.NewNotFoundError("User account not found")
	}
	return ua, nil
}

func mapUserAccountError(err error) error {
	if errors.Is(err, utils.ErrUserAccountIDExists) {
		return utils.NewConflictError("A user account with this useraccount_id already exists.", err)
	}
	if repositories.IsCheckViolation(err) {
		return utils.NewValidationError("useraccount_id must be 1 to 10 characters.", err)
	}
	return notFoundOr(err, "User account", "Could not save user account")
}
