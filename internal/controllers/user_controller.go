package controllers

import (
	"net/http"

	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/middleware"
	"github.com/poofware/rental-service/internal/services"
	"github.com/poofware/rental-service/internal/utils"
)

type UserController struct {
	userService        services.UserService
	userAccountService services.UserAccountService
}

func NewUserController(us services.UserService, uas services.UserAccountService) *UserController {
	return &UserController{userService: us, userAccountService: uas}
}

// POST /api/v1/users/
func (c *UserController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.userService.CreateUser(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/users/me/
func (c *UserController) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := c.userService.GetMe(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PATCH /api/v1/users/me/
func (c *UserController) PatchMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.userService.UpdateMe(r.Context(), userID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/users/me/
func (c *UserController) DeleteMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.userService.DeleteMe(r.Context(), userID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* ------------------------------------------------------------------
   /api/v1/useraccounts/
------------------------------------------------------------------ */

func (c *UserController) caller(w http.ResponseWriter, r *http.Request) (services.Caller, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return services.Caller{}, false
	}
	return services.Caller{ID: userID, Admin: middleware.IsAdmin(r.Context())}, true
}

// GET /api/v1/useraccounts/
func (c *UserController) ListUserAccountsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	page, err := parsePageQuery(r)
	if err != nil {
		badQuery(w, err)
		return
	}
	q := dtos.ListUserAccountsQuery{
		PageQuery: page,
		Branch:    r.URL.Query().Get("branch"),
		Username:  r.URL.Query().Get("username"),
		Search:    r.URL.Query().Get("search"),
		Ordering:  r.URL.Query().Get("ordering"),
	}
	resp, err := c.userAccountService.ListUserAccounts(r.Context(), caller, q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/useraccounts/
func (c *UserController) CreateUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	var req dtos.CreateUserAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.userAccountService.CreateUserAccount(r.Context(), caller, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/useraccounts/{id}/
func (c *UserController) GetUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	resp, err := c.userAccountService.GetUserAccount(r.Context(), caller, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PUT and PATCH /api/v1/useraccounts/{id}/
func (c *UserController) UpdateUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateUserAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.userAccountService.UpdateUserAccount(r.Context(), caller, id, req, r.Method == http.MethodPatch)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// DELETE /api/v1/useraccounts/{id}/
func (c *UserController) DeleteUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := c.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.userAccountService.DeleteUserAccount(r.Context(), caller, id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
