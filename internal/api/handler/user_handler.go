package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/api/middleware"
	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

// UserHandler serves identity registration, listing and the role self-checks.
type UserHandler struct {
	users      ports.UserService
	agreements ports.AgreementService
}

func NewUserHandler(users ports.UserService, agreements ports.AgreementService) *UserHandler {
	return &UserHandler{users: users, agreements: agreements}
}

// List handles GET /users.
//
// @Summary      List identities
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Register handles POST /users. Registering an existing email is a no-op.
//
// @Summary      Register an identity
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "Identity"
// @Success      201   {object}  domain.InsertResult
// @Success      200   {object}  alreadyExistsResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.users.Register(c.Request().Context(), domain.User{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	if res.AlreadyExists {
		return c.JSON(http.StatusOK, alreadyExistsResponse{Message: "user already exists"})
	}
	return c.JSON(http.StatusCreated, res.Insert)
}

// AdminStatus handles GET /users/admin/:email.
//
// @Summary      Check whether the caller is an admin
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Caller email"
// @Success      200    {object}  adminStatusResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users/admin/{email} [get]
func (h *UserHandler) AdminStatus(c echo.Context) error {
	ok, err := h.selfHasRole(c, domain.RoleAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminStatusResponse{Admin: ok})
}

// MemberStatus handles GET /users/member/:email.
//
// @Summary      Check whether the caller is a member
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Caller email"
// @Success      200    {object}  memberStatusResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users/member/{email} [get]
func (h *UserHandler) MemberStatus(c echo.Context) error {
	ok, err := h.selfHasRole(c, domain.RoleMember)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, memberStatusResponse{Member: ok})
}

// selfHasRole re-checks the path email against the token before disclosing
// anything, even when the route already carries the self guard.
func (h *UserHandler) selfHasRole(c echo.Context, role domain.Role) (bool, error) {
	claims, err := ctxClaims(c)
	if err != nil {
		return false, err
	}
	email := middleware.PathEmail(c, "email")
	if email != claims.Email {
		return false, domain.ErrForbidden
	}
	return h.users.HasRole(c.Request().Context(), email, role)
}

// AgreementByEmail handles GET /users/:email and returns the agreement filed
// under that email.
//
// @Summary      Agreement for an identity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Applicant email"
// @Success      200    {object}  domain.Agreement
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/{email} [get]
func (h *UserHandler) AgreementByEmail(c echo.Context) error {
	a, err := h.agreements.FindByEmail(c.Request().Context(), middleware.PathEmail(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
