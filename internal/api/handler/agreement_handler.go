package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/api/middleware"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

// AgreementHandler serves tenancy applications and the admin review workflow.
type AgreementHandler struct {
	service ports.AgreementService
}

func NewAgreementHandler(service ports.AgreementService) *AgreementHandler {
	return &AgreementHandler{service: service}
}

// Create handles POST /agreements.
//
// @Summary      Apply for an apartment
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        body  body      agreementRequest  true  "Application"
// @Success      201   {object}  domain.InsertResult
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /agreements [post]
func (h *AgreementHandler) Create(c echo.Context) error {
	var req agreementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// List handles GET /agreements.
//
// @Summary      List agreements
// @Tags         agreements
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Agreement
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /agreements [get]
func (h *AgreementHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// FindByEmail handles GET /agreements/:email.
//
// @Summary      Agreement by applicant email
// @Tags         agreements
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Applicant email"
// @Success      200    {object}  domain.Agreement
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /agreements/{email} [get]
func (h *AgreementHandler) FindByEmail(c echo.Context) error {
	a, err := h.service.FindByEmail(c.Request().Context(), middleware.PathEmail(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Approve handles PATCH /agreements-accept/:id/:email. The response holds the
// agreement update first and the role update second.
//
// @Summary      Approve an agreement and promote the applicant
// @Tags         agreements
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Agreement id"
// @Param        email  path      string  true  "Applicant email"
// @Success      200    {array}   domain.UpdateResult
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      409    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /agreements-accept/{id}/{email} [patch]
func (h *AgreementHandler) Approve(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	res, err := h.service.Approve(c.Request().Context(), claims.Email, c.Param("id"), middleware.PathEmail(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, []any{res.Agreement, res.User})
}

// Reject handles PATCH /agreements-reject/:id.
//
// @Summary      Reject an agreement
// @Tags         agreements
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Agreement id"
// @Success      200 {object}  domain.UpdateResult
// @Failure      400 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /agreements-reject/{id} [patch]
func (h *AgreementHandler) Reject(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	res, err := h.service.Reject(c.Request().Context(), claims.Email, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// RemoveMember handles PATCH /member-remove/:id.
//
// @Summary      Demote a member to user
// @Tags         agreements
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200 {object}  domain.UpdateResult
// @Failure      400 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Router       /member-remove/{id} [patch]
func (h *AgreementHandler) RemoveMember(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	res, err := h.service.RemoveMember(c.Request().Context(), claims.Email, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
