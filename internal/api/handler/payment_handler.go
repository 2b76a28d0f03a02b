package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/api/middleware"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreateIntent handles POST /create-payment-intent.
//
// @Summary      Create a card payment intent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      paymentIntentRequest  true  "Price in major currency units"
// @Success      200   {object}  clientSecretResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	secret, err := h.service.CreateIntent(c.Request().Context(), req.Price)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientSecretResponse{ClientSecret: secret})
}

// ListByEmail handles GET /payments/:email.
//
// @Summary      Payment history
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Member email"
// @Success      200    {array}   domain.Payment
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /payments/{email} [get]
func (h *PaymentHandler) ListByEmail(c echo.Context) error {
	list, err := h.service.ListByEmail(c.Request().Context(), middleware.PathEmail(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Record handles POST /payments. A repeated Idempotency-Key from the same
// member is rejected with 409.
//
// @Summary      Record a rent payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "Client generated request key"
// @Param        body             body      paymentRequest  true   "Payment"
// @Success      201              {object}  domain.InsertResult
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /payments [post]
func (h *PaymentHandler) Record(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req paymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	res, err := h.service.Record(c.Request().Context(), claims.Email, req.toDomain(), key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}
