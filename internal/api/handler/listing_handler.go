package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

// ListingHandler serves the apartment catalogue and announcements.
type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// ListApartments handles GET /apartments.
//
// @Summary      List apartments
// @Tags         apartments
// @Produce      json
// @Success      200  {array}  domain.Apartment
// @Router       /apartments [get]
func (h *ListingHandler) ListApartments(c echo.Context) error {
	list, err := h.service.ListApartments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetApartment handles GET /apartments/:id.
//
// @Summary      Get an apartment
// @Tags         apartments
// @Produce      json
// @Param        id   path      string  true  "Apartment id"
// @Success      200  {object}  domain.Apartment
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /apartments/{id} [get]
func (h *ListingHandler) GetApartment(c echo.Context) error {
	a, err := h.service.GetApartment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// ListAnnouncements handles GET /announcements.
//
// @Summary      List announcements
// @Tags         announcements
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Announcement
// @Failure      401  {object}  errorResponse
// @Router       /announcements [get]
func (h *ListingHandler) ListAnnouncements(c echo.Context) error {
	list, err := h.service.ListAnnouncements(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// PublishAnnouncement handles POST /announcements.
//
// @Summary      Publish an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      announcementRequest  true  "Announcement"
// @Success      201   {object}  domain.InsertResult
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /announcements [post]
func (h *ListingHandler) PublishAnnouncement(c echo.Context) error {
	var req announcementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.PublishAnnouncement(c.Request().Context(), domain.Announcement{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}
