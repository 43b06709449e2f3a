package partnership

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/auth"
	"github.com/nordeim/Maria-Family-Clinic-sub005/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "staff")

	g := api.Group("", role)
	g.POST("/partnerships", h.CreatePartnership)
	g.PATCH("/partnerships/:id", h.UpdatePartnership)
	g.GET("/clinics/:id/partnerships", h.ListPartnerships)
	g.PUT("/collaborations", h.UpsertCollaboration)
	g.GET("/clinics/:id/collaborations", h.ListCollaborations)
}

func (h *Handler) CreatePartnership(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePartnership(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPartnerships(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	f := Filters{
		Type:       c.QueryParam("type"),
		Specialty:  c.QueryParam("specialty"),
		ActiveOnly: c.QueryParam("active") == "true",
	}
	views, err := h.svc.ListForClinic(c.Request().Context(), clinicID, f)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}

	p := pagination.FromContext(c)
	total := len(views)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views[start:end], total, p.Limit, p.Offset))
}

func (h *Handler) UpsertCollaboration(c echo.Context) error {
	var req UpsertCollaborationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	collab, err := h.svc.UpsertCollaboration(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, collab)
}

func (h *Handler) ListCollaborations(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	collabs, err := h.svc.ListCollaborations(c.Request().Context(), clinicID)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, collabs)
}
