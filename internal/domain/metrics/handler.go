package metrics

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "staff")

	api.GET("/clinics/:id/collaboration-metrics", h.GetCollaborationMetrics, role)
}

func (h *Handler) GetCollaborationMetrics(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}

	var dr DateRange
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		dr.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		dr.To = t
	}

	rows, err := h.svc.GetCollaborationMetrics(c.Request().Context(), clinicID, dr)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"metrics": rows})
}
