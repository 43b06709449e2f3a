package matching

import (
	"net/http"
	"strconv"
	"strings"

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

	api.GET("/clinics/:id/referral-network", h.FindReferralNetwork, role)
	api.GET("/clinics/:id/partnership-recommendations", h.RecommendPartnerships, role)
}

func (h *Handler) FindReferralNetwork(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}

	req := NetworkRequest{
		ClinicID:            clinicID,
		Specialty:           c.QueryParam("specialty"),
		SpecializationLevel: c.QueryParam("specialization_level"),
		RadiusKm:            30,
		PreferredLanguages:  splitParam(c.QueryParam("languages")),
		RequiredServices:    splitParam(c.QueryParam("required_services")),
	}
	if req.Specialty == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "specialty is required")
	}
	if v := c.QueryParam("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radius_km")
		}
		req.RadiusKm = r
	}
	for _, raw := range splitParam(c.QueryParam("exclude")) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude clinic id")
		}
		req.ExcludeClinicIDs = append(req.ExcludeClinicIDs, id)
	}

	result, err := h.svc.FindReferralNetwork(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) RecommendPartnerships(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}

	req := RecommendRequest{
		ClinicID:   clinicID,
		Specialty:  c.QueryParam("specialty"),
		MaxResults: 10,
	}
	if v := c.QueryParam("max_distance_km"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_distance_km")
		}
		req.MaxDistanceKm = d
	}
	if v := c.QueryParam("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_results")
		}
		req.MaxResults = n
	}

	recs, err := h.svc.RecommendPartnerships(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"recommendations": recs})
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
