package directory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
)

// HTTPDirectory calls a remote master-data service. Used when clinic data is
// not replicated locally (DIRECTORY_MODE=http). Implements ClinicDirectory,
// ReviewStore and ServiceCatalog.
type HTTPDirectory struct {
	client *resty.Client
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &HTTPDirectory{client: client}
}

func (d *HTTPDirectory) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	var clinic Clinic
	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&clinic).
		Get(fmt.Sprintf("/clinics/%s", id))
	if err != nil {
		return nil, apperr.Internal("directory get clinic: %v", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, apperr.NotFound("clinic %s", id)
	}
	if resp.IsError() {
		return nil, apperr.Internal("directory get clinic: status %d", resp.StatusCode())
	}
	return &clinic, nil
}

func (d *HTTPDirectory) ListActiveClinics(ctx context.Context) ([]*Clinic, error) {
	var clinics []*Clinic
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("active", "true").
		SetResult(&clinics).
		Get("/clinics")
	if err != nil {
		return nil, apperr.Internal("directory list clinics: %v", err)
	}
	if resp.IsError() {
		return nil, apperr.Internal("directory list clinics: status %d", resp.StatusCode())
	}
	return clinics, nil
}

func (d *HTTPDirectory) Summary(ctx context.Context, clinicID uuid.UUID) (*ReviewSummary, error) {
	var summary ReviewSummary
	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&summary).
		Get(fmt.Sprintf("/clinics/%s/review-summary", clinicID))
	if err != nil {
		return nil, apperr.Internal("directory review summary: %v", err)
	}
	if resp.IsError() {
		return nil, apperr.Internal("directory review summary: status %d", resp.StatusCode())
	}
	return &summary, nil
}

func (d *HTTPDirectory) ServiceVolume(ctx context.Context, clinicID uuid.UUID, specialty string) (int, error) {
	var out struct {
		Volume int `json:"volume"`
	}
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("specialty", specialty).
		SetResult(&out).
		Get(fmt.Sprintf("/clinics/%s/service-volume", clinicID))
	if err != nil {
		return 0, apperr.Internal("directory service volume: %v", err)
	}
	if resp.IsError() {
		return 0, apperr.Internal("directory service volume: status %d", resp.StatusCode())
	}
	return out.Volume, nil
}

func (d *HTTPDirectory) ServicesForClinic(ctx context.Context, clinicID uuid.UUID) ([]string, error) {
	var services []string
	resp, err := d.client.R().
		SetContext(ctx).
		SetResult(&services).
		Get(fmt.Sprintf("/clinics/%s/services", clinicID))
	if err != nil {
		return nil, apperr.Internal("directory clinic services: %v", err)
	}
	if resp.IsError() {
		return nil, apperr.Internal("directory clinic services: status %d", resp.StatusCode())
	}
	return services, nil
}
