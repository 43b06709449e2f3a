// Package directory gives read-only access to the external collaborators the
// matching engine depends on: the clinic master-data directory, the
// review/rating store, and the service catalog. Nothing in this package
// mutates those systems.
package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/geo"
)

// Clinic is the read-only master-data view of a clinic.
type Clinic struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	PostalCode  string    `json:"postal_code"`
	Specialties []string  `json:"specialties"`
	Languages   []string  `json:"languages"`
	DoctorCount int       `json:"doctor_count"`
	Active      bool      `json:"active"`
}

// Location resolves the clinic's position, preferring true coordinates and
// falling back to the coarse postal-code centroid.
func (c *Clinic) Location() (geo.Location, error) {
	if c.Latitude != nil && c.Longitude != nil {
		return geo.FromLatLon(*c.Latitude, *c.Longitude), nil
	}
	return geo.CoarseFromPostal(c.PostalCode)
}

// HasSpecialty reports whether the clinic lists the given specialty.
func (c *Clinic) HasSpecialty(specialty string) bool {
	for _, s := range c.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}

// ReviewSummary is the aggregate supplied by the external review/rating store.
type ReviewSummary struct {
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"review_count"`
	QualifyingCount int     `json:"qualifying_count"` // reviews with rating >= 4
}

// ClinicDirectory reads clinic master data.
type ClinicDirectory interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error)
	ListActiveClinics(ctx context.Context) ([]*Clinic, error)
}

// ReviewStore reads prior review/rating aggregates per clinic.
type ReviewStore interface {
	Summary(ctx context.Context, clinicID uuid.UUID) (*ReviewSummary, error)
}

// ServiceCatalog maps services to specialties and reports per-clinic volume.
type ServiceCatalog interface {
	// ServiceVolume returns how many service slots the clinic runs for the
	// given specialty, the capacity signal in partner scoring.
	ServiceVolume(ctx context.Context, clinicID uuid.UUID, specialty string) (int, error)
	// ServicesForClinic lists the service ids a clinic offers.
	ServicesForClinic(ctx context.Context, clinicID uuid.UUID) ([]string, error)
}
