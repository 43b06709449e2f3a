package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
)

// PGDirectory reads clinic master data, review aggregates and the service
// catalog from local replica tables. It implements ClinicDirectory,
// ReviewStore and ServiceCatalog.
type PGDirectory struct {
	pool *pgxpool.Pool
}

func NewPGDirectory(pool *pgxpool.Pool) *PGDirectory {
	return &PGDirectory{pool: pool}
}

const clinicCols = `id, name, latitude, longitude, postal_code,
	specialties, languages, doctor_count, active`

func scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.PostalCode,
		&c.Specialties, &c.Languages, &c.DoctorCount, &c.Active)
	return &c, err
}

func (d *PGDirectory) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	c, err := scanClinic(d.pool.QueryRow(ctx, `SELECT `+clinicCols+` FROM clinic WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("clinic %s", id)
	}
	if err != nil {
		return nil, apperr.Internal("get clinic: %v", err)
	}
	return c, nil
}

func (d *PGDirectory) ListActiveClinics(ctx context.Context) ([]*Clinic, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+clinicCols+` FROM clinic WHERE active ORDER BY id`)
	if err != nil {
		return nil, apperr.Internal("list clinics: %v", err)
	}
	defer rows.Close()

	var clinics []*Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, apperr.Internal("scan clinic: %v", err)
		}
		clinics = append(clinics, c)
	}
	return clinics, rows.Err()
}

func (d *PGDirectory) Summary(ctx context.Context, clinicID uuid.UUID) (*ReviewSummary, error) {
	var s ReviewSummary
	err := d.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(rating), 0),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE rating >= 4)
		FROM clinic_review WHERE clinic_id = $1`, clinicID).
		Scan(&s.Rating, &s.ReviewCount, &s.QualifyingCount)
	if err != nil {
		return nil, apperr.Internal("review summary: %v", err)
	}
	return &s, nil
}

func (d *PGDirectory) ServiceVolume(ctx context.Context, clinicID uuid.UUID, specialty string) (int, error) {
	var volume int
	err := d.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(monthly_volume), 0)
		FROM clinic_service WHERE clinic_id = $1 AND specialty = $2`, clinicID, specialty).
		Scan(&volume)
	if err != nil {
		return 0, apperr.Internal("service volume: %v", err)
	}
	return volume, nil
}

func (d *PGDirectory) ServicesForClinic(ctx context.Context, clinicID uuid.UUID) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT service_id FROM clinic_service WHERE clinic_id = $1 ORDER BY service_id`, clinicID)
	if err != nil {
		return nil, apperr.Internal("clinic services: %v", err)
	}
	defer rows.Close()

	var services []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, apperr.Internal("scan service: %v", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
