package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const refCols = `id, referring_clinic_id, referred_clinic_id, partnership_id, service_id,
	patient_id, reason, urgency, status, referral_date,
	patient_satisfaction, processing_time_hours, created_at, updated_at`

func scanReferral(row pgx.Row) (*ServiceReferral, error) {
	var sr ServiceReferral
	err := row.Scan(&sr.ID, &sr.ReferringClinicID, &sr.ReferredClinicID, &sr.PartnershipID,
		&sr.ServiceID, &sr.PatientID, &sr.Reason, &sr.Urgency, &sr.Status, &sr.ReferralDate,
		&sr.PatientSatisfaction, &sr.ProcessingTimeHours, &sr.CreatedAt, &sr.UpdatedAt)
	return &sr, err
}

func (r *repoPG) Create(ctx context.Context, sr *ServiceReferral) error {
	sr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_referral (id, referring_clinic_id, referred_clinic_id,
			partnership_id, service_id, patient_id, reason, urgency, status, referral_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sr.ID, sr.ReferringClinicID, sr.ReferredClinicID, sr.PartnershipID,
		sr.ServiceID, sr.PatientID, sr.Reason, sr.Urgency, sr.Status, sr.ReferralDate)
	if err != nil {
		return apperr.Internal("create referral: %v", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceReferral, error) {
	sr, err := scanReferral(r.conn(ctx).QueryRow(ctx,
		`SELECT `+refCols+` FROM service_referral WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("referral %s", id)
	}
	if err != nil {
		return nil, apperr.Internal("get referral: %v", err)
	}
	return sr, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE service_referral SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return apperr.Internal("update referral status: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("referral %s", id)
	}
	return nil
}

func (r *repoPG) SetOutcome(ctx context.Context, id uuid.UUID, satisfaction, processingHours float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE service_referral
		SET patient_satisfaction = $2, processing_time_hours = $3, updated_at = NOW()
		WHERE id = $1`,
		id, satisfaction, processingHours)
	if err != nil {
		return apperr.Internal("set referral outcome: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("referral %s", id)
	}
	return nil
}

func (r *repoPG) ListForClinic(ctx context.Context, clinicID uuid.UUID, f HistoryFilters) ([]*ServiceReferral, error) {
	q := `SELECT ` + refCols + ` FROM service_referral
		WHERE (referring_clinic_id = $1 OR referred_clinic_id = $1)`
	args := []interface{}{clinicID}

	if f.PartnerClinicID != nil {
		args = append(args, *f.PartnerClinicID)
		q += fmt.Sprintf(" AND (referring_clinic_id = $%d OR referred_clinic_id = $%d)", len(args), len(args))
	}
	if f.ServiceID != "" {
		args = append(args, f.ServiceID)
		q += fmt.Sprintf(" AND service_id = $%d", len(args))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		q += fmt.Sprintf(" AND referral_date >= $%d", len(args))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		q += fmt.Sprintf(" AND referral_date <= $%d", len(args))
	}
	q += " ORDER BY referral_date DESC, id"

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("list referrals: %v", err)
	}
	defer rows.Close()

	var items []*ServiceReferral
	for rows.Next() {
		sr, err := scanReferral(rows)
		if err != nil {
			return nil, apperr.Internal("scan referral: %v", err)
		}
		items = append(items, sr)
	}
	return items, rows.Err()
}

func (r *repoPG) CountForPartnership(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM service_referral
		WHERE partnership_id = $1 AND referral_date >= $2 AND referral_date <= $3`,
		partnershipID, from, to).Scan(&count)
	if err != nil {
		return 0, apperr.Internal("count referrals: %v", err)
	}
	return count, nil
}

func (r *repoPG) OutcomeMeansForPartnership(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (float64, int, float64, int, error) {
	var satMean, procMean float64
	var satN, procN int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(AVG(patient_satisfaction), 0),
		       COUNT(patient_satisfaction),
		       COALESCE(AVG(processing_time_hours), 0),
		       COUNT(processing_time_hours)
		FROM service_referral
		WHERE partnership_id = $1 AND referral_date >= $2 AND referral_date <= $3`,
		partnershipID, from, to).
		Scan(&satMean, &satN, &procMean, &procN)
	if err != nil {
		return 0, 0, 0, 0, apperr.Internal("referral outcome means: %v", err)
	}
	return satMean, satN, procMean, procN, nil
}
