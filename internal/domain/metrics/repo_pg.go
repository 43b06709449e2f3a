package metrics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const mCols = `partnership_id, metric_date, referral_count, collaboration_score,
	patient_satisfaction, response_time_hours, updated_at`

func scanMetric(row pgx.Row) (*PartnershipMetric, error) {
	var m PartnershipMetric
	err := row.Scan(&m.PartnershipID, &m.MetricDate, &m.ReferralCount,
		&m.CollaborationScore, &m.PatientSatisfaction, &m.ResponseTimeHours, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repoPG) Upsert(ctx context.Context, m *PartnershipMetric) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO partnership_metric
			(partnership_id, metric_date, referral_count, collaboration_score,
			 patient_satisfaction, response_time_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (partnership_id, metric_date) DO UPDATE SET
			referral_count       = EXCLUDED.referral_count,
			collaboration_score  = EXCLUDED.collaboration_score,
			patient_satisfaction = EXCLUDED.patient_satisfaction,
			response_time_hours  = EXCLUDED.response_time_hours,
			updated_at           = now()`,
		m.PartnershipID, m.MetricDate, m.ReferralCount, m.CollaborationScore,
		m.PatientSatisfaction, m.ResponseTimeHours)
	if err != nil {
		return fmt.Errorf("upsert partnership metric: %w", err)
	}
	return nil
}

func (r *repoPG) LatestTwo(ctx context.Context, partnershipID uuid.UUID) ([]*PartnershipMetric, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+mCols+`
		FROM partnership_metric
		WHERE partnership_id = $1
		ORDER BY metric_date DESC
		LIMIT 2`, partnershipID)
	if err != nil {
		return nil, fmt.Errorf("query latest metrics: %w", err)
	}
	defer rows.Close()
	return collectMetrics(rows)
}

func (r *repoPG) ListForPartnerships(ctx context.Context, partnershipIDs []uuid.UUID, dr DateRange) ([]*PartnershipMetric, error) {
	if len(partnershipIDs) == 0 {
		return []*PartnershipMetric{}, nil
	}

	query := `SELECT ` + mCols + ` FROM partnership_metric WHERE partnership_id = ANY($1)`
	args := []interface{}{partnershipIDs}
	if !dr.From.IsZero() {
		args = append(args, dr.From)
		query += fmt.Sprintf(" AND metric_date >= $%d", len(args))
	}
	if !dr.To.IsZero() {
		args = append(args, dr.To)
		query += fmt.Sprintf(" AND metric_date <= $%d", len(args))
	}
	query += " ORDER BY partnership_id, metric_date DESC"

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list partnership metrics: %w", err)
	}
	defer rows.Close()
	return collectMetrics(rows)
}

func collectMetrics(rows pgx.Rows) ([]*PartnershipMetric, error) {
	out := []*PartnershipMetric{}
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partnership metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
