package partnership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

const pCols = `id, primary_clinic_id, partner_clinic_id, pair_key, partnership_type,
	specialties, priority, is_active, effective_from, effective_to, terms, notes,
	created_at, updated_at`

func scanPartnership(row pgx.Row) (*Partnership, error) {
	var p Partnership
	var terms []byte
	err := row.Scan(&p.ID, &p.PrimaryClinicID, &p.PartnerClinicID, &p.PairKey, &p.Type,
		&p.Specialties, &p.Priority, &p.IsActive, &p.EffectiveFrom, &p.EffectiveTo,
		&terms, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(terms) > 0 {
		if err := json.Unmarshal(terms, &p.Terms); err != nil {
			return nil, fmt.Errorf("decode terms: %w", err)
		}
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, p *Partnership) error {
	p.ID = uuid.New()
	p.PairKey = PairKey(p.PrimaryClinicID, p.PartnerClinicID)

	terms, err := json.Marshal(p.Terms)
	if err != nil {
		return apperr.Internal("encode terms: %v", err)
	}

	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO partnership (id, primary_clinic_id, partner_clinic_id, pair_key,
			partnership_type, specialties, priority, is_active, effective_from,
			effective_to, terms, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.PrimaryClinicID, p.PartnerClinicID, p.PairKey,
		p.Type, p.Specialties, p.Priority, p.IsActive, p.EffectiveFrom,
		p.EffectiveTo, terms, p.Notes)
	if isUniqueViolation(err) {
		return apperr.Conflict("active partnership already exists for pair %s", p.PairKey)
	}
	if err != nil {
		return apperr.Internal("create partnership: %v", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Partnership, error) {
	p, err := scanPartnership(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pCols+` FROM partnership WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("partnership %s", id)
	}
	if err != nil {
		return nil, apperr.Internal("get partnership: %v", err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Partnership) error {
	terms, err := json.Marshal(p.Terms)
	if err != nil {
		return apperr.Internal("encode terms: %v", err)
	}

	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE partnership
		SET partnership_type=$2, priority=$3, is_active=$4, effective_to=$5,
			terms=$6, notes=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Type, p.Priority, p.IsActive, p.EffectiveTo, terms, p.Notes)
	if isUniqueViolation(err) {
		return apperr.Conflict("active partnership already exists for pair %s", p.PairKey)
	}
	if err != nil {
		return apperr.Internal("update partnership: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("partnership %s", p.ID)
	}
	return nil
}

func (r *repoPG) FindActiveByPair(ctx context.Context, a, b uuid.UUID) (*Partnership, error) {
	p, err := scanPartnership(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pCols+` FROM partnership WHERE pair_key = $1 AND is_active`, PairKey(a, b)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("find partnership by pair: %v", err)
	}
	return p, nil
}

func (r *repoPG) ListForClinic(ctx context.Context, clinicID uuid.UUID, f Filters) ([]*Partnership, error) {
	q := `SELECT ` + pCols + ` FROM partnership
		WHERE (primary_clinic_id = $1 OR partner_clinic_id = $1)`
	args := []interface{}{clinicID}

	if f.Type != "" {
		args = append(args, f.Type)
		q += fmt.Sprintf(" AND partnership_type = $%d", len(args))
	}
	if f.Specialty != "" {
		args = append(args, f.Specialty)
		q += fmt.Sprintf(" AND $%d = ANY(specialties)", len(args))
	}
	if f.ActiveOnly {
		q += " AND is_active"
	}
	q += ` ORDER BY CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END,
		created_at DESC`

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("list partnerships: %v", err)
	}
	defer rows.Close()

	var items []*Partnership
	for rows.Next() {
		p, err := scanPartnership(rows)
		if err != nil {
			return nil, apperr.Internal("scan partnership: %v", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) ActiveIDsForClinic(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id FROM partnership
		WHERE (primary_clinic_id = $1 OR partner_clinic_id = $1) AND is_active
		ORDER BY id`, clinicID)
	if err != nil {
		return nil, apperr.Internal("active partnership ids: %v", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal("scan partnership id: %v", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const cCols = `id, primary_clinic_id, partner_clinic_id, pair_key, collaboration_type,
	shared_services, protocol, quality_targets, is_active, created_at, updated_at`

func scanCollaboration(row pgx.Row) (*Collaboration, error) {
	var c Collaboration
	var protocol, targets []byte
	err := row.Scan(&c.ID, &c.PrimaryClinicID, &c.PartnerClinicID, &c.PairKey, &c.Type,
		&c.SharedServices, &protocol, &targets, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(protocol) > 0 {
		if err := json.Unmarshal(protocol, &c.Protocol); err != nil {
			return nil, fmt.Errorf("decode protocol: %w", err)
		}
	}
	if len(targets) > 0 {
		if err := json.Unmarshal(targets, &c.QualityTargets); err != nil {
			return nil, fmt.Errorf("decode quality targets: %w", err)
		}
	}
	return &c, nil
}

func (r *repoPG) UpsertCollaboration(ctx context.Context, c *Collaboration) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.PairKey = PairKey(c.PrimaryClinicID, c.PartnerClinicID)

	protocol, err := json.Marshal(c.Protocol)
	if err != nil {
		return apperr.Internal("encode protocol: %v", err)
	}
	targets, err := json.Marshal(c.QualityTargets)
	if err != nil {
		return apperr.Internal("encode quality targets: %v", err)
	}

	// Re-registering the same (pair, type) updates the active record in place.
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO collaboration (id, primary_clinic_id, partner_clinic_id, pair_key,
			collaboration_type, shared_services, protocol, quality_targets, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,TRUE)
		ON CONFLICT (pair_key, collaboration_type) WHERE is_active
		DO UPDATE SET shared_services = EXCLUDED.shared_services,
			protocol = EXCLUDED.protocol,
			quality_targets = EXCLUDED.quality_targets,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		c.ID, c.PrimaryClinicID, c.PartnerClinicID, c.PairKey,
		c.Type, c.SharedServices, protocol, targets).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return apperr.Internal("upsert collaboration: %v", err)
	}
	c.IsActive = true
	return nil
}

func (r *repoPG) ListCollaborationsForClinic(ctx context.Context, clinicID uuid.UUID) ([]*Collaboration, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cCols+` FROM collaboration
		WHERE (primary_clinic_id = $1 OR partner_clinic_id = $1) AND is_active
		ORDER BY created_at DESC`, clinicID)
	if err != nil {
		return nil, apperr.Internal("list collaborations: %v", err)
	}
	defer rows.Close()

	var items []*Collaboration
	for rows.Next() {
		c, err := scanCollaboration(rows)
		if err != nil {
			return nil, apperr.Internal("scan collaboration: %v", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
