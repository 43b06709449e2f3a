package partnership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/directory"
)

// MetricSeeder initializes the daily metric row for a new partnership.
// Implemented by the metrics aggregator; wired at construction.
type MetricSeeder interface {
	SeedDay(ctx context.Context, partnershipID uuid.UUID, day time.Time) error
}

type Service struct {
	repo    Repository
	clinics directory.ClinicDirectory
	metrics MetricSeeder
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, clinics directory.ClinicDirectory, metrics MetricSeeder, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		clinics: clinics,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateRequest carries the attributes of a new partnership.
type CreateRequest struct {
	PrimaryClinicID uuid.UUID `json:"primary_clinic_id"`
	PartnerClinicID uuid.UUID `json:"partner_clinic_id"`
	Type            string    `json:"partnership_type"`
	Specialties     []string  `json:"specialties"`
	Priority        string    `json:"priority"`
	Terms           Terms     `json:"terms"`
	Notes           *string   `json:"notes,omitempty"`
}

// Create registers a partnership between two clinics. The pair is symmetric:
// at most one active partnership may exist regardless of orientation.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Partnership, error) {
	if req.PrimaryClinicID == req.PartnerClinicID {
		return nil, apperr.BadRequest("a clinic cannot partner with itself")
	}
	if !ValidTypes[req.Type] {
		return nil, apperr.BadRequest("invalid partnership type %q", req.Type)
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !ValidPriorities[req.Priority] {
		return nil, apperr.BadRequest("invalid priority %q", req.Priority)
	}

	// Both clinics must resolve in the directory.
	if _, err := s.clinics.GetClinic(ctx, req.PrimaryClinicID); err != nil {
		return nil, err
	}
	if _, err := s.clinics.GetClinic(ctx, req.PartnerClinicID); err != nil {
		return nil, err
	}

	// Fast duplicate check; the partial unique index on pair_key remains the
	// authority under concurrent creates.
	existing, err := s.repo.FindActiveByPair(ctx, req.PrimaryClinicID, req.PartnerClinicID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("active partnership %s already covers this pair", existing.ID)
	}

	p := &Partnership{
		PrimaryClinicID: req.PrimaryClinicID,
		PartnerClinicID: req.PartnerClinicID,
		Type:            req.Type,
		Specialties:     req.Specialties,
		Priority:        req.Priority,
		IsActive:        true,
		EffectiveFrom:   s.now().UTC(),
		Terms:           req.Terms,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// Metrics are a derived projection; a seeding failure never undoes the
	// partnership write.
	if err := s.metrics.SeedDay(ctx, p.ID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).
			Str("partnership_id", p.ID.String()).
			Msg("failed to seed partnership metrics")
	}

	return p, nil
}

// Update applies a partial update of mutable fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Partnership, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Type != nil {
		if !ValidTypes[*patch.Type] {
			return nil, apperr.BadRequest("invalid partnership type %q", *patch.Type)
		}
		p.Type = *patch.Type
	}
	if patch.Priority != nil {
		if !ValidPriorities[*patch.Priority] {
			return nil, apperr.BadRequest("invalid priority %q", *patch.Priority)
		}
		p.Priority = *patch.Priority
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
		if !p.IsActive && patch.EffectiveTo == nil && p.EffectiveTo == nil {
			now := s.now().UTC()
			p.EffectiveTo = &now
		}
	}
	if patch.EffectiveTo != nil {
		p.EffectiveTo = patch.EffectiveTo
	}
	if patch.Terms != nil {
		p.Terms = *patch.Terms
	}
	if patch.Notes != nil {
		p.Notes = patch.Notes
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListForClinic returns the clinic's partnerships from its own perspective:
// each entry names the other clinic as the partner and the caller's role.
func (s *Service) ListForClinic(ctx context.Context, clinicID uuid.UUID, f Filters) ([]*View, error) {
	items, err := s.repo.ListForClinic(ctx, clinicID, f)
	if err != nil {
		return nil, err
	}

	views := make([]*View, len(items))
	for i, p := range items {
		role := "partner"
		if p.PrimaryClinicID == clinicID {
			role = "primary"
		}
		views[i] = &View{Partnership: p, Partner: p.OtherClinic(clinicID), Role: role}
	}
	return views, nil
}

// UpsertCollaborationRequest registers or refreshes a typed collaboration.
type UpsertCollaborationRequest struct {
	PrimaryClinicID uuid.UUID      `json:"primary_clinic_id"`
	PartnerClinicID uuid.UUID      `json:"partner_clinic_id"`
	Type            string         `json:"collaboration_type"`
	SharedServices  []string       `json:"shared_services"`
	Protocol        Protocol       `json:"protocol"`
	QualityTargets  QualityTargets `json:"quality_targets"`
}

func (s *Service) UpsertCollaboration(ctx context.Context, req UpsertCollaborationRequest) (*Collaboration, error) {
	if req.PrimaryClinicID == req.PartnerClinicID {
		return nil, apperr.BadRequest("a clinic cannot collaborate with itself")
	}
	if !ValidCollaborationTypes[req.Type] {
		return nil, apperr.BadRequest("invalid collaboration type %q", req.Type)
	}
	if _, err := s.clinics.GetClinic(ctx, req.PrimaryClinicID); err != nil {
		return nil, err
	}
	if _, err := s.clinics.GetClinic(ctx, req.PartnerClinicID); err != nil {
		return nil, err
	}

	c := &Collaboration{
		PrimaryClinicID: req.PrimaryClinicID,
		PartnerClinicID: req.PartnerClinicID,
		Type:            req.Type,
		SharedServices:  req.SharedServices,
		Protocol:        req.Protocol,
		QualityTargets:  req.QualityTargets,
	}
	if err := s.repo.UpsertCollaboration(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCollaborations returns the clinic's active collaborations.
func (s *Service) ListCollaborations(ctx context.Context, clinicID uuid.UUID) ([]*Collaboration, error) {
	return s.repo.ListCollaborationsForClinic(ctx, clinicID)
}
