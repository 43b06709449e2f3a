package referral

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/partnership"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
)

// PartnershipLookup resolves the active partnership governing a clinic pair.
// Satisfied by partnership.Repository.
type PartnershipLookup interface {
	FindActiveByPair(ctx context.Context, a, b uuid.UUID) (*partnership.Partnership, error)
}

// MetricsRecomputer refreshes the daily metric rollup for a partnership.
// Satisfied by the metrics service.
type MetricsRecomputer interface {
	RecomputeDay(ctx context.Context, partnershipID uuid.UUID, day time.Time) error
}

type Service struct {
	repo         Repository
	partnerships PartnershipLookup
	metrics      MetricsRecomputer
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, partnerships PartnershipLookup, metrics MetricsRecomputer, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		partnerships: partnerships,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// RecordRequest carries a new referral.
type RecordRequest struct {
	ReferringClinicID uuid.UUID  `json:"referring_clinic_id"`
	ReferredClinicID  uuid.UUID  `json:"referred_clinic_id"`
	ServiceID         string     `json:"service_id"`
	PatientID         *uuid.UUID `json:"patient_id,omitempty"`
	Reason            string     `json:"reason"`
	Urgency           string     `json:"urgency"`
}

// RecordResult is the created referral plus an optional non-fatal warning
// when the metrics projection could not be refreshed.
type RecordResult struct {
	Referral       *ServiceReferral `json:"referral"`
	MetricsWarning string           `json:"metrics_warning,omitempty"`
}

// Record persists a referral between two partnered clinics. The referral is
// the source of truth; the metrics rollup is a derived projection, so a
// failed metrics update surfaces as a warning and never rolls the write back.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	if req.ReferringClinicID == req.ReferredClinicID {
		return nil, apperr.BadRequest("a clinic cannot refer to itself")
	}
	if req.ServiceID == "" {
		return nil, apperr.BadRequest("service_id is required")
	}
	if req.Urgency == "" {
		req.Urgency = UrgencyRoutine
	}
	if !ValidUrgencies[req.Urgency] {
		return nil, apperr.BadRequest("invalid urgency %q", req.Urgency)
	}

	p, err := s.partnerships.FindActiveByPair(ctx, req.ReferringClinicID, req.ReferredClinicID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.BadRequest("no active partnership between %s and %s",
			req.ReferringClinicID, req.ReferredClinicID)
	}

	sr := &ServiceReferral{
		ReferringClinicID: req.ReferringClinicID,
		ReferredClinicID:  req.ReferredClinicID,
		PartnershipID:     p.ID,
		ServiceID:         req.ServiceID,
		PatientID:         req.PatientID,
		Reason:            req.Reason,
		Urgency:           req.Urgency,
		Status:            StatusPending,
		ReferralDate:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sr); err != nil {
		return nil, err
	}

	result := &RecordResult{Referral: sr}
	if err := s.metrics.RecomputeDay(ctx, p.ID, sr.ReferralDate); err != nil {
		s.logger.Warn().Err(err).
			Str("referral_id", sr.ID.String()).
			Str("partnership_id", p.ID.String()).
			Msg("metrics update failed after referral write")
		result.MetricsWarning = "referral recorded; collaboration metrics update failed and will converge on the next recompute"
	}
	return result, nil
}

// UpdateStatus advances a referral through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next string) (*ServiceReferral, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(sr.Status, next) {
		return nil, apperr.BadRequest("cannot transition referral from %s to %s", sr.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	sr.Status = next

	if err := s.metrics.RecomputeDay(ctx, sr.PartnershipID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).
			Str("referral_id", sr.ID.String()).
			Msg("metrics update failed after status change")
	}
	return sr, nil
}

// RecordOutcome backfills satisfaction and processing time on a completed
// referral. Resolved referrals are otherwise immutable.
func (s *Service) RecordOutcome(ctx context.Context, id uuid.UUID, satisfaction, processingHours float64) (*ServiceReferral, error) {
	if satisfaction < 1 || satisfaction > 5 {
		return nil, apperr.BadRequest("satisfaction must be between 1 and 5")
	}
	if processingHours < 0 {
		return nil, apperr.BadRequest("processing time must be >= 0")
	}

	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr.Status != StatusCompleted {
		return nil, apperr.BadRequest("outcome can only be recorded on a COMPLETED referral, current status %s", sr.Status)
	}
	if err := s.repo.SetOutcome(ctx, id, satisfaction, processingHours); err != nil {
		return nil, err
	}
	sr.PatientSatisfaction = &satisfaction
	sr.ProcessingTimeHours = &processingHours

	if err := s.metrics.RecomputeDay(ctx, sr.PartnershipID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).
			Str("referral_id", sr.ID.String()).
			Msg("metrics update failed after outcome backfill")
	}
	return sr, nil
}

// GetHistory returns a clinic's referrals plus derived analytics.
func (s *Service) GetHistory(ctx context.Context, clinicID uuid.UUID, f HistoryFilters) (*History, error) {
	referrals, err := s.repo.ListForClinic(ctx, clinicID, f)
	if err != nil {
		return nil, err
	}
	return &History{
		Referrals: referrals,
		Analytics: computeAnalytics(clinicID, referrals),
	}, nil
}

func computeAnalytics(clinicID uuid.UUID, referrals []*ServiceReferral) Analytics {
	a := Analytics{
		ByUrgency: make(map[string]int),
		ByStatus:  make(map[string]int),
		ByService: make(map[string]int),
	}

	var procSum, satSum float64
	var procN, satN int
	for _, r := range referrals {
		if r.ReferringClinicID == clinicID {
			a.Outgoing++
		} else {
			a.Incoming++
		}
		a.ByUrgency[r.Urgency]++
		a.ByStatus[r.Status]++
		a.ByService[r.ServiceID]++
		if r.ProcessingTimeHours != nil {
			procSum += *r.ProcessingTimeHours
			procN++
		}
		if r.PatientSatisfaction != nil {
			satSum += *r.PatientSatisfaction
			satN++
		}
	}
	if procN > 0 {
		a.MeanProcessingHours = procSum / float64(procN)
	}
	if satN > 0 {
		a.MeanSatisfaction = satSum / float64(satN)
	}
	return a
}
