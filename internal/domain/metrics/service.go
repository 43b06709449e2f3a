package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReferralCounter counts referrals in a window. Satisfied by the referral
// repository.
type ReferralCounter interface {
	CountForPartnership(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (int, error)
}

// PartnershipIndex resolves a clinic's active partnership ids. Satisfied by
// the partnership repository.
type PartnershipIndex interface {
	ActiveIDsForClinic(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error)
}

type Service struct {
	repo         Repository
	referrals    ReferralCounter
	source       MetricSource
	partnerships PartnershipIndex
	logger       zerolog.Logger
}

func NewService(repo Repository, referrals ReferralCounter, source MetricSource, partnerships PartnershipIndex, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		referrals:    referrals,
		source:       source,
		partnerships: partnerships,
		logger:       logger,
	}
}

// metricDate truncates to the UTC calendar day, the rollup's grain.
func metricDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RecomputeDay rebuilds the rollup for one partnership and day from stored
// referrals in the trailing window. Running it twice produces the same row,
// so concurrent writers converge rather than clobber each other.
func (s *Service) RecomputeDay(ctx context.Context, partnershipID uuid.UUID, day time.Time) error {
	date := metricDate(day)
	from := date.AddDate(0, 0, -(windowDays - 1))
	to := date.Add(24*time.Hour - time.Nanosecond)

	count, err := s.referrals.CountForPartnership(ctx, partnershipID, from, to)
	if err != nil {
		return err
	}
	satisfaction, responseHours, err := s.source.Observe(ctx, partnershipID, from, to)
	if err != nil {
		return err
	}

	score := 50 + 10*float64(count)
	if score > 100 {
		score = 100
	}

	return s.repo.Upsert(ctx, &PartnershipMetric{
		PartnershipID:       partnershipID,
		MetricDate:          date,
		ReferralCount:       count,
		CollaborationScore:  score,
		PatientSatisfaction: satisfaction,
		ResponseTimeHours:   responseHours,
	})
}

// SeedDay writes the zero-valued baseline row for a freshly created
// partnership. Later recomputations overwrite it in place.
func (s *Service) SeedDay(ctx context.Context, partnershipID uuid.UUID, day time.Time) error {
	return s.repo.Upsert(ctx, &PartnershipMetric{
		PartnershipID: partnershipID,
		MetricDate:    metricDate(day),
	})
}

// Trend compares the two most recent daily scores. Moves of more than five
// points count as improving or declining; five or less, or fewer than two
// rows, is stable.
func (s *Service) Trend(ctx context.Context, partnershipID uuid.UUID) (string, error) {
	rows, err := s.repo.LatestTwo(ctx, partnershipID)
	if err != nil {
		return "", err
	}
	if len(rows) < 2 {
		return TrendStable, nil
	}
	delta := rows[0].CollaborationScore - rows[1].CollaborationScore
	switch {
	case delta > 5:
		return TrendImproving, nil
	case delta < -5:
		return TrendDeclining, nil
	default:
		return TrendStable, nil
	}
}

// GetCollaborationMetrics returns the daily rows for every active
// partnership of the clinic within the range. A clinic with no partnerships
// gets an empty list.
func (s *Service) GetCollaborationMetrics(ctx context.Context, clinicID uuid.UUID, dr DateRange) ([]*PartnershipMetric, error) {
	ids, err := s.partnerships.ActiveIDsForClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForPartnerships(ctx, ids, dr)
}
