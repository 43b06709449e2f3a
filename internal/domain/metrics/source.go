package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MetricSource supplies the satisfaction and response-time components of a
// daily rollup. The production source measures stored referral outcomes;
// tests substitute fixtures. Either way the output is a deterministic
// function of its inputs.
type MetricSource interface {
	Observe(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (satisfaction, responseHours float64, err error)
}

// ReferralOutcomes exposes the outcome aggregates the measured source needs.
// Satisfied by the referral repository.
type ReferralOutcomes interface {
	OutcomeMeansForPartnership(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (satMean float64, satN int, procMean float64, procN int, err error)
}

// MeasuredSource reads means over the window's resolved referrals. Windows
// with no recorded outcomes yield zeros.
type MeasuredSource struct {
	outcomes ReferralOutcomes
}

func NewMeasuredSource(outcomes ReferralOutcomes) *MeasuredSource {
	return &MeasuredSource{outcomes: outcomes}
}

func (s *MeasuredSource) Observe(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (float64, float64, error) {
	satMean, satN, procMean, procN, err := s.outcomes.OutcomeMeansForPartnership(ctx, partnershipID, from, to)
	if err != nil {
		return 0, 0, err
	}
	var sat, proc float64
	if satN > 0 {
		sat = satMean
	}
	if procN > 0 {
		proc = procMean
	}
	return sat, proc, nil
}
