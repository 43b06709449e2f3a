package referral

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists referrals and serves the windowed reads the metrics
// aggregator recomputes from.
type Repository interface {
	Create(ctx context.Context, r *ServiceReferral) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceReferral, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	SetOutcome(ctx context.Context, id uuid.UUID, satisfaction, processingHours float64) error
	ListForClinic(ctx context.Context, clinicID uuid.UUID, f HistoryFilters) ([]*ServiceReferral, error)

	// CountForPartnership counts referrals tied to the partnership within
	// [from, to].
	CountForPartnership(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (int, error)
	// OutcomeMeansForPartnership returns the mean recorded satisfaction and
	// processing time over the window, with the number of samples backing
	// each mean. Referrals without a recorded value do not contribute.
	OutcomeMeansForPartnership(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) (satMean float64, satN int, procMean float64, procN int, err error)
}
