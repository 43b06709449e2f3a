package metrics

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists daily metric rollups. Upsert is keyed on
// (partnership_id, metric_date) so concurrent recomputations of the same day
// converge on the last writer's row, which recomputed the same inputs.
type Repository interface {
	Upsert(ctx context.Context, m *PartnershipMetric) error
	// LatestTwo returns up to two rows for the partnership, most recent first.
	LatestTwo(ctx context.Context, partnershipID uuid.UUID) ([]*PartnershipMetric, error)
	ListForPartnerships(ctx context.Context, partnershipIDs []uuid.UUID, r DateRange) ([]*PartnershipMetric, error)
}
