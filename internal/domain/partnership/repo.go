package partnership

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists partnerships and collaborations. FindActiveByPair
// returns (nil, nil) when no active partnership covers the pair; the unique
// index on the canonical pair key is the real duplicate guard, the lookup is
// an optimization.
type Repository interface {
	Create(ctx context.Context, p *Partnership) error
	GetByID(ctx context.Context, id uuid.UUID) (*Partnership, error)
	Update(ctx context.Context, p *Partnership) error
	FindActiveByPair(ctx context.Context, a, b uuid.UUID) (*Partnership, error)
	ListForClinic(ctx context.Context, clinicID uuid.UUID, f Filters) ([]*Partnership, error)
	ActiveIDsForClinic(ctx context.Context, clinicID uuid.UUID) ([]uuid.UUID, error)

	UpsertCollaboration(ctx context.Context, c *Collaboration) error
	ListCollaborationsForClinic(ctx context.Context, clinicID uuid.UUID) ([]*Collaboration, error)
}
