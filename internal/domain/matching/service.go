package matching

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/partnership"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/directory"
)

// PartnershipSource reads the partnerships the matcher needs. Satisfied by
// the partnership repository.
type PartnershipSource interface {
	FindActiveByPair(ctx context.Context, a, b uuid.UUID) (*partnership.Partnership, error)
	ListForClinic(ctx context.Context, clinicID uuid.UUID, f partnership.Filters) ([]*partnership.Partnership, error)
}

// TrendSource reports the score trend of an existing partnership. Satisfied
// by the metrics service.
type TrendSource interface {
	Trend(ctx context.Context, partnershipID uuid.UUID) (string, error)
}

type Service struct {
	clinics      directory.ClinicDirectory
	reviews      directory.ReviewStore
	catalog      directory.ServiceCatalog
	partnerships PartnershipSource
	trends       TrendSource
	logger       zerolog.Logger
}

func NewService(
	clinics directory.ClinicDirectory,
	reviews directory.ReviewStore,
	catalog directory.ServiceCatalog,
	partnerships PartnershipSource,
	trends TrendSource,
	logger zerolog.Logger,
) *Service {
	return &Service{
		clinics:      clinics,
		reviews:      reviews,
		catalog:      catalog,
		partnerships: partnerships,
		trends:       trends,
		logger:       logger,
	}
}
