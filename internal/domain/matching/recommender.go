package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/partnership"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/geo"
)

// Recommender scoring weights.
const (
	mutualWeight        = 15.0
	exactSpecialtyBonus = 25.0
	teamCap             = 20.0
	reviewCap           = 15.0
	recommendFloor      = 40.0
)

// RecommendPartnerships suggests new partners: active clinics the requester
// has no active partnership with, scored on specialty overlap, team size and
// review quality.
func (s *Service) RecommendPartnerships(ctx context.Context, req RecommendRequest) ([]*Recommendation, error) {
	if req.MaxDistanceKm < 0 {
		return nil, apperr.BadRequest("max distance must be >= 0")
	}
	if req.MaxResults < 0 {
		return nil, apperr.BadRequest("max results must be >= 0")
	}

	requester, err := s.clinics.GetClinic(ctx, req.ClinicID)
	if err != nil {
		return nil, err
	}
	origin, originErr := requester.Location()

	existing, err := s.partnerships.ListForClinic(ctx, req.ClinicID,
		partnership.Filters{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	partnered := make(map[uuid.UUID]bool, len(existing))
	for _, p := range existing {
		partnered[p.OtherClinic(req.ClinicID)] = true
	}

	pool, err := s.clinics.ListActiveClinics(ctx)
	if err != nil {
		return nil, err
	}

	recs := []*Recommendation{}
	for _, c := range pool {
		if c.ID == req.ClinicID || partnered[c.ID] {
			continue
		}
		if req.Specialty != "" && !c.HasSpecialty(req.Specialty) {
			continue
		}

		var dist float64
		if loc, err := c.Location(); err == nil && originErr == nil {
			dist = geo.Distance(origin, loc)
			if req.MaxDistanceKm > 0 && dist > req.MaxDistanceKm {
				continue
			}
		} else if req.MaxDistanceKm > 0 {
			// A distance bound with no resolvable position is a miss.
			continue
		}

		summary, err := s.reviews.Summary(ctx, c.ID)
		if err != nil {
			return nil, err
		}

		shared := mutual(requester, c)
		score := mutualWeight * float64(len(shared))
		if req.Specialty != "" && c.HasSpecialty(req.Specialty) {
			score += exactSpecialtyBonus
		}
		if team := 3 * float64(c.DoctorCount); team < teamCap {
			score += team
		} else {
			score += teamCap
		}
		if quality := 2 * float64(summary.QualifyingCount); quality < reviewCap {
			score += quality
		} else {
			score += reviewCap
		}
		if score < recommendFloor {
			continue
		}

		recs = append(recs, &Recommendation{
			ClinicID:          c.ID,
			Name:              c.Name,
			Score:             score,
			MutualSpecialties: shared,
			DoctorCount:       c.DoctorCount,
			DistanceKm:        dist,
			Reason:            reason(req.Specialty, c.HasSpecialty(req.Specialty), len(shared), c.DoctorCount),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ClinicID.String() < recs[j].ClinicID.String()
	})
	if req.MaxResults > 0 && len(recs) > req.MaxResults {
		recs = recs[:req.MaxResults]
	}
	return recs, nil
}

// reason picks the human-readable explanation by an ordered rule list, first
// match wins.
func reason(specialty string, hasSpecialty bool, mutualCount, doctorCount int) string {
	switch {
	case specialty != "" && hasSpecialty:
		return ReasonExactSpecialty
	case mutualCount > 2:
		return ReasonManyMutual
	case doctorCount > 10:
		return ReasonLargeTeam
	default:
		return ReasonStrategicLocation
	}
}
