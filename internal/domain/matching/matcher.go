package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/metrics"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/partnership"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/directory"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/geo"
)

// Scoring weights for the referral network matcher.
const (
	specialtyWeight = 40.0
	distanceCeiling = 30.0 // linear decay to zero at this many km
	qualityBonus    = 20.0
	capacityCap     = 15.0
	languageWeight  = 5.0
	minimumScore    = 30.0
	trendBonus      = 5.0
)

// FindReferralNetwork ranks active clinics that can take referrals for the
// requested specialty within the search radius. Candidates already partnered
// with the requester get a small bonus or penalty from their partnership's
// score trend.
func (s *Service) FindReferralNetwork(ctx context.Context, req NetworkRequest) (*NetworkResult, error) {
	if req.RadiusKm < 0 {
		return nil, apperr.BadRequest("radius must be >= 0")
	}

	requester, err := s.clinics.GetClinic(ctx, req.ClinicID)
	if err != nil {
		return nil, err
	}
	origin, err := requester.Location()
	if err != nil {
		return nil, apperr.BadRequest("requesting clinic has no resolvable location: %v", err)
	}

	existing, err := s.partnerships.ListForClinic(ctx, req.ClinicID,
		partnership.Filters{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	partnered := make(map[uuid.UUID]*partnership.Partnership, len(existing))
	for _, p := range existing {
		partnered[p.OtherClinic(req.ClinicID)] = p
	}

	exclude := make(map[uuid.UUID]bool, len(req.ExcludeClinicIDs))
	for _, id := range req.ExcludeClinicIDs {
		exclude[id] = true
	}

	pool, err := s.clinics.ListActiveClinics(ctx)
	if err != nil {
		return nil, err
	}

	candidates := []*NetworkCandidate{}
	for _, c := range pool {
		if c.ID == req.ClinicID || exclude[c.ID] || !c.HasSpecialty(req.Specialty) {
			continue
		}
		if len(req.RequiredServices) > 0 {
			offered, err := s.catalog.ServicesForClinic(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			if !containsAll(offered, req.RequiredServices) {
				continue
			}
		}

		loc, err := c.Location()
		if err != nil {
			s.logger.Debug().Str("clinic_id", c.ID.String()).Err(err).
				Msg("skipping candidate without resolvable location")
			continue
		}
		dist := geo.Distance(origin, loc)
		if dist > req.RadiusKm {
			continue
		}

		summary, err := s.reviews.Summary(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		volume, err := s.catalog.ServiceVolume(ctx, c.ID, req.Specialty)
		if err != nil {
			return nil, err
		}

		score := specialtyWeight
		if d := distanceCeiling - dist; d > 0 {
			score += d
		}
		if summary.QualifyingCount >= 1 {
			score += qualityBonus
		}
		if capacity := float64(volume) / 10; capacity < capacityCap {
			score += capacity
		} else {
			score += capacityCap
		}
		score += languageWeight * float64(overlap(req.PreferredLanguages, c.Languages))

		var trend string
		if p, ok := partnered[c.ID]; ok {
			trend, err = s.trends.Trend(ctx, p.ID)
			if err != nil {
				s.logger.Warn().Str("partnership_id", p.ID.String()).Err(err).
					Msg("trend lookup failed, scoring without it")
				trend = ""
			}
			switch trend {
			case metrics.TrendImproving:
				score += trendBonus
			case metrics.TrendDeclining:
				score -= trendBonus
			}
		}

		if score < minimumScore {
			continue
		}
		candidates = append(candidates, &NetworkCandidate{
			ClinicID:        c.ID,
			Name:            c.Name,
			Score:           score,
			DistanceKm:      dist,
			Rating:          summary.Rating,
			ServiceCapacity: volume,
			Trend:           trend,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].ClinicID.String() < candidates[j].ClinicID.String()
	})

	return &NetworkResult{
		Candidates:           candidates,
		ExistingPartnerships: existing,
	}, nil
}

func overlap(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	n := 0
	for _, s := range a {
		if set[s] {
			n++
			set[s] = false
		}
	}
	return n
}

func containsAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, s := range have {
		set[s] = true
	}
	for _, s := range want {
		if !set[s] {
			return false
		}
	}
	return true
}

// mutual returns the specialties two clinics share, preserving the
// requester's ordering.
func mutual(requester, candidate *directory.Clinic) []string {
	set := make(map[string]bool, len(candidate.Specialties))
	for _, s := range candidate.Specialties {
		set[s] = true
	}
	out := []string{}
	for _, s := range requester.Specialties {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
