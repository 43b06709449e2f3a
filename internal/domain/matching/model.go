package matching

import (
	"github.com/google/uuid"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/partnership"
)

// NetworkRequest asks for referral targets around a clinic for one specialty.
type NetworkRequest struct {
	ClinicID            uuid.UUID
	Specialty           string
	SpecializationLevel string
	RadiusKm            float64
	PreferredLanguages  []string
	RequiredServices    []string
	ExcludeClinicIDs    []uuid.UUID
}

// NetworkCandidate is one ranked referral target. Trend is set only when the
// requester already has an active partnership with the candidate.
type NetworkCandidate struct {
	ClinicID        uuid.UUID `json:"clinic_id"`
	Name            string    `json:"name"`
	Score           float64   `json:"score"`
	DistanceKm      float64   `json:"distance_km"`
	Rating          float64   `json:"rating"`
	ServiceCapacity int       `json:"service_capacity"`
	Trend           string    `json:"trend,omitempty"`
}

// NetworkResult pairs the ranked candidates with the requester's existing
// active partnerships, so a caller can tell new candidates from current
// partners.
type NetworkResult struct {
	Candidates           []*NetworkCandidate        `json:"candidates"`
	ExistingPartnerships []*partnership.Partnership `json:"existing_partnerships"`
}

// RecommendRequest asks for brand-new partnership candidates, independent of
// any specific referral need.
type RecommendRequest struct {
	ClinicID      uuid.UUID
	Specialty     string
	MaxDistanceKm float64
	MaxResults    int
}

// Recommendation reasons, ordered by rule priority.
const (
	ReasonExactSpecialty    = "offers the requested specialty"
	ReasonManyMutual        = "broad specialty overlap with your clinic"
	ReasonLargeTeam         = "large clinical team with referral capacity"
	ReasonStrategicLocation = "strategically located partner candidate"
)

// Recommendation is one suggested new partner.
type Recommendation struct {
	ClinicID          uuid.UUID `json:"clinic_id"`
	Name              string    `json:"name"`
	Score             float64   `json:"score"`
	MutualSpecialties []string  `json:"mutual_specialties"`
	DoctorCount       int       `json:"doctor_count"`
	DistanceKm        float64   `json:"distance_km"`
	Reason            string    `json:"recommendation_reason"`
}
