package partnership

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partnership types.
const (
	TypeReferred      = "REFERRED"
	TypePreferred     = "PREFERRED"
	TypeExclusive     = "EXCLUSIVE"
	TypeCollaborative = "COLLABORATIVE"
)

// Priorities.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Collaboration types.
const (
	CollabSharedPatientCare   = "SHARED_PATIENT_CARE"
	CollabCrossConsultation   = "CROSS_CONSULTATION"
	CollabEmergencyCoverage   = "EMERGENCY_COVERAGE"
	CollabSpecializedServices = "SPECIALIZED_SERVICES"
	CollabResearch            = "RESEARCH"
	CollabTraining            = "TRAINING"
	CollabQualityImprovement  = "QUALITY_IMPROVEMENT"
)

var ValidTypes = map[string]bool{
	TypeReferred: true, TypePreferred: true, TypeExclusive: true, TypeCollaborative: true,
}

var ValidPriorities = map[string]bool{
	PriorityHigh: true, PriorityMedium: true, PriorityLow: true,
}

var ValidCollaborationTypes = map[string]bool{
	CollabSharedPatientCare: true, CollabCrossConsultation: true,
	CollabEmergencyCoverage: true, CollabSpecializedServices: true,
	CollabResearch: true, CollabTraining: true, CollabQualityImprovement: true,
}

// Terms are the commercial terms of a partnership. Stored, not enforced:
// settlement of referral fees happens outside this system.
type Terms struct {
	ReferralFeePercent        decimal.Decimal `json:"referral_fee_percent"`
	MinReferrals              *int            `json:"min_referrals,omitempty"`
	MaxReferrals              *int            `json:"max_referrals,omitempty"`
	CollaborationRequirements []string        `json:"collaboration_requirements,omitempty"`
}

// Partnership is a formal agreement between two clinics. The stored
// primary/partner orientation is a query convenience; the relationship itself
// is symmetric and PairKey is the canonical identity of the unordered pair.
type Partnership struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PrimaryClinicID uuid.UUID  `db:"primary_clinic_id" json:"primary_clinic_id"`
	PartnerClinicID uuid.UUID  `db:"partner_clinic_id" json:"partner_clinic_id"`
	PairKey         string     `db:"pair_key" json:"-"`
	Type            string     `db:"partnership_type" json:"partnership_type"`
	Specialties     []string   `db:"specialties" json:"specialties"`
	Priority        string     `db:"priority" json:"priority"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	EffectiveFrom   time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveTo     *time.Time `db:"effective_to" json:"effective_to,omitempty"`
	Terms           Terms      `db:"terms" json:"terms"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// OtherClinic returns the partner of clinicID within the pair.
func (p *Partnership) OtherClinic(clinicID uuid.UUID) uuid.UUID {
	if p.PrimaryClinicID == clinicID {
		return p.PartnerClinicID
	}
	return p.PrimaryClinicID
}

// Covers reports whether the partnership joins the two clinics, in either
// orientation.
func (p *Partnership) Covers(a, b uuid.UUID) bool {
	return PairKey(a, b) == p.PairKey
}

// PairKey canonicalizes an unordered clinic pair into a deterministic key, so
// both orientations of the same pair map to one storage identity.
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as < bs {
		return as + ":" + bs
	}
	return bs + ":" + as
}

// Protocol captures the care-protocol flags of a collaboration.
type Protocol struct {
	DataSharing          bool   `json:"data_sharing"`
	ConsultationRequired bool   `json:"consultation_required"`
	PreferredChannel     string `json:"preferred_channel,omitempty"`
}

// QualityTargets are the agreed quality-metric targets for a collaboration.
type QualityTargets struct {
	SatisfactionTarget       float64 `json:"satisfaction_target"`
	ResponseTimeHours        float64 `json:"response_time_hours"`
	CollaborationScoreTarget float64 `json:"collaboration_score_target"`
}

// Collaboration is a typed, richer agreement layered on a clinic pair.
// One active record exists per (pair, type); re-registering updates it.
type Collaboration struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	PrimaryClinicID uuid.UUID      `db:"primary_clinic_id" json:"primary_clinic_id"`
	PartnerClinicID uuid.UUID      `db:"partner_clinic_id" json:"partner_clinic_id"`
	PairKey         string         `db:"pair_key" json:"-"`
	Type            string         `db:"collaboration_type" json:"collaboration_type"`
	SharedServices  []string       `db:"shared_services" json:"shared_services"`
	Protocol        Protocol       `db:"protocol" json:"protocol"`
	QualityTargets  QualityTargets `db:"quality_targets" json:"quality_targets"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Filters narrows ListForClinic results.
type Filters struct {
	Type       string
	Specialty  string
	ActiveOnly bool
}

// Patch is a partial update of a partnership's mutable fields.
type Patch struct {
	Type        *string    `json:"partnership_type,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	EffectiveTo *time.Time `json:"effective_to,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Terms       *Terms     `json:"terms,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// View annotates a partnership with the caller clinic's perspective.
type View struct {
	*Partnership
	Partner uuid.UUID `json:"partner_clinic"`
	Role    string    `json:"role"` // "primary" or "partner"
}
