package referral

import (
	"time"

	"github.com/google/uuid"
)

// Urgency levels.
const (
	UrgencyRoutine   = "ROUTINE"
	UrgencyUrgent    = "URGENT"
	UrgencyEmergency = "EMERGENCY"
)

// Lifecycle states. A referral starts PENDING; COMPLETED, DECLINED and
// CANCELLED are terminal.
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusDeclined  = "DECLINED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

var ValidUrgencies = map[string]bool{
	UrgencyRoutine: true, UrgencyUrgent: true, UrgencyEmergency: true,
}

// transitions holds the allowed next states per current state.
var transitions = map[string]map[string]bool{
	StatusPending:  {StatusAccepted: true, StatusDeclined: true},
	StatusAccepted: {StatusCompleted: true, StatusCancelled: true},
}

// CanTransition reports whether a referral may move from one state to another.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// IsTerminal reports whether the state ends the lifecycle.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusDeclined || status == StatusCancelled
}

// ServiceReferral is a single directed patient-routing event. Direction
// matters: the referring clinic sends, the referred clinic receives.
type ServiceReferral struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	ReferringClinicID   uuid.UUID  `db:"referring_clinic_id" json:"referring_clinic_id"`
	ReferredClinicID    uuid.UUID  `db:"referred_clinic_id" json:"referred_clinic_id"`
	PartnershipID       uuid.UUID  `db:"partnership_id" json:"partnership_id"`
	ServiceID           string     `db:"service_id" json:"service_id"`
	PatientID           *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Reason              string     `db:"reason" json:"reason"`
	Urgency             string     `db:"urgency" json:"urgency"`
	Status              string     `db:"status" json:"status"`
	ReferralDate        time.Time  `db:"referral_date" json:"referral_date"`
	PatientSatisfaction *float64   `db:"patient_satisfaction" json:"patient_satisfaction,omitempty"`
	ProcessingTimeHours *float64   `db:"processing_time_hours" json:"processing_time_hours,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// HistoryFilters narrows a referral history query.
type HistoryFilters struct {
	PartnerClinicID *uuid.UUID
	ServiceID       string
	From            time.Time
	To              time.Time
}

// Analytics summarizes a clinic's referral history.
type Analytics struct {
	Outgoing            int            `json:"outgoing"`
	Incoming            int            `json:"incoming"`
	ByUrgency           map[string]int `json:"by_urgency"`
	ByStatus            map[string]int `json:"by_status"`
	ByService           map[string]int `json:"by_service"`
	MeanProcessingHours float64        `json:"mean_processing_hours"`
	MeanSatisfaction    float64        `json:"mean_satisfaction"`
}

// History is the referral list plus its derived analytics.
type History struct {
	Referrals []*ServiceReferral `json:"referrals"`
	Analytics Analytics          `json:"analytics"`
}
