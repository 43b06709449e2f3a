package metrics

import (
	"time"

	"github.com/google/uuid"
)

// Trend labels for the direction a partnership's daily score is moving.
// A swing of five points or less in either direction counts as stable.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// windowDays is the rolling window a daily metric row summarizes.
const windowDays = 30

// PartnershipMetric is the daily rollup for one partnership. Rows are
// derived from stored referrals and recomputed in full on every write, so
// they can always be rebuilt.
type PartnershipMetric struct {
	PartnershipID       uuid.UUID `db:"partnership_id" json:"partnership_id"`
	MetricDate          time.Time `db:"metric_date" json:"metric_date"`
	ReferralCount       int       `db:"referral_count" json:"referral_count"`
	CollaborationScore  float64   `db:"collaboration_score" json:"collaboration_score"`
	PatientSatisfaction float64   `db:"patient_satisfaction" json:"patient_satisfaction"`
	ResponseTimeHours   float64   `db:"response_time_hours" json:"response_time_hours"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// DateRange bounds a metrics query. Zero values mean unbounded on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}
