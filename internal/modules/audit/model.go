// README: Audit domain: trip report view, finding categories, severities, fix statuses.
package audit

import (
	"time"

	"payguard/internal/types"
)

// Category is the closed set of discrepancy kinds a checker can emit.
type Category string

const (
	CategoryFareMismatch       Category = "fare_mismatch"
	CategoryDriverPayMismatch  Category = "driver_pay_mismatch"
	CategoryTollMismatch       Category = "toll_mismatch"
	CategoryAirportFeeError    Category = "airport_fee_error"
	CategoryTLCFeeError        Category = "tlc_fee_error"
	CategoryZoneMismatch       Category = "zone_mismatch"
	CategoryTimeDistanceError  Category = "time_distance_error"
	CategoryMissingRecord      Category = "missing_record"
	CategorySuspiciousEarnings Category = "suspicious_earnings"
	CategoryUnderpaidDriver    Category = "underpaid_driver"
)

type Severity string

const (
	SeverityValid    Severity = "valid"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// WorstSeverity aggregates finding severities; no findings means valid.
func WorstSeverity(findings []Finding) Severity {
	worst := SeverityValid
	for _, f := range findings {
		if f.Severity.rank() > worst.rank() {
			worst = f.Severity
		}
	}
	return worst
}

type FixStatus string

const (
	FixAutoFixed      FixStatus = "auto_fixed"
	FixRequiresReview FixStatus = "requires_review"
	FixUnfixable      FixStatus = "unfixable"
	FixNotApplicable  FixStatus = "not_applicable"
)

// Finding is one detected discrepancy. Checkers create findings with
// FixNotApplicable; the reconciliation engine stamps the final fix status.
type Finding struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
	// Fee names the schedule entry on fee-schedule findings.
	Fee      string  `json:"fee,omitempty"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	// Adjustment carries the amount owed on underpaid-driver findings.
	Adjustment float64   `json:"adjustment,omitempty"`
	FixStatus  FixStatus `json:"fix_status"`
}

// Result is the aggregate audit of one trip.
type Result struct {
	TripID        types.ID  `json:"trip_id"`
	OverallStatus Severity  `json:"overall_status"`
	Findings      []Finding `json:"findings"`
	// AutoFixApplied is set by inline reconciliation when every critical
	// finding was corrected automatically.
	AutoFixApplied bool `json:"auto_fix_applied"`
}

// TripRecordReport is the read-only materialized view of one historical
// trip, supplied by the reporting store. The audit engine never mutates it;
// reconciliation works on copies.
type TripRecordReport struct {
	TripID      types.ID
	DriverID    types.ID
	PickupTime  time.Time
	DropoffTime time.Time

	TripTimeMinutes   float64
	TripDistanceMiles float64

	Pickup         types.Point
	Dropoff        types.Point
	PickupBorough  string
	DropoffBorough string
	AirportCode    string
	OutOfTown      bool

	BaseFare     float64
	DistanceFare float64
	TimeFare     float64
	Discounts    float64
	// TollsCharged is what the rider paid in tolls; TollsReimbursed is what
	// was passed through to the driver. The two must agree.
	TollsCharged    float64
	TollsReimbursed float64
	// Fees maps canonical fee names (rates package) to declared amounts.
	Fees map[string]float64

	TotalFare    float64
	DriverPayout float64
}

// FareSubtotal is the pre-fee fare: base + distance + time.
func (r TripRecordReport) FareSubtotal() float64 {
	return r.BaseFare + r.DistanceFare + r.TimeFare
}

// DeclaredFees sums every declared regulatory fee.
func (r TripRecordReport) DeclaredFees() float64 {
	var sum float64
	for _, v := range r.Fees {
		sum += v
	}
	return sum
}

// CloneFees returns a copy of the fee map so fixes never touch the report.
func (r TripRecordReport) CloneFees() map[string]float64 {
	out := make(map[string]float64, len(r.Fees))
	for k, v := range r.Fees {
		out[k] = v
	}
	return out
}
