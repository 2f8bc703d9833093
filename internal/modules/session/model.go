// README: Driver session aggregate: earnings, online time, and adjustment bookkeeping for one tracking period.
package session

import (
	"time"

	"payguard/internal/types"
)

// RideAdjustment is the immutable record of one per-ride guarantee check.
type RideAdjustment struct {
	RideID             types.ID
	TripTimeMinutes    float64
	TripDistanceMiles  float64
	ActualDriverPayout float64
	ComputedMinimumPay float64
	AdjustmentAmount   float64
	CreatedAt          time.Time
}

// DriverSession accumulates one driver's activity for the current tracking
// period. Adjustment totals only ever grow; a period ends with Reset, which
// archives the ride adjustments before discarding totals.
type DriverSession struct {
	DriverID            types.ID
	StartedAt           time.Time
	TotalEarnings       float64
	TotalOnlineMinutes  float64
	TotalWaitingMinutes float64
	// TotalRideAdjustments is the cumulative per-ride shortfall already paid.
	TotalRideAdjustments float64
	// TotalHourlyAdjustments is the cumulative hourly-tier shortfall already paid.
	TotalHourlyAdjustments float64
	RidesCompleted         int
	Adjustments            []RideAdjustment
}

// Snapshot is a read-only view of a session plus derived figures.
type Snapshot struct {
	DriverID               types.ID
	StartedAt              time.Time
	TotalEarnings          float64
	TotalOnlineMinutes     float64
	TotalWaitingMinutes    float64
	TotalRideAdjustments   float64
	TotalHourlyAdjustments float64
	RidesCompleted         int
	UtilizationRate        float64
	Adjustments            []RideAdjustment
}

func (s DriverSession) snapshot() Snapshot {
	snap := Snapshot{
		DriverID:               s.DriverID,
		StartedAt:              s.StartedAt,
		TotalEarnings:          s.TotalEarnings,
		TotalOnlineMinutes:     s.TotalOnlineMinutes,
		TotalWaitingMinutes:    s.TotalWaitingMinutes,
		TotalRideAdjustments:   s.TotalRideAdjustments,
		TotalHourlyAdjustments: s.TotalHourlyAdjustments,
		RidesCompleted:         s.RidesCompleted,
		Adjustments:            append([]RideAdjustment(nil), s.Adjustments...),
	}
	if s.TotalOnlineMinutes > 0 {
		snap.UtilizationRate = (s.TotalOnlineMinutes - s.TotalWaitingMinutes) / s.TotalOnlineMinutes
	}
	return snap
}
