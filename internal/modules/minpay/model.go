// README: Inputs and results for the per-ride, hourly, and weekly minimum-pay checks.
package minpay

import (
	"time"

	"payguard/internal/types"
)

type PerRideInput struct {
	TripTimeMinutes    float64
	TripDistanceMiles  float64
	ActualDriverPayout float64
}

type PerRideResult struct {
	MinimumPay  float64
	ActualPay   float64
	Adjustment  float64
	IsCompliant bool
}

type HourlyInput struct {
	DriverID       types.ID
	WindowStart    time.Time
	WindowEnd      time.Time
	OnlineMinutes  float64
	EngagedMinutes float64
	TotalEarnings  float64
	RidesCompleted int
}

type HourlyResult struct {
	DriverID        types.ID
	RequiredFloor   float64
	TotalEarnings   float64
	Adjustment      float64
	UtilizationRate float64
	IsCompliant     bool
}

type WeeklyInput struct {
	DriverID      types.ID
	WeekStart     time.Time
	WeekEnd       time.Time
	OnlineHours   float64
	EngagedHours  float64
	TotalRides    int
	TotalEarnings float64
	// Adjustments already disbursed this week; the weekly top-up nets them
	// out rather than re-deriving them.
	PerRideAdjustments float64
	HourlyAdjustments  float64
}

type WeeklyResult struct {
	DriverID        types.ID
	Eligible        bool
	WeeklyFloor     float64
	AlreadyCovered  float64
	TopUp           float64
	UtilizationRate float64
}
