// README: Pure minimum-pay guarantee arithmetic for the three tiers.
package minpay

import (
	"errors"
	"fmt"

	"payguard/internal/modules/rates"
	"payguard/internal/types"
)

var ErrInvalidInput = errors.New("invalid input")

// PerRide computes the per-ride pay floor and any shortfall adjustment.
// Zero time or distance is a legal input (a stalled or cancelled-at-door
// trip); only negative values are rejected.
func PerRide(cfg rates.RateConfig, in PerRideInput) (PerRideResult, error) {
	switch {
	case in.TripTimeMinutes < 0:
		return PerRideResult{}, fmt.Errorf("%w: trip time minutes must be >= 0, got %v", ErrInvalidInput, in.TripTimeMinutes)
	case in.TripDistanceMiles < 0:
		return PerRideResult{}, fmt.Errorf("%w: trip distance miles must be >= 0, got %v", ErrInvalidInput, in.TripDistanceMiles)
	case in.ActualDriverPayout < 0:
		return PerRideResult{}, fmt.Errorf("%w: driver payout must be >= 0, got %v", ErrInvalidInput, in.ActualDriverPayout)
	}

	floor := types.RoundCents(in.TripTimeMinutes*cfg.PerMinuteRate + in.TripDistanceMiles*cfg.PerMileRate)
	adj := types.RoundCents(floor - in.ActualDriverPayout)
	if adj < 0 {
		adj = 0
	}
	return PerRideResult{
		MinimumPay:  floor,
		ActualPay:   in.ActualDriverPayout,
		Adjustment:  adj,
		IsCompliant: adj == 0,
	}, nil
}

// Hourly computes the hourly guarantee floor over an online-time window.
// A window with zero online minutes short-circuits to a zero floor.
func Hourly(cfg rates.RateConfig, in HourlyInput) (HourlyResult, error) {
	switch {
	case in.OnlineMinutes < 0:
		return HourlyResult{}, fmt.Errorf("%w: online minutes must be >= 0, got %v", ErrInvalidInput, in.OnlineMinutes)
	case in.EngagedMinutes < 0 || in.EngagedMinutes > in.OnlineMinutes:
		return HourlyResult{}, fmt.Errorf("%w: engaged minutes must be within [0, online minutes], got %v", ErrInvalidInput, in.EngagedMinutes)
	case in.TotalEarnings < 0:
		return HourlyResult{}, fmt.Errorf("%w: earnings must be >= 0, got %v", ErrInvalidInput, in.TotalEarnings)
	}

	if in.OnlineMinutes == 0 {
		return HourlyResult{DriverID: in.DriverID, IsCompliant: true}, nil
	}

	floor := types.RoundCents(in.OnlineMinutes / 60 * cfg.HourlyMinimumRate)
	adj := types.RoundCents(floor - in.TotalEarnings)
	if adj < 0 {
		adj = 0
	}
	return HourlyResult{
		DriverID:        in.DriverID,
		RequiredFloor:   floor,
		TotalEarnings:   in.TotalEarnings,
		Adjustment:      adj,
		UtilizationRate: in.EngagedMinutes / in.OnlineMinutes,
		IsCompliant:     adj == 0,
	}, nil
}

// Weekly applies the weekly guarantee. Drivers below the ride or online-hour
// minimums are ineligible, which is a valid outcome rather than an error.
// Amounts already disbursed via per-ride and hourly adjustments are netted
// against the floor so the top-up never double-pays.
func Weekly(cfg rates.RateConfig, in WeeklyInput) (WeeklyResult, error) {
	switch {
	case in.OnlineHours < 0:
		return WeeklyResult{}, fmt.Errorf("%w: online hours must be >= 0, got %v", ErrInvalidInput, in.OnlineHours)
	case in.EngagedHours < 0 || in.EngagedHours > in.OnlineHours:
		return WeeklyResult{}, fmt.Errorf("%w: engaged hours must be within [0, online hours], got %v", ErrInvalidInput, in.EngagedHours)
	case in.TotalRides < 0:
		return WeeklyResult{}, fmt.Errorf("%w: total rides must be >= 0, got %d", ErrInvalidInput, in.TotalRides)
	case in.TotalEarnings < 0 || in.PerRideAdjustments < 0 || in.HourlyAdjustments < 0:
		return WeeklyResult{}, fmt.Errorf("%w: earnings and adjustments must be >= 0", ErrInvalidInput)
	}

	out := WeeklyResult{DriverID: in.DriverID}
	if in.OnlineHours > 0 {
		out.UtilizationRate = in.EngagedHours / in.OnlineHours
	}
	if in.TotalRides < cfg.WeeklyMinRides || in.OnlineHours < cfg.WeeklyMinOnlineHours {
		return out, nil
	}

	out.Eligible = true
	out.WeeklyFloor = types.RoundCents(in.OnlineHours * cfg.HourlyMinimumRate)
	out.AlreadyCovered = types.RoundCents(in.TotalEarnings + in.PerRideAdjustments + in.HourlyAdjustments)
	topUp := types.RoundCents(out.WeeklyFloor - out.AlreadyCovered)
	if topUp < 0 {
		topUp = 0
	}
	out.TopUp = topUp
	return out, nil
}
