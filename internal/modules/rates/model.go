// README: Regulatory rate card: pay rates, weekly minimums, fee schedule, audit tolerances.
package rates

import (
	"errors"
	"fmt"
)

// FeeBasis says how a fee's expected value is derived.
type FeeBasis string

const (
	BasisFlat    FeeBasis = "flat"    // fixed dollar amount per trip
	BasisPercent FeeBasis = "percent" // fraction of the fare subtotal (base + distance + time)
)

// Canonical fee names. The audit engine keys declared trip fees by these.
const (
	FeeAccessibilityFund   = "accessibility_fund"
	FeeBlackCarFund        = "black_car_fund"
	FeeHighVolumeSurcharge = "high_volume_surcharge"
	FeeStateSurcharge      = "state_surcharge"
	FeeCongestion          = "congestion_fee"
	FeeAirportAccess       = "airport_access_fee"
	FeeLongTripSurcharge   = "long_trip_surcharge"
	FeeOutOfTownReturn     = "out_of_town_return_fee"
)

type Fee struct {
	Name  string
	Basis FeeBasis
	// Rate is dollars for BasisFlat, a fraction (0.0244 = 2.44%) for BasisPercent.
	Rate float64
	// MinTripMiles gates the fee to trips longer than the threshold; 0 means unconditional.
	MinTripMiles float64
	// AirportOnly gates the fee to trips with an airport code.
	AirportOnly bool
	// OutOfTownOnly gates the fee to trips ending outside the service area.
	OutOfTownOnly bool
}

type Tolerances struct {
	// Fare is the cents-level slack allowed between declared and recomputed totals.
	Fare float64
	// FareCritical is the variance above which a fare mismatch escalates to critical.
	FareCritical float64
	Fee          float64
	DriverPay    float64
	Toll         float64
}

// RateConfig is the process-wide rate card. Loaded once at startup, then
// passed by value; nothing in the engine mutates it.
type RateConfig struct {
	PerMinuteRate        float64
	PerMileRate          float64
	HourlyMinimumRate    float64
	WeeklyMinRides       int
	WeeklyMinOnlineHours float64

	// Plausible average-speed band for the time/distance integrity check.
	MinPlausibleMPH float64
	MaxPlausibleMPH float64

	Fees      []Fee
	Tolerance Tolerances
}

var ErrInvalidRate = errors.New("invalid rate config")

func (c RateConfig) Validate() error {
	switch {
	case c.PerMinuteRate < 0:
		return fmt.Errorf("%w: per-minute rate must be >= 0", ErrInvalidRate)
	case c.PerMileRate < 0:
		return fmt.Errorf("%w: per-mile rate must be >= 0", ErrInvalidRate)
	case c.HourlyMinimumRate < 0:
		return fmt.Errorf("%w: hourly minimum rate must be >= 0", ErrInvalidRate)
	case c.WeeklyMinRides < 0:
		return fmt.Errorf("%w: weekly minimum rides must be >= 0", ErrInvalidRate)
	case c.WeeklyMinOnlineHours < 0:
		return fmt.Errorf("%w: weekly minimum online hours must be >= 0", ErrInvalidRate)
	}
	for _, f := range c.Fees {
		if f.Rate < 0 {
			return fmt.Errorf("%w: fee rate must be >= 0: %s", ErrInvalidRate, f.Name)
		}
	}
	return nil
}

// FeeByName returns the schedule entry for a fee name.
func (c RateConfig) FeeByName(name string) (Fee, bool) {
	for _, f := range c.Fees {
		if f.Name == name {
			return f, true
		}
	}
	return Fee{}, false
}

// Defaults is the compiled-in rate card used when no row is active in the
// rate store. Values track the current TLC driver-pay order.
func Defaults() RateConfig {
	return RateConfig{
		PerMinuteRate:        0.529,
		PerMileRate:          1.219,
		HourlyMinimumRate:    17.22,
		WeeklyMinRides:       20,
		WeeklyMinOnlineHours: 10,
		MinPlausibleMPH:      3,
		MaxPlausibleMPH:      80,
		Fees: []Fee{
			{Name: FeeAccessibilityFund, Basis: BasisFlat, Rate: 0.10},
			{Name: FeeBlackCarFund, Basis: BasisPercent, Rate: 0.0244},
			{Name: FeeHighVolumeSurcharge, Basis: BasisFlat, Rate: 0.75},
			{Name: FeeStateSurcharge, Basis: BasisFlat, Rate: 0.50},
			{Name: FeeCongestion, Basis: BasisFlat, Rate: 2.75},
			{Name: FeeAirportAccess, Basis: BasisFlat, Rate: 2.50, AirportOnly: true},
			{Name: FeeLongTripSurcharge, Basis: BasisFlat, Rate: 5.00, MinTripMiles: 20},
			{Name: FeeOutOfTownReturn, Basis: BasisFlat, Rate: 7.50, OutOfTownOnly: true},
		},
		Tolerance: Tolerances{
			Fare:         0.05,
			FareCritical: 1.00,
			Fee:          0.05,
			DriverPay:    0.05,
			Toll:         0.05,
		},
	}
}
