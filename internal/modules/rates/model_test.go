// README: Rate card validation and fee schedule lookup tests.
package rates

import (
	"errors"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("default rate card invalid: %v", err)
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RateConfig)
	}{
		{"negative per-minute rate", func(c *RateConfig) { c.PerMinuteRate = -0.01 }},
		{"negative per-mile rate", func(c *RateConfig) { c.PerMileRate = -1 }},
		{"negative hourly minimum", func(c *RateConfig) { c.HourlyMinimumRate = -17 }},
		{"negative weekly ride minimum", func(c *RateConfig) { c.WeeklyMinRides = -1 }},
		{"negative fee rate", func(c *RateConfig) { c.Fees[0].Rate = -0.10 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidRate) {
				t.Errorf("Validate() = %v, want ErrInvalidRate", err)
			}
		})
	}
}

func TestFeeByName(t *testing.T) {
	cfg := Defaults()
	fee, ok := cfg.FeeByName(FeeAirportAccess)
	if !ok || !fee.AirportOnly {
		t.Errorf("FeeByName(%s) = %+v, %v", FeeAirportAccess, fee, ok)
	}
	if _, ok := cfg.FeeByName("mystery_fee"); ok {
		t.Error("unknown fee name must not resolve")
	}
}
