// README: Independent per-trip checkers: fare, driver pay, location, time/distance, regulatory fees.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"payguard/internal/modules/minpay"
	"payguard/internal/modules/rates"
	"payguard/internal/types"
	"payguard/internal/zones"
)

// suspiciousEarningsRatio flags payouts wildly above what the trip collected.
const suspiciousEarningsRatio = 1.5

// CheckFare recomputes the total fare from the report's own declared
// components and compares it to the declared total.
func (s *Service) CheckFare(r TripRecordReport) []Finding {
	expected := types.RoundCents(r.FareSubtotal() + r.DeclaredFees() + r.TollsCharged - r.Discounts)
	variance := expected - r.TotalFare
	if variance < 0 {
		variance = -variance
	}
	if variance <= s.cfg.Tolerance.Fare {
		return nil
	}
	sev := SeverityWarning
	if variance > s.cfg.Tolerance.FareCritical {
		sev = SeverityCritical
	}
	return []Finding{{
		Category:  CategoryFareMismatch,
		Severity:  sev,
		Detail:    fmt.Sprintf("declared total fare $%.2f differs from component sum $%.2f by $%.2f", r.TotalFare, expected, variance),
		Expected:  expected,
		Actual:    r.TotalFare,
		FixStatus: FixNotApplicable,
	}}
}

// CheckDriverPay compares the actual payout to the per-ride minimum-pay
// floor, and flags payouts implausibly above the trip's own receipts.
func (s *Service) CheckDriverPay(r TripRecordReport) []Finding {
	var findings []Finding

	check, err := minpay.PerRide(s.cfg, minpay.PerRideInput{
		TripTimeMinutes:    r.TripTimeMinutes,
		TripDistanceMiles:  r.TripDistanceMiles,
		ActualDriverPayout: r.DriverPayout,
	})
	if err != nil {
		// Negative time/distance/payout in a materialized report is itself
		// a data defect worth surfacing.
		return []Finding{{
			Category:  CategoryTimeDistanceError,
			Severity:  SeverityCritical,
			Detail:    fmt.Sprintf("trip attributes fail validation: %v", err),
			FixStatus: FixNotApplicable,
		}}
	}
	if check.Adjustment > s.cfg.Tolerance.DriverPay {
		findings = append(findings, Finding{
			Category:   CategoryUnderpaidDriver,
			Severity:   SeverityCritical,
			Detail:     fmt.Sprintf("driver paid $%.2f against a $%.2f floor; $%.2f owed", r.DriverPayout, check.MinimumPay, check.Adjustment),
			Expected:   check.MinimumPay,
			Actual:     r.DriverPayout,
			Adjustment: check.Adjustment,
			FixStatus:  FixNotApplicable,
		})
	}

	collected := r.TotalFare + r.TollsReimbursed
	if collected > 0 && r.DriverPayout > types.RoundCents(collected*suspiciousEarningsRatio) {
		findings = append(findings, Finding{
			Category:  CategorySuspiciousEarnings,
			Severity:  SeverityWarning,
			Detail:    fmt.Sprintf("driver payout $%.2f exceeds %.1fx the trip's collected $%.2f", r.DriverPayout, suspiciousEarningsRatio, collected),
			Expected:  types.RoundCents(collected * suspiciousEarningsRatio),
			Actual:    r.DriverPayout,
			FixStatus: FixNotApplicable,
		})
	}
	return findings
}

// CheckLocation verifies declared boroughs against the zone lookup. An
// unresolvable coordinate is reported as info (no zone data is a legitimate
// state); a lookup transport failure propagates as an error.
func (s *Service) CheckLocation(ctx context.Context, r TripRecordReport) ([]Finding, error) {
	var findings []Finding
	ends := []struct {
		label    string
		point    types.Point
		declared string
	}{
		{"pickup", r.Pickup, r.PickupBorough},
		{"dropoff", r.Dropoff, r.DropoffBorough},
	}
	for _, end := range ends {
		z, err := s.zones.Lookup(ctx, end.point)
		if errors.Is(err, zones.ErrNotFound) {
			findings = append(findings, Finding{
				Category:  CategoryZoneMismatch,
				Severity:  SeverityInfo,
				Detail:    fmt.Sprintf("%s borough %q could not be verified: no zone at %.5f,%.5f", end.label, end.declared, end.point.Lat, end.point.Lng),
				FixStatus: FixNotApplicable,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("zone lookup for %s: %w", end.label, err)
		}
		if end.declared == "" || z.Borough == end.declared {
			continue
		}
		sev := SeverityWarning
		if s.zoneDependentFeesDeclared(r) {
			// A wrong borough invalidates zone-conditioned fees.
			sev = SeverityCritical
		}
		findings = append(findings, Finding{
			Category:  CategoryZoneMismatch,
			Severity:  sev,
			Detail:    fmt.Sprintf("%s declared borough %q but coordinates resolve to %q", end.label, end.declared, z.Borough),
			FixStatus: FixNotApplicable,
		})
	}
	return findings, nil
}

func (s *Service) zoneDependentFeesDeclared(r TripRecordReport) bool {
	return r.Fees[rates.FeeCongestion] > 0 || r.Fees[rates.FeeAirportAccess] > 0
}

// CheckTimeDistance derives the implied average speed and flags values
// outside the plausible band. This is a data-quality heuristic, reported at
// warning severity and left to the caller to corroborate.
func (s *Service) CheckTimeDistance(r TripRecordReport) []Finding {
	if r.TripTimeMinutes == 0 && r.TripDistanceMiles == 0 {
		return nil
	}
	if r.TripTimeMinutes <= 0 {
		return []Finding{{
			Category:  CategoryTimeDistanceError,
			Severity:  SeverityWarning,
			Detail:    fmt.Sprintf("trip covered %.1f miles in zero recorded minutes", r.TripDistanceMiles),
			FixStatus: FixNotApplicable,
		}}
	}
	mph := r.TripDistanceMiles / (r.TripTimeMinutes / 60)
	switch {
	case mph < s.cfg.MinPlausibleMPH:
		return []Finding{{
			Category:  CategoryTimeDistanceError,
			Severity:  SeverityWarning,
			Detail:    fmt.Sprintf("implied speed %.1f mph is below the %.1f mph plausibility floor", mph, s.cfg.MinPlausibleMPH),
			Expected:  s.cfg.MinPlausibleMPH,
			Actual:    types.RoundCents(mph),
			FixStatus: FixNotApplicable,
		}}
	case mph > s.cfg.MaxPlausibleMPH:
		return []Finding{{
			Category:  CategoryTimeDistanceError,
			Severity:  SeverityWarning,
			Detail:    fmt.Sprintf("implied speed %.1f mph exceeds the %.1f mph plausibility ceiling", mph, s.cfg.MaxPlausibleMPH),
			Expected:  s.cfg.MaxPlausibleMPH,
			Actual:    types.RoundCents(mph),
			FixStatus: FixNotApplicable,
		}}
	}
	return nil
}

// CheckFees walks the rate card's fee schedule, recomputes each expected
// value for this trip, and compares against the declared amount. Tolls are
// checked separately: what the rider paid must reach the driver.
func (s *Service) CheckFees(r TripRecordReport) []Finding {
	var findings []Finding

	for _, fee := range s.cfg.Fees {
		expected := s.expectedFee(fee, r)
		declared := r.Fees[fee.Name]
		if types.WithinTolerance(declared, expected, s.cfg.Tolerance.Fee) {
			continue
		}
		findings = append(findings, feeFinding(fee.Name, expected, declared, s.cfg.Tolerance.FareCritical))
	}

	// Declared fees with no schedule entry are themselves errors.
	var unknown []string
	for name := range r.Fees {
		if _, ok := s.cfg.FeeByName(name); !ok && r.Fees[name] != 0 {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		findings = append(findings, feeFinding(name, 0, r.Fees[name], s.cfg.Tolerance.FareCritical))
	}

	if !types.WithinTolerance(r.TollsCharged, r.TollsReimbursed, s.cfg.Tolerance.Toll) {
		findings = append(findings, Finding{
			Category:  CategoryTollMismatch,
			Severity:  SeverityWarning,
			Detail:    fmt.Sprintf("tolls charged $%.2f but reimbursed $%.2f", r.TollsCharged, r.TollsReimbursed),
			Expected:  r.TollsCharged,
			Actual:    r.TollsReimbursed,
			FixStatus: FixNotApplicable,
		})
	}
	return findings
}

// expectedFee applies the schedule entry's basis and conditions to one trip.
func (s *Service) expectedFee(fee rates.Fee, r TripRecordReport) float64 {
	if fee.AirportOnly && r.AirportCode == "" {
		return 0
	}
	if fee.OutOfTownOnly && !r.OutOfTown {
		return 0
	}
	if fee.MinTripMiles > 0 && r.TripDistanceMiles <= fee.MinTripMiles {
		return 0
	}
	if fee.Basis == rates.BasisPercent {
		return types.RoundCents(fee.Rate * r.FareSubtotal())
	}
	return fee.Rate
}

func feeFinding(name string, expected, declared, criticalVariance float64) Finding {
	category := CategoryTLCFeeError
	if name == rates.FeeAirportAccess {
		category = CategoryAirportFeeError
	}
	variance := expected - declared
	if variance < 0 {
		variance = -variance
	}
	sev := SeverityWarning
	if variance > criticalVariance {
		sev = SeverityCritical
	}
	return Finding{
		Category:  category,
		Severity:  sev,
		Detail:    fmt.Sprintf("fee %s declared $%.2f, expected $%.2f", name, declared, expected),
		Fee:       name,
		Expected:  expected,
		Actual:    declared,
		FixStatus: FixNotApplicable,
	}
}
