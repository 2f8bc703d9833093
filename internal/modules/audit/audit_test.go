// README: Audit engine tests (clean round-trip, each checker family, batch ordering).
package audit

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"payguard/internal/modules/rates"
	"payguard/internal/types"
	"payguard/internal/zones"
)

func testRates() rates.RateConfig {
	cfg := rates.Defaults()
	cfg.PerMinuteRate = 0.40
	cfg.PerMileRate = 1.26
	return cfg
}

// fakeZones resolves coordinates from a fixed table; anything else is a miss.
type fakeZones struct {
	byPoint map[types.Point]zones.Zone
}

func (f *fakeZones) Lookup(ctx context.Context, p types.Point) (zones.Zone, error) {
	if z, ok := f.byPoint[p]; ok {
		return z, nil
	}
	return zones.Zone{}, zones.ErrNotFound
}

var (
	pickupPt  = types.Point{Lat: 40.7549, Lng: -73.9840}
	dropoffPt = types.Point{Lat: 40.7061, Lng: -74.0087}
)

func manhattanZones() *fakeZones {
	return &fakeZones{byPoint: map[types.Point]zones.Zone{
		pickupPt:  {ID: "161", Name: "Midtown Center", Borough: "Manhattan"},
		dropoffPt: {ID: "261", Name: "World Trade Center", Borough: "Manhattan"},
	}}
}

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(testRates(), manhattanZones(), nil, 4)
}

// cleanReport builds a trip whose every field is computed exactly per the
// test rate card: the audit must find nothing.
func cleanReport() TripRecordReport {
	// subtotal = 7.00 + 5*1.26 + 20*0.40 = 21.30
	// fees: accessibility 0.10, black car 2.44% of 21.30 = 0.52,
	//       high volume 0.75, state 0.50, congestion 2.75 -> 4.62
	pickup := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return TripRecordReport{
		TripID:            "t1",
		DriverID:          "d1",
		PickupTime:        pickup,
		DropoffTime:       pickup.Add(20 * time.Minute),
		TripTimeMinutes:   20,
		TripDistanceMiles: 5,
		Pickup:            pickupPt,
		Dropoff:           dropoffPt,
		PickupBorough:     "Manhattan",
		DropoffBorough:    "Manhattan",
		BaseFare:          7.00,
		DistanceFare:      6.30,
		TimeFare:          8.00,
		Fees: map[string]float64{
			rates.FeeAccessibilityFund:   0.10,
			rates.FeeBlackCarFund:        0.52,
			rates.FeeHighVolumeSurcharge: 0.75,
			rates.FeeStateSurcharge:      0.50,
			rates.FeeCongestion:          2.75,
		},
		TotalFare:    25.92,
		DriverPayout: 14.30,
	}
}

func findingsByCategory(res Result) map[Category][]Finding {
	out := make(map[Category][]Finding)
	for _, f := range res.Findings {
		out[f.Category] = append(out[f.Category], f)
	}
	return out
}

func TestAuditCleanTripIsValid(t *testing.T) {
	svc := testService(t)
	res, err := svc.AuditTrip(context.Background(), cleanReport())
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if res.OverallStatus != SeverityValid {
		t.Fatalf("OverallStatus = %s with findings %+v, want valid", res.OverallStatus, res.Findings)
	}
	if len(res.Findings) != 0 {
		t.Errorf("clean trip produced findings: %+v", res.Findings)
	}
}

func TestCheckFareSeverityThresholds(t *testing.T) {
	svc := testService(t)

	t.Run("variance above tolerance is a warning", func(t *testing.T) {
		r := cleanReport()
		r.TotalFare += 0.25
		fs := svc.CheckFare(r)
		if len(fs) != 1 || fs[0].Severity != SeverityWarning {
			t.Fatalf("findings = %+v, want one warning", fs)
		}
		if fs[0].Category != CategoryFareMismatch {
			t.Errorf("category = %s, want fare_mismatch", fs[0].Category)
		}
	})

	t.Run("variance above critical threshold escalates", func(t *testing.T) {
		r := cleanReport()
		r.TotalFare += 1.50
		fs := svc.CheckFare(r)
		if len(fs) != 1 || fs[0].Severity != SeverityCritical {
			t.Fatalf("findings = %+v, want one critical", fs)
		}
	})

	t.Run("variance inside tolerance passes", func(t *testing.T) {
		r := cleanReport()
		r.TotalFare += 0.04
		if fs := svc.CheckFare(r); len(fs) != 0 {
			t.Errorf("findings = %+v, want none", fs)
		}
	})
}

func TestCheckDriverPay(t *testing.T) {
	svc := testService(t)

	t.Run("payout below floor is critical underpayment", func(t *testing.T) {
		r := cleanReport()
		r.DriverPayout = 9.00 // floor 14.30
		fs := svc.CheckDriverPay(r)
		if len(fs) != 1 {
			t.Fatalf("findings = %+v, want one", fs)
		}
		f := fs[0]
		if f.Category != CategoryUnderpaidDriver || f.Severity != SeverityCritical {
			t.Errorf("got %s/%s, want underpaid_driver/critical", f.Category, f.Severity)
		}
		if f.Adjustment != 5.30 {
			t.Errorf("Adjustment = %v, want 5.30", f.Adjustment)
		}
	})

	t.Run("payout far above receipts is suspicious", func(t *testing.T) {
		r := cleanReport()
		r.DriverPayout = 60.00 // collected 25.92, 1.5x = 38.88
		fs := svc.CheckDriverPay(r)
		if len(fs) != 1 || fs[0].Category != CategorySuspiciousEarnings {
			t.Fatalf("findings = %+v, want one suspicious_earnings", fs)
		}
		if fs[0].Severity != SeverityWarning {
			t.Errorf("severity = %s, want warning", fs[0].Severity)
		}
	})
}

func TestCheckTimeDistance(t *testing.T) {
	svc := testService(t)

	tests := []struct {
		name     string
		minutes  float64
		miles    float64
		want     int
		contains string
	}{
		{"plausible city speed", 20, 5, 0, ""},                    // 15 mph
		{"too slow to be moving", 120, 1, 1, "below"},             // 0.5 mph
		{"implausibly fast", 10, 20, 1, "exceeds"},                // 120 mph
		{"distance with zero minutes", 0, 8, 1, "zero recorded"},  //
		{"zero-activity trip is legal", 0, 0, 0, ""},              //
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := cleanReport()
			r.TripTimeMinutes = tc.minutes
			r.TripDistanceMiles = tc.miles
			fs := svc.CheckTimeDistance(r)
			if len(fs) != tc.want {
				t.Fatalf("findings = %+v, want %d", fs, tc.want)
			}
			if tc.want == 1 {
				if fs[0].Category != CategoryTimeDistanceError || fs[0].Severity != SeverityWarning {
					t.Errorf("got %s/%s, want time_distance_error/warning", fs[0].Category, fs[0].Severity)
				}
				if !strings.Contains(fs[0].Detail, tc.contains) {
					t.Errorf("detail %q missing %q", fs[0].Detail, tc.contains)
				}
			}
		})
	}
}

func TestCheckFees(t *testing.T) {
	svc := testService(t)

	t.Run("missing congestion fee", func(t *testing.T) {
		r := cleanReport()
		r.Fees = r.CloneFees()
		delete(r.Fees, rates.FeeCongestion)
		fs := svc.CheckFees(r)
		if len(fs) != 1 || fs[0].Category != CategoryTLCFeeError {
			t.Fatalf("findings = %+v, want one tlc_fee_error", fs)
		}
		// $2.75 variance exceeds the $1.00 critical threshold
		if fs[0].Severity != SeverityCritical {
			t.Errorf("severity = %s, want critical", fs[0].Severity)
		}
	})

	t.Run("airport fee missing on airport trip", func(t *testing.T) {
		r := cleanReport()
		r.AirportCode = "JFK"
		// declared fees unchanged: airport access $2.50 expected but absent
		fs := svc.CheckFees(r)
		if len(fs) != 1 || fs[0].Category != CategoryAirportFeeError {
			t.Fatalf("findings = %+v, want one airport_fee_error", fs)
		}
		if fs[0].Expected != 2.50 || fs[0].Actual != 0 {
			t.Errorf("expected/actual = %v/%v, want 2.50/0", fs[0].Expected, fs[0].Actual)
		}
	})

	t.Run("long trip surcharge gated by mileage", func(t *testing.T) {
		r := cleanReport()
		r.TripTimeMinutes = 60
		r.TripDistanceMiles = 30 // above the 20 mile threshold
		fs := svc.CheckFees(r)
		found := false
		for _, f := range fs {
			if strings.Contains(f.Detail, rates.FeeLongTripSurcharge) {
				found = true
			}
		}
		if !found {
			t.Errorf("long trip surcharge mismatch not reported: %+v", fs)
		}
	})

	t.Run("unknown declared fee is an error", func(t *testing.T) {
		r := cleanReport()
		r.Fees = r.CloneFees()
		r.Fees["mystery_fee"] = 3.00
		fs := svc.CheckFees(r)
		if len(fs) != 1 || fs[0].Category != CategoryTLCFeeError {
			t.Fatalf("findings = %+v, want one tlc_fee_error for the unknown fee", fs)
		}
	})

	t.Run("toll reimbursement mismatch", func(t *testing.T) {
		r := cleanReport()
		r.TollsCharged = 6.55
		r.TollsReimbursed = 0
		r.TotalFare += 6.55 // keep the fare check clean
		fs := svc.CheckFees(r)
		if len(fs) != 1 || fs[0].Category != CategoryTollMismatch {
			t.Fatalf("findings = %+v, want one toll_mismatch", fs)
		}
	})
}

func TestCheckLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("borough mismatch is a warning without zone fees", func(t *testing.T) {
		svc := testService(t)
		r := cleanReport()
		r.Fees = r.CloneFees()
		delete(r.Fees, rates.FeeCongestion) // no zone-dependent fee left
		r.PickupBorough = "Queens"
		fs, err := svc.CheckLocation(ctx, r)
		if err != nil {
			t.Fatalf("check location: %v", err)
		}
		if len(fs) != 1 || fs[0].Category != CategoryZoneMismatch || fs[0].Severity != SeverityWarning {
			t.Fatalf("findings = %+v, want one zone_mismatch warning", fs)
		}
	})

	t.Run("mismatch escalates when zone-dependent fees are declared", func(t *testing.T) {
		svc := testService(t)
		r := cleanReport() // declares the congestion fee
		r.DropoffBorough = "Brooklyn"
		fs, err := svc.CheckLocation(ctx, r)
		if err != nil {
			t.Fatalf("check location: %v", err)
		}
		if len(fs) != 1 || fs[0].Severity != SeverityCritical {
			t.Fatalf("findings = %+v, want one critical zone_mismatch", fs)
		}
	})

	t.Run("unresolvable coordinates are informational", func(t *testing.T) {
		svc := NewService(testRates(), &fakeZones{}, nil, 4)
		fs, err := svc.CheckLocation(ctx, cleanReport())
		if err != nil {
			t.Fatalf("check location: %v", err)
		}
		if len(fs) != 2 {
			t.Fatalf("findings = %+v, want two info findings", fs)
		}
		for _, f := range fs {
			if f.Severity != SeverityInfo {
				t.Errorf("severity = %s, want info", f.Severity)
			}
		}
	})
}

type fakeReports struct {
	byID map[types.ID]TripRecordReport
}

func (f *fakeReports) GetReport(ctx context.Context, tripID types.ID) (TripRecordReport, error) {
	if r, ok := f.byID[tripID]; ok {
		return r, nil
	}
	return TripRecordReport{}, ErrNotFound
}

func (f *fakeReports) ListReports(ctx context.Context, filter Filter) ([]TripRecordReport, error) {
	var out []TripRecordReport
	for _, r := range f.byID {
		out = append(out, r)
	}
	return out, nil
}

func TestAuditTripByIDMissingRecord(t *testing.T) {
	svc := NewService(testRates(), manhattanZones(), &fakeReports{}, 4)
	res, err := svc.AuditTripByID(context.Background(), "gone")
	if err != nil {
		t.Fatalf("audit by id: %v", err)
	}
	if res.OverallStatus != SeverityCritical {
		t.Errorf("OverallStatus = %s, want critical", res.OverallStatus)
	}
	if len(res.Findings) != 1 || res.Findings[0].Category != CategoryMissingRecord {
		t.Fatalf("findings = %+v, want one missing_record", res.Findings)
	}
}

func TestAuditTripsPreservesOrder(t *testing.T) {
	svc := testService(t)

	const n = 40
	reports := make([]TripRecordReport, n)
	for i := range reports {
		r := cleanReport()
		r.TripID = types.ID(fmt.Sprintf("trip-%02d", i))
		if i%2 == 1 {
			r.DriverPayout = 1.00 // force an underpaid finding on odd slots
		}
		reports[i] = r
	}

	results, err := svc.AuditTrips(context.Background(), reports)
	if err != nil {
		t.Fatalf("audit batch: %v", err)
	}
	if len(results) != n {
		t.Fatalf("results = %d, want %d", len(results), n)
	}
	for i, res := range results {
		if res.TripID != reports[i].TripID {
			t.Fatalf("result %d is for trip %s, want %s", i, res.TripID, reports[i].TripID)
		}
		wantCritical := i%2 == 1
		if gotCritical := res.OverallStatus == SeverityCritical; gotCritical != wantCritical {
			t.Errorf("result %d OverallStatus = %s, want critical=%v", i, res.OverallStatus, wantCritical)
		}
	}
}
