// README: Session service tests (accumulation, integrity rejection, archival reset).
package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"payguard/internal/modules/minpay"
	"payguard/internal/modules/rates"
)

func testRates() rates.RateConfig {
	cfg := rates.Defaults()
	cfg.PerMinuteRate = 0.40
	cfg.PerMileRate = 1.26
	return cfg
}

type fakeArchive struct {
	sessions []DriverSession
	fail     error
}

func (f *fakeArchive) ArchiveSession(ctx context.Context, s DriverSession, endedAt time.Time) error {
	if f.fail != nil {
		return f.fail
	}
	f.sessions = append(f.sessions, s)
	return nil
}

func TestRecordRideAccumulates(t *testing.T) {
	svc := NewService(NewStore(), testRates(), nil)
	ctx := context.Background()

	// floor 14.30, payout 9.00 -> adjustment 5.30
	rec, err := svc.RecordRide(ctx, RecordRideCommand{
		DriverID: "d1", RideID: "r1",
		TripTimeMinutes: 20, TripDistanceMiles: 5, ActualDriverPayout: 9.00,
	})
	if err != nil {
		t.Fatalf("record ride: %v", err)
	}
	if rec.AdjustmentAmount != 5.30 {
		t.Errorf("AdjustmentAmount = %v, want 5.30", rec.AdjustmentAmount)
	}

	// compliant ride: floor 14.30, payout 20.00
	if _, err := svc.RecordRide(ctx, RecordRideCommand{
		DriverID: "d1", RideID: "r2",
		TripTimeMinutes: 20, TripDistanceMiles: 5, ActualDriverPayout: 20.00,
	}); err != nil {
		t.Fatalf("record ride: %v", err)
	}

	snap, err := svc.Snapshot(ctx, "d1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.RidesCompleted != 2 {
		t.Errorf("RidesCompleted = %d, want 2", snap.RidesCompleted)
	}
	if snap.TotalEarnings != 29.00 {
		t.Errorf("TotalEarnings = %v, want 29.00", snap.TotalEarnings)
	}
	if snap.TotalRideAdjustments != 5.30 {
		t.Errorf("TotalRideAdjustments = %v, want 5.30", snap.TotalRideAdjustments)
	}
	if len(snap.Adjustments) != 2 {
		t.Errorf("Adjustments = %d records, want 2", len(snap.Adjustments))
	}
}

func TestOnlineTimeIntegrity(t *testing.T) {
	svc := NewService(NewStore(), testRates(), nil)
	ctx := context.Background()

	if err := svc.RecordOnlineTime(ctx, OnlineTimeCommand{DriverID: "d1", OnlineMinutes: 60, WaitingMinutes: 20}); err != nil {
		t.Fatalf("online time: %v", err)
	}

	// waiting 20+50=70 would exceed online 60+0=60
	err := svc.RecordOnlineTime(ctx, OnlineTimeCommand{DriverID: "d1", WaitingMinutes: 50})
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("error = %v, want ErrIntegrity", err)
	}

	// rejected delta must not have partially applied
	snap, _ := svc.Snapshot(ctx, "d1")
	if snap.TotalOnlineMinutes != 60 || snap.TotalWaitingMinutes != 20 {
		t.Errorf("session mutated by rejected delta: online=%v waiting=%v", snap.TotalOnlineMinutes, snap.TotalWaitingMinutes)
	}
	if snap.UtilizationRate != (60.0-20.0)/60.0 {
		t.Errorf("UtilizationRate = %v, want %v", snap.UtilizationRate, (60.0-20.0)/60.0)
	}
}

func TestHourlyAdjustmentsAccumulate(t *testing.T) {
	svc := NewService(NewStore(), testRates(), nil)
	ctx := context.Background()

	for _, amt := range []float64{3.25, 1.75} {
		if err := svc.RecordHourlyAdjustment(ctx, HourlyAdjustmentCommand{DriverID: "d1", Amount: amt}); err != nil {
			t.Fatalf("hourly adjustment: %v", err)
		}
	}
	snap, _ := svc.Snapshot(ctx, "d1")
	if snap.TotalHourlyAdjustments != 5.00 {
		t.Errorf("TotalHourlyAdjustments = %v, want 5.00", snap.TotalHourlyAdjustments)
	}

	err := svc.RecordHourlyAdjustment(ctx, HourlyAdjustmentCommand{DriverID: "d1", Amount: -1})
	if !errors.Is(err, minpay.ErrInvalidInput) {
		t.Errorf("negative amount error = %v, want ErrInvalidInput", err)
	}
}

func TestSnapshotUnknownDriverIsZero(t *testing.T) {
	svc := NewService(NewStore(), testRates(), nil)
	snap, err := svc.Snapshot(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.DriverID != "ghost" || snap.RidesCompleted != 0 || snap.TotalEarnings != 0 {
		t.Errorf("unknown driver snapshot not zero: %+v", snap)
	}
}

func TestResetArchivesBeforeDiscarding(t *testing.T) {
	arch := &fakeArchive{}
	svc := NewService(NewStore(), testRates(), arch)
	ctx := context.Background()

	if _, err := svc.RecordRide(ctx, RecordRideCommand{
		DriverID: "d1", RideID: "r1",
		TripTimeMinutes: 20, TripDistanceMiles: 5, ActualDriverPayout: 9.00,
	}); err != nil {
		t.Fatalf("record ride: %v", err)
	}

	if err := svc.Reset(ctx, "d1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(arch.sessions) != 1 || len(arch.sessions[0].Adjustments) != 1 {
		t.Fatalf("archive did not receive the session's adjustments: %+v", arch.sessions)
	}

	snap, _ := svc.Snapshot(ctx, "d1")
	if snap.RidesCompleted != 0 {
		t.Errorf("session survived reset: %+v", snap)
	}

	// reset with no session is a no-op
	if err := svc.Reset(ctx, "d1"); err != nil {
		t.Fatalf("reset empty: %v", err)
	}
	if len(arch.sessions) != 1 {
		t.Errorf("no-op reset archived a session")
	}
}

// blockingArchive parks inside ArchiveSession until released, so tests can
// interleave events with an in-flight reset.
type blockingArchive struct {
	entered  chan struct{}
	release  chan struct{}
	sessions []DriverSession
}

func (b *blockingArchive) ArchiveSession(ctx context.Context, s DriverSession, endedAt time.Time) error {
	b.entered <- struct{}{}
	<-b.release
	b.sessions = append(b.sessions, s)
	return nil
}

func TestResetDoesNotDropRidesRacingTheArchive(t *testing.T) {
	arch := &blockingArchive{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(NewStore(), testRates(), arch)
	ctx := context.Background()

	if _, err := svc.RecordRide(ctx, RecordRideCommand{
		DriverID: "d1", RideID: "r1",
		TripTimeMinutes: 20, TripDistanceMiles: 5, ActualDriverPayout: 9.00,
	}); err != nil {
		t.Fatalf("record ride: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- svc.Reset(ctx, "d1") }()
	<-arch.entered

	// lands while the reset is archiving the detached period; it must open a
	// fresh session rather than vanish with the old one
	if _, err := svc.RecordRide(ctx, RecordRideCommand{
		DriverID: "d1", RideID: "r2",
		TripTimeMinutes: 10, TripDistanceMiles: 2, ActualDriverPayout: 3.00,
	}); err != nil {
		t.Fatalf("record ride during reset: %v", err)
	}

	close(arch.release)
	if err := <-done; err != nil {
		t.Fatalf("reset: %v", err)
	}

	if len(arch.sessions) != 1 || len(arch.sessions[0].Adjustments) != 1 || arch.sessions[0].Adjustments[0].RideID != "r1" {
		t.Fatalf("archived period should hold exactly r1: %+v", arch.sessions)
	}
	snap, _ := svc.Snapshot(ctx, "d1")
	if snap.RidesCompleted != 1 || len(snap.Adjustments) != 1 || snap.Adjustments[0].RideID != "r2" {
		t.Errorf("ride recorded during reset was lost: %+v", snap)
	}
}

func TestResetKeepsSessionWhenArchiveFails(t *testing.T) {
	arch := &fakeArchive{fail: errors.New("db down")}
	svc := NewService(NewStore(), testRates(), arch)
	ctx := context.Background()

	if _, err := svc.RecordRide(ctx, RecordRideCommand{
		DriverID: "d1", RideID: "r1",
		TripTimeMinutes: 10, TripDistanceMiles: 2, ActualDriverPayout: 1.00,
	}); err != nil {
		t.Fatalf("record ride: %v", err)
	}
	if err := svc.Reset(ctx, "d1"); err == nil {
		t.Fatal("reset should surface archive failure")
	}
	snap, _ := svc.Snapshot(ctx, "d1")
	if snap.RidesCompleted != 1 {
		t.Errorf("session discarded despite failed archive: %+v", snap)
	}
}
