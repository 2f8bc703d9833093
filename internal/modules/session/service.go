// README: Session service: records ride and online-time events, serves compliance snapshots, archival reset.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payguard/internal/modules/minpay"
	"payguard/internal/modules/rates"
	"payguard/internal/types"
)

var (
	// ErrIntegrity marks an event that would corrupt session totals
	// (waiting time exceeding online time). The session is left untouched.
	ErrIntegrity  = errors.New("session data integrity violation")
	ErrBadRequest = errors.New("bad request")
)

// Archiver persists ride adjustment records when a session is reset, so the
// audit trail survives the in-memory state being discarded.
type Archiver interface {
	ArchiveSession(ctx context.Context, s DriverSession, endedAt time.Time) error
}

type Service struct {
	store   *Store
	cfg     rates.RateConfig
	archive Archiver
	now     func() time.Time
}

func NewService(store *Store, cfg rates.RateConfig, archive Archiver) *Service {
	return &Service{store: store, cfg: cfg, archive: archive, now: time.Now}
}

type RecordRideCommand struct {
	DriverID           types.ID
	RideID             types.ID
	TripTimeMinutes    float64
	TripDistanceMiles  float64
	ActualDriverPayout float64
}

type OnlineTimeCommand struct {
	DriverID       types.ID
	OnlineMinutes  float64
	WaitingMinutes float64
}

type HourlyAdjustmentCommand struct {
	DriverID types.ID
	Amount   float64
}

// RecordRide runs the per-ride guarantee check and folds the result into the
// driver's session: earnings, ride count, and any shortfall adjustment.
func (s *Service) RecordRide(ctx context.Context, cmd RecordRideCommand) (RideAdjustment, error) {
	if cmd.DriverID == "" || cmd.RideID == "" {
		return RideAdjustment{}, ErrBadRequest
	}
	check, err := minpay.PerRide(s.cfg, minpay.PerRideInput{
		TripTimeMinutes:    cmd.TripTimeMinutes,
		TripDistanceMiles:  cmd.TripDistanceMiles,
		ActualDriverPayout: cmd.ActualDriverPayout,
	})
	if err != nil {
		return RideAdjustment{}, err
	}

	rec := RideAdjustment{
		RideID:             cmd.RideID,
		TripTimeMinutes:    cmd.TripTimeMinutes,
		TripDistanceMiles:  cmd.TripDistanceMiles,
		ActualDriverPayout: cmd.ActualDriverPayout,
		ComputedMinimumPay: check.MinimumPay,
		AdjustmentAmount:   check.Adjustment,
		CreatedAt:          s.now(),
	}
	err = s.store.apply(cmd.DriverID, func(sess *DriverSession) error {
		sess.TotalEarnings = types.RoundCents(sess.TotalEarnings + cmd.ActualDriverPayout)
		sess.TotalRideAdjustments = types.RoundCents(sess.TotalRideAdjustments + check.Adjustment)
		sess.RidesCompleted++
		sess.Adjustments = append(sess.Adjustments, rec)
		return nil
	})
	if err != nil {
		return RideAdjustment{}, err
	}
	return rec, nil
}

// RecordOnlineTime adds an online/waiting time delta. A delta that would
// leave waiting above online is rejected as a data-integrity error rather
// than clamped.
func (s *Service) RecordOnlineTime(ctx context.Context, cmd OnlineTimeCommand) error {
	if cmd.DriverID == "" {
		return ErrBadRequest
	}
	if cmd.OnlineMinutes < 0 || cmd.WaitingMinutes < 0 {
		return fmt.Errorf("%w: negative time delta", minpay.ErrInvalidInput)
	}
	return s.store.apply(cmd.DriverID, func(sess *DriverSession) error {
		online := sess.TotalOnlineMinutes + cmd.OnlineMinutes
		waiting := sess.TotalWaitingMinutes + cmd.WaitingMinutes
		if waiting > online {
			return fmt.Errorf("%w: waiting minutes %v would exceed online minutes %v", ErrIntegrity, waiting, online)
		}
		sess.TotalOnlineMinutes = online
		sess.TotalWaitingMinutes = waiting
		return nil
	})
}

// RecordHourlyAdjustment accumulates a disbursed hourly-tier adjustment so
// weekly settlement can net it. Hourly bookkeeping is first-class: the total
// is never assumed to be zero.
func (s *Service) RecordHourlyAdjustment(ctx context.Context, cmd HourlyAdjustmentCommand) error {
	if cmd.DriverID == "" {
		return ErrBadRequest
	}
	if cmd.Amount < 0 {
		return fmt.Errorf("%w: hourly adjustment must be >= 0, got %v", minpay.ErrInvalidInput, cmd.Amount)
	}
	return s.store.apply(cmd.DriverID, func(sess *DriverSession) error {
		sess.TotalHourlyAdjustments = types.RoundCents(sess.TotalHourlyAdjustments + cmd.Amount)
		return nil
	})
}

// Snapshot returns the live compliance view without mutating state. A driver
// with no session yet gets a zero-activity snapshot; that is a legitimate
// state, not an error.
func (s *Service) Snapshot(ctx context.Context, driverID types.ID) (Snapshot, error) {
	if driverID == "" {
		return Snapshot{}, ErrBadRequest
	}
	sess, ok := s.store.get(driverID)
	if !ok {
		return Snapshot{DriverID: driverID}, nil
	}
	return sess.snapshot(), nil
}

// Reset closes the driver's tracking period. The period is detached first,
// so events racing the reset open a fresh session instead of landing on the
// one being archived; a failed archive folds the detached period back in.
// Resetting a driver with no session is a no-op.
func (s *Service) Reset(ctx context.Context, driverID types.ID) error {
	if driverID == "" {
		return ErrBadRequest
	}
	sess, ok := s.store.detach(driverID)
	if !ok {
		return nil
	}
	if s.archive == nil {
		return nil
	}
	if err := s.archive.ArchiveSession(ctx, sess, s.now()); err != nil {
		s.store.restore(sess)
		return fmt.Errorf("archive session %s: %w", driverID, err)
	}
	return nil
}
