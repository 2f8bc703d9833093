// README: Settlement processor: nets per-ride and hourly adjustments against the weekly floor.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payguard/internal/modules/minpay"
	"payguard/internal/modules/rates"
	"payguard/internal/modules/session"
	"payguard/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// SessionReader supplies the accumulated session view for a driver.
type SessionReader interface {
	Snapshot(ctx context.Context, driverID types.ID) (session.Snapshot, error)
}

// Archiver records generated settlements; re-running a week overwrites the
// prior row for the same (driver, week start) rather than duplicating it.
type Archiver interface {
	SaveSettlement(ctx context.Context, s Settlement) error
}

type Service struct {
	sessions SessionReader
	cfg      rates.RateConfig
	archive  Archiver
}

func NewService(sessions SessionReader, cfg rates.RateConfig, archive Archiver) *Service {
	return &Service{sessions: sessions, cfg: cfg, archive: archive}
}

type GenerateCommand struct {
	DriverID  types.ID
	WeekStart time.Time
	WeekEnd   time.Time
}

// Generate produces the weekly settlement for a driver. A driver with no
// session activity settles as a zero-activity, ineligible week. The
// computation is deterministic and idempotent; whether the resulting top-up
// is disbursed (and only once) is the caller's responsibility.
func (s *Service) Generate(ctx context.Context, cmd GenerateCommand) (Settlement, error) {
	if cmd.DriverID == "" {
		return Settlement{}, ErrBadRequest
	}
	if !cmd.WeekEnd.After(cmd.WeekStart) {
		return Settlement{}, fmt.Errorf("%w: week end must be after week start", ErrBadRequest)
	}

	snap, err := s.sessions.Snapshot(ctx, cmd.DriverID)
	if err != nil {
		return Settlement{}, fmt.Errorf("load session for %s: %w", cmd.DriverID, err)
	}

	onlineHours := snap.TotalOnlineMinutes / 60
	engagedHours := (snap.TotalOnlineMinutes - snap.TotalWaitingMinutes) / 60

	weekly, err := minpay.Weekly(s.cfg, minpay.WeeklyInput{
		DriverID:           cmd.DriverID,
		WeekStart:          cmd.WeekStart,
		WeekEnd:            cmd.WeekEnd,
		OnlineHours:        onlineHours,
		EngagedHours:       engagedHours,
		TotalRides:         snap.RidesCompleted,
		TotalEarnings:      snap.TotalEarnings,
		PerRideAdjustments: snap.TotalRideAdjustments,
		HourlyAdjustments:  snap.TotalHourlyAdjustments,
	})
	if err != nil {
		return Settlement{}, err
	}

	out := Settlement{
		ID:                 settlementID(cmd.DriverID, cmd.WeekStart),
		DriverID:           cmd.DriverID,
		WeekStart:          cmd.WeekStart,
		WeekEnd:            cmd.WeekEnd,
		TotalOnlineHours:   onlineHours,
		TotalEngagedHours:  engagedHours,
		TotalRides:         snap.RidesCompleted,
		TotalEarnings:      snap.TotalEarnings,
		Eligible:           weekly.Eligible,
		WeeklyFloor:        weekly.WeeklyFloor,
		PerRideAdjustments: snap.TotalRideAdjustments,
		HourlyAdjustments:  snap.TotalHourlyAdjustments,
		AlreadyCovered:     weekly.AlreadyCovered,
		TopUp:              weekly.TopUp,
	}

	if s.archive != nil {
		if err := s.archive.SaveSettlement(ctx, out); err != nil {
			return Settlement{}, fmt.Errorf("save settlement %s: %w", out.ID, err)
		}
	}
	return out, nil
}
