// README: Settlement archive backed by PostgreSQL (upsert per driver-week).
package settlement

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) SaveSettlement(ctx context.Context, w Settlement) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO weekly_settlements (
            id, driver_id, week_start, week_end,
            total_online_hours, total_engaged_hours, total_rides, total_earnings,
            eligible, weekly_floor, per_ride_adjustments, hourly_adjustments,
            already_covered, top_up
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (driver_id, week_start) DO UPDATE SET
            week_end = EXCLUDED.week_end,
            total_online_hours = EXCLUDED.total_online_hours,
            total_engaged_hours = EXCLUDED.total_engaged_hours,
            total_rides = EXCLUDED.total_rides,
            total_earnings = EXCLUDED.total_earnings,
            eligible = EXCLUDED.eligible,
            weekly_floor = EXCLUDED.weekly_floor,
            per_ride_adjustments = EXCLUDED.per_ride_adjustments,
            hourly_adjustments = EXCLUDED.hourly_adjustments,
            already_covered = EXCLUDED.already_covered,
            top_up = EXCLUDED.top_up`,
		string(w.ID),
		string(w.DriverID),
		w.WeekStart,
		w.WeekEnd,
		w.TotalOnlineHours,
		w.TotalEngagedHours,
		w.TotalRides,
		w.TotalEarnings,
		w.Eligible,
		w.WeeklyFloor,
		w.PerRideAdjustments,
		w.HourlyAdjustments,
		w.AlreadyCovered,
		w.TopUp,
	)
	if err != nil {
		return fmt.Errorf("upsert settlement: %w", err)
	}
	return nil
}
