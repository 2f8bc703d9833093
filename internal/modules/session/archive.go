// README: Session archive backed by PostgreSQL; keeps adjustment history across resets.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ArchiveStore struct {
	db *pgxpool.Pool
}

func NewArchiveStore(db *pgxpool.Pool) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// ArchiveSession writes the closed period's summary row and every ride
// adjustment record inside one transaction.
func (a *ArchiveStore) ArchiveSession(ctx context.Context, s DriverSession, endedAt time.Time) error {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO driver_session_archive (
            driver_id, started_at, ended_at,
            total_earnings, total_online_minutes, total_waiting_minutes,
            total_ride_adjustments, total_hourly_adjustments, rides_completed
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(s.DriverID),
		s.StartedAt,
		endedAt,
		s.TotalEarnings,
		s.TotalOnlineMinutes,
		s.TotalWaitingMinutes,
		s.TotalRideAdjustments,
		s.TotalHourlyAdjustments,
		s.RidesCompleted,
	)
	if err != nil {
		return fmt.Errorf("insert session archive: %w", err)
	}

	for _, rec := range s.Adjustments {
		_, err = tx.Exec(ctx, `
            INSERT INTO ride_adjustment_archive (
                driver_id, ride_id, trip_time_minutes, trip_distance_miles,
                actual_driver_payout, computed_minimum_pay, adjustment_amount, created_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (ride_id) DO NOTHING`,
			string(s.DriverID),
			string(rec.RideID),
			rec.TripTimeMinutes,
			rec.TripDistanceMiles,
			rec.ActualDriverPayout,
			rec.ComputedMinimumPay,
			rec.AdjustmentAmount,
			rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert ride adjustment %s: %w", rec.RideID, err)
		}
	}

	return tx.Commit(ctx)
}
