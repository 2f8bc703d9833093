// README: Rate card store backed by PostgreSQL; falls back to compiled-in defaults.
package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// LoadActive reads the active rate card and its fee schedule. When no row is
// active it returns Defaults(); the engine must always have a rate card.
func (s *Store) LoadActive(ctx context.Context) (RateConfig, error) {
	cfg := Defaults()

	row := s.db.QueryRow(ctx, `
        SELECT per_minute_rate, per_mile_rate, hourly_minimum_rate,
               weekly_min_rides, weekly_min_online_hours,
               min_plausible_mph, max_plausible_mph,
               fare_tolerance, fare_critical_variance, fee_tolerance,
               driver_pay_tolerance, toll_tolerance
        FROM rate_configs
        WHERE active
        ORDER BY effective_at DESC
        LIMIT 1`)
	err := row.Scan(
		&cfg.PerMinuteRate, &cfg.PerMileRate, &cfg.HourlyMinimumRate,
		&cfg.WeeklyMinRides, &cfg.WeeklyMinOnlineHours,
		&cfg.MinPlausibleMPH, &cfg.MaxPlausibleMPH,
		&cfg.Tolerance.Fare, &cfg.Tolerance.FareCritical, &cfg.Tolerance.Fee,
		&cfg.Tolerance.DriverPay, &cfg.Tolerance.Toll,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return RateConfig{}, fmt.Errorf("load rate config: %w", err)
	}

	rows, err := s.db.Query(ctx, `
        SELECT name, basis, rate, min_trip_miles, airport_only, out_of_town_only
        FROM fee_schedule
        WHERE active`)
	if err != nil {
		return RateConfig{}, fmt.Errorf("load fee schedule: %w", err)
	}
	defer rows.Close()

	var fees []Fee
	for rows.Next() {
		var f Fee
		if err := rows.Scan(&f.Name, &f.Basis, &f.Rate, &f.MinTripMiles, &f.AirportOnly, &f.OutOfTownOnly); err != nil {
			return RateConfig{}, fmt.Errorf("scan fee row: %w", err)
		}
		fees = append(fees, f)
	}
	if err := rows.Err(); err != nil {
		return RateConfig{}, fmt.Errorf("iterate fee schedule: %w", err)
	}
	if len(fees) > 0 {
		cfg.Fees = fees
	}

	if err := cfg.Validate(); err != nil {
		return RateConfig{}, err
	}
	return cfg, nil
}
