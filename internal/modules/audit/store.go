// README: Trip report store backed by PostgreSQL; materializes read-only audit views.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payguard/internal/types"
)

// Filter narrows which historical trips a batch run covers. Zero values
// leave a dimension unconstrained.
type Filter struct {
	From        time.Time
	To          time.Time
	DriverID    types.ID
	Borough     string
	AirportCode string
	MinFare     float64
	MaxFare     float64
	Limit       int
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const reportColumns = `
        trip_id, driver_id, pickup_time, dropoff_time,
        trip_time_minutes, trip_distance_miles,
        pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
        pickup_borough, dropoff_borough, airport_code, out_of_town,
        base_fare, distance_fare, time_fare, discounts,
        tolls_charged, tolls_reimbursed, fees, total_fare, driver_payout`

func (s *Store) GetReport(ctx context.Context, tripID types.ID) (TripRecordReport, error) {
	row := s.db.QueryRow(ctx, `
        SELECT`+reportColumns+`
        FROM trip_reports
        WHERE trip_id = $1`, string(tripID))
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TripRecordReport{}, ErrNotFound
	}
	if err != nil {
		return TripRecordReport{}, fmt.Errorf("get trip report %s: %w", tripID, err)
	}
	return r, nil
}

func (s *Store) ListReports(ctx context.Context, f Filter) ([]TripRecordReport, error) {
	query := `
        SELECT` + reportColumns + `
        FROM trip_reports
        WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.From.IsZero() {
		query += " AND pickup_time >= " + arg(f.From)
	}
	if !f.To.IsZero() {
		query += " AND pickup_time < " + arg(f.To)
	}
	if f.DriverID != "" {
		query += " AND driver_id = " + arg(string(f.DriverID))
	}
	if f.Borough != "" {
		ph := arg(f.Borough)
		query += " AND (pickup_borough = " + ph + " OR dropoff_borough = " + ph + ")"
	}
	if f.AirportCode != "" {
		query += " AND airport_code = " + arg(f.AirportCode)
	}
	if f.MinFare > 0 {
		query += " AND total_fare >= " + arg(f.MinFare)
	}
	if f.MaxFare > 0 {
		query += " AND total_fare <= " + arg(f.MaxFare)
	}
	query += " ORDER BY pickup_time"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trip reports: %w", err)
	}
	defer rows.Close()

	var out []TripRecordReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trip reports: %w", err)
	}
	return out, nil
}

func scanReport(row pgx.Row) (TripRecordReport, error) {
	var r TripRecordReport
	err := row.Scan(
		&r.TripID, &r.DriverID, &r.PickupTime, &r.DropoffTime,
		&r.TripTimeMinutes, &r.TripDistanceMiles,
		&r.Pickup.Lat, &r.Pickup.Lng, &r.Dropoff.Lat, &r.Dropoff.Lng,
		&r.PickupBorough, &r.DropoffBorough, &r.AirportCode, &r.OutOfTown,
		&r.BaseFare, &r.DistanceFare, &r.TimeFare, &r.Discounts,
		&r.TollsCharged, &r.TollsReimbursed, &r.Fees, &r.TotalFare, &r.DriverPayout,
	)
	if err != nil {
		return TripRecordReport{}, err
	}
	return r, nil
}
