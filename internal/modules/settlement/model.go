// README: Weekly settlement snapshot for one (driver, week) pair.
package settlement

import (
	"time"

	"payguard/internal/types"

	"github.com/google/uuid"
)

// Settlement is the immutable result of one weekly settlement run. It is a
// pure function of the session data and the week window, so re-running over
// identical inputs yields an identical value, settlement ID included.
type Settlement struct {
	ID        types.ID  `json:"id"`
	DriverID  types.ID  `json:"driver_id"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`

	TotalOnlineHours  float64 `json:"total_online_hours"`
	TotalEngagedHours float64 `json:"total_engaged_hours"`
	TotalRides        int     `json:"total_rides"`
	TotalEarnings     float64 `json:"total_earnings"`

	// Eligible reports whether the weekly ride/hour minimums were met.
	// An ineligible week carries zero floor and top-up.
	Eligible    bool    `json:"eligible"`
	WeeklyFloor float64 `json:"weekly_floor"`
	// Adjustments already disbursed this week, netted against the floor.
	PerRideAdjustments float64 `json:"per_ride_adjustments"`
	HourlyAdjustments  float64 `json:"hourly_adjustments"`
	AlreadyCovered     float64 `json:"already_covered"`
	TopUp              float64 `json:"top_up"`
}

// settlementNamespace seeds the deterministic settlement ID so the same
// (driver, weekStart) always settles under the same identifier.
var settlementNamespace = uuid.MustParse("9f2c4b66-1a03-4ad2-9d7e-5b8c0d3f1e42")

func settlementID(driverID types.ID, weekStart time.Time) types.ID {
	key := string(driverID) + "|" + weekStart.UTC().Format(time.RFC3339)
	return types.ID(uuid.NewSHA1(settlementNamespace, []byte(key)).String())
}
