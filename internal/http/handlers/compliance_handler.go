// README: Handlers for the three minimum-pay check tiers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"payguard/internal/modules/minpay"
	"payguard/internal/modules/rates"
	"payguard/internal/types"
)

type ComplianceHandler struct {
	cfg rates.RateConfig
}

func NewComplianceHandler(cfg rates.RateConfig) *ComplianceHandler {
	return &ComplianceHandler{cfg: cfg}
}

type perRideReq struct {
	TripTimeMinutes    float64 `json:"trip_time_minutes"`
	TripDistanceMiles  float64 `json:"trip_distance_miles"`
	ActualDriverPayout float64 `json:"actual_driver_payout"`
}

func (h *ComplianceHandler) CheckRide(c *gin.Context) {
	var req perRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := minpay.PerRide(h.cfg, minpay.PerRideInput{
		TripTimeMinutes:    req.TripTimeMinutes,
		TripDistanceMiles:  req.TripDistanceMiles,
		ActualDriverPayout: req.ActualDriverPayout,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"minimum_pay":  res.MinimumPay,
		"actual_pay":   res.ActualPay,
		"adjustment":   res.Adjustment,
		"is_compliant": res.IsCompliant,
	})
}

type hourlyReq struct {
	DriverID       string    `json:"driver_id"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	OnlineMinutes  float64   `json:"online_minutes"`
	EngagedMinutes float64   `json:"engaged_minutes"`
	TotalEarnings  float64   `json:"total_earnings"`
	RidesCompleted int       `json:"rides_completed"`
}

func (h *ComplianceHandler) CheckHour(c *gin.Context) {
	var req hourlyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := minpay.Hourly(h.cfg, minpay.HourlyInput{
		DriverID:       types.ID(req.DriverID),
		WindowStart:    req.WindowStart,
		WindowEnd:      req.WindowEnd,
		OnlineMinutes:  req.OnlineMinutes,
		EngagedMinutes: req.EngagedMinutes,
		TotalEarnings:  req.TotalEarnings,
		RidesCompleted: req.RidesCompleted,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"required_floor":   res.RequiredFloor,
		"adjustment":       res.Adjustment,
		"utilization_rate": res.UtilizationRate,
		"is_compliant":     res.IsCompliant,
	})
}

type weeklyReq struct {
	DriverID           string    `json:"driver_id"`
	WeekStart          time.Time `json:"week_start"`
	WeekEnd            time.Time `json:"week_end"`
	OnlineHours        float64   `json:"online_hours"`
	EngagedHours       float64   `json:"engaged_hours"`
	TotalRides         int       `json:"total_rides"`
	TotalEarnings      float64   `json:"total_earnings"`
	PerRideAdjustments float64   `json:"per_ride_adjustments"`
	HourlyAdjustments  float64   `json:"hourly_adjustments"`
}

func (h *ComplianceHandler) CheckWeek(c *gin.Context) {
	var req weeklyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := minpay.Weekly(h.cfg, minpay.WeeklyInput{
		DriverID:           types.ID(req.DriverID),
		WeekStart:          req.WeekStart,
		WeekEnd:            req.WeekEnd,
		OnlineHours:        req.OnlineHours,
		EngagedHours:       req.EngagedHours,
		TotalRides:         req.TotalRides,
		TotalEarnings:      req.TotalEarnings,
		PerRideAdjustments: req.PerRideAdjustments,
		HourlyAdjustments:  req.HourlyAdjustments,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"eligible":         res.Eligible,
		"weekly_floor":     res.WeeklyFloor,
		"already_covered":  res.AlreadyCovered,
		"top_up":           res.TopUp,
		"utilization_rate": res.UtilizationRate,
	})
}
