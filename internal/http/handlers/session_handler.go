// README: Handlers for driver session events and snapshots.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payguard/internal/modules/session"
	"payguard/internal/types"
)

type SessionHandler struct {
	sessions *session.Service
}

func NewSessionHandler(svc *session.Service) *SessionHandler {
	return &SessionHandler{sessions: svc}
}

type recordRideReq struct {
	RideID             string  `json:"ride_id"`
	TripTimeMinutes    float64 `json:"trip_time_minutes"`
	TripDistanceMiles  float64 `json:"trip_distance_miles"`
	ActualDriverPayout float64 `json:"actual_driver_payout"`
}

func (h *SessionHandler) RecordRide(c *gin.Context) {
	var req recordRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	rec, err := h.sessions.RecordRide(c.Request.Context(), session.RecordRideCommand{
		DriverID:           types.ID(c.Param("driver_id")),
		RideID:             types.ID(req.RideID),
		TripTimeMinutes:    req.TripTimeMinutes,
		TripDistanceMiles:  req.TripDistanceMiles,
		ActualDriverPayout: req.ActualDriverPayout,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ride_id":              rec.RideID,
		"computed_minimum_pay": rec.ComputedMinimumPay,
		"adjustment_amount":    rec.AdjustmentAmount,
	})
}

type onlineTimeReq struct {
	OnlineMinutes  float64 `json:"online_minutes"`
	WaitingMinutes float64 `json:"waiting_minutes"`
}

func (h *SessionHandler) RecordOnlineTime(c *gin.Context) {
	var req onlineTimeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.sessions.RecordOnlineTime(c.Request.Context(), session.OnlineTimeCommand{
		DriverID:       types.ID(c.Param("driver_id")),
		OnlineMinutes:  req.OnlineMinutes,
		WaitingMinutes: req.WaitingMinutes,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type hourlyAdjustmentReq struct {
	Amount float64 `json:"amount"`
}

func (h *SessionHandler) RecordHourlyAdjustment(c *gin.Context) {
	var req hourlyAdjustmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.sessions.RecordHourlyAdjustment(c.Request.Context(), session.HourlyAdjustmentCommand{
		DriverID: types.ID(c.Param("driver_id")),
		Amount:   req.Amount,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Snapshot(c *gin.Context) {
	snap, err := h.sessions.Snapshot(c.Request.Context(), types.ID(c.Param("driver_id")))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"driver_id":                snap.DriverID,
		"total_earnings":           snap.TotalEarnings,
		"total_online_minutes":     snap.TotalOnlineMinutes,
		"total_waiting_minutes":    snap.TotalWaitingMinutes,
		"total_ride_adjustments":   snap.TotalRideAdjustments,
		"total_hourly_adjustments": snap.TotalHourlyAdjustments,
		"rides_completed":          snap.RidesCompleted,
		"utilization_rate":         snap.UtilizationRate,
	})
}

func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.sessions.Reset(c.Request.Context(), types.ID(c.Param("driver_id"))); err != nil {
		writeEngineError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
