// README: Handlers for single-trip audit, batch audit, and batch reconciliation.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"payguard/internal/modules/audit"
	"payguard/internal/modules/reconcile"
	"payguard/internal/types"
)

type AuditHandler struct {
	audits     *audit.Service
	reports    audit.Reports
	reconciler *reconcile.Service
}

func NewAuditHandler(audits *audit.Service, reports audit.Reports, reconciler *reconcile.Service) *AuditHandler {
	return &AuditHandler{audits: audits, reports: reports, reconciler: reconciler}
}

func (h *AuditHandler) AuditTrip(c *gin.Context) {
	res, err := h.audits.AuditTripByID(c.Request.Context(), types.ID(c.Param("trip_id")))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type filterReq struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	DriverID    string    `json:"driver_id"`
	Borough     string    `json:"borough"`
	AirportCode string    `json:"airport_code"`
	MinFare     float64   `json:"min_fare"`
	MaxFare     float64   `json:"max_fare"`
	Limit       int       `json:"limit"`
}

func (r filterReq) filter() audit.Filter {
	return audit.Filter{
		From:        r.From,
		To:          r.To,
		DriverID:    types.ID(r.DriverID),
		Borough:     r.Borough,
		AirportCode: r.AirportCode,
		MinFare:     r.MinFare,
		MaxFare:     r.MaxFare,
		Limit:       r.Limit,
	}
}

func (h *AuditHandler) AuditBatch(c *gin.Context) {
	var req filterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	results, err := h.audits.AuditByFilter(c.Request.Context(), req.filter())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip_count": len(results), "results": results})
}

func (h *AuditHandler) ReconcileBatch(c *gin.Context) {
	var req filterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	reports, err := h.reports.ListReports(c.Request.Context(), req.filter())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	summary, outcomes, err := h.reconciler.ReconcileBatch(c.Request.Context(), reports)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "outcomes": outcomes})
}
