// README: Handler for weekly settlement generation.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"payguard/internal/modules/settlement"
	"payguard/internal/types"
)

type SettlementHandler struct {
	settlements *settlement.Service
}

func NewSettlementHandler(svc *settlement.Service) *SettlementHandler {
	return &SettlementHandler{settlements: svc}
}

type generateReq struct {
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
}

func (h *SettlementHandler) Generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	s, err := h.settlements.Generate(c.Request.Context(), settlement.GenerateCommand{
		DriverID:  types.ID(c.Param("driver_id")),
		WeekStart: req.WeekStart,
		WeekEnd:   req.WeekEnd,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
