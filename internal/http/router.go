// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"

	"payguard/internal/http/handlers"
	"payguard/internal/http/middleware"
	"payguard/internal/modules/audit"
	"payguard/internal/modules/rates"
	"payguard/internal/modules/reconcile"
	"payguard/internal/modules/session"
	"payguard/internal/modules/settlement"
)

type RouterDeps struct {
	Rates       rates.RateConfig
	Sessions    *session.Service
	Settlements *settlement.Service
	Audits      *audit.Service
	Reports     audit.Reports
	Reconciler  *reconcile.Service
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	compliance := handlers.NewComplianceHandler(deps.Rates)
	r.POST("/api/compliance/rides/check", compliance.CheckRide)
	r.POST("/api/compliance/hours/check", compliance.CheckHour)
	r.POST("/api/compliance/weeks/check", compliance.CheckWeek)

	sessions := handlers.NewSessionHandler(deps.Sessions)
	r.GET("/api/sessions/:driver_id", sessions.Snapshot)
	r.POST("/api/sessions/:driver_id/rides", sessions.RecordRide)
	r.POST("/api/sessions/:driver_id/online-time", sessions.RecordOnlineTime)
	r.POST("/api/sessions/:driver_id/hourly-adjustments", sessions.RecordHourlyAdjustment)
	r.POST("/api/sessions/:driver_id/reset", sessions.Reset)

	settlements := handlers.NewSettlementHandler(deps.Settlements)
	r.POST("/api/settlements/:driver_id", settlements.Generate)

	audits := handlers.NewAuditHandler(deps.Audits, deps.Reports, deps.Reconciler)
	r.POST("/api/audit/trips/:trip_id", audits.AuditTrip)
	r.POST("/api/audit/batch", audits.AuditBatch)
	r.POST("/api/reconcile/batch", audits.ReconcileBatch)

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	return r
}
