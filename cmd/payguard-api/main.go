// README: Entry point; loads config and the rate card, wires services, starts HTTP server and the audit sweep.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payguard/internal/config"
	httptransport "payguard/internal/http"
	"payguard/internal/infra"
	"payguard/internal/modules/audit"
	"payguard/internal/modules/rates"
	"payguard/internal/modules/reconcile"
	"payguard/internal/modules/session"
	"payguard/internal/modules/settlement"
	"payguard/internal/zones"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	// The rate card is loaded exactly once; every service gets the same value.
	rateCfg, err := rates.NewStore(dbPool).LoadActive(ctx)
	if err != nil {
		log.Fatalf("load rate card: %v", err)
	}

	zoneStore := zones.NewStore(redisClient)
	var zoneSvc *zones.Service
	if cfg.Maps.APIKey != "" {
		geocoder, err := zones.NewGeocoder(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps client: %v", err)
		}
		zoneSvc = zones.NewService(zoneStore, geocoder, cfg.Zones.SearchRadiusKm)
	} else {
		zoneSvc = zones.NewService(zoneStore, nil, cfg.Zones.SearchRadiusKm)
	}

	sessionSvc := session.NewService(session.NewStore(), rateCfg, session.NewArchiveStore(dbPool))
	settlementSvc := settlement.NewService(sessionSvc, rateCfg, settlement.NewStore(dbPool))

	reportStore := audit.NewStore(dbPool)
	auditSvc := audit.NewService(rateCfg, zoneSvc, reportStore, cfg.Audit.Workers)
	reconcileSvc := reconcile.NewService(rateCfg, auditSvc, reconcile.NewAuditLogStore(dbPool))

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Rates:       rateCfg,
		Sessions:    sessionSvc,
		Settlements: settlementSvc,
		Audits:      auditSvc,
		Reports:     reportStore,
		Reconciler:  reconcileSvc,
	})

	if cfg.Audit.SweepSeconds > 0 {
		go runAuditSweep(ctx, time.Duration(cfg.Audit.SweepSeconds)*time.Second, reportStore, reconcileSvc)
	}

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// runAuditSweep periodically re-audits the previous day's trips and
// auto-reconciles what the policy table allows.
func runAuditSweep(ctx context.Context, interval time.Duration, reports *audit.Store, reconciler *reconcile.Service) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			to := time.Now().UTC().Truncate(24 * time.Hour)
			from := to.Add(-24 * time.Hour)
			trips, err := reports.ListReports(ctx, audit.Filter{From: from, To: to})
			if err != nil {
				log.Printf("audit sweep: list trips: %v", err)
				continue
			}
			if len(trips) == 0 {
				continue
			}
			summary, _, err := reconciler.ReconcileBatch(ctx, trips)
			if err != nil {
				log.Printf("audit sweep: reconcile: %v", err)
				continue
			}
			log.Printf("audit sweep batch %s: %d trips, %d ok, %d for review, %d fixes",
				summary.BatchID, summary.TripCount, summary.SuccessCount, summary.ReviewCount, summary.AutoFixedCount)
		}
	}
}
