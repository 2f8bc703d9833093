// README: Audit service: runs the checker battery per trip, fans batches out over a bounded worker pool.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"payguard/internal/modules/rates"
	"payguard/internal/types"
	"payguard/internal/zones"
)

var ErrNotFound = errors.New("trip record not found")

// ZoneLookup is the external borough/zone resolver collaborator.
type ZoneLookup interface {
	Lookup(ctx context.Context, p types.Point) (zones.Zone, error)
}

// Reports materializes trip record views for audit.
type Reports interface {
	GetReport(ctx context.Context, tripID types.ID) (TripRecordReport, error)
	ListReports(ctx context.Context, f Filter) ([]TripRecordReport, error)
}

type Service struct {
	cfg     rates.RateConfig
	zones   ZoneLookup
	reports Reports
	workers int
}

func NewService(cfg rates.RateConfig, zoneLookup ZoneLookup, reports Reports, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{cfg: cfg, zones: zoneLookup, reports: reports, workers: workers}
}

// AuditTrip runs every checker against one report and aggregates severities.
func (s *Service) AuditTrip(ctx context.Context, r TripRecordReport) (Result, error) {
	findings := s.CheckFare(r)
	findings = append(findings, s.CheckDriverPay(r)...)
	findings = append(findings, s.CheckTimeDistance(r)...)
	findings = append(findings, s.CheckFees(r)...)

	locFindings, err := s.CheckLocation(ctx, r)
	if err != nil {
		return Result{}, err
	}
	findings = append(findings, locFindings...)

	return Result{
		TripID:        r.TripID,
		OverallStatus: WorstSeverity(findings),
		Findings:      findings,
	}, nil
}

// AuditTripByID audits a stored trip. An absent record is not an engine
// error: it audits as a critical, unfixable missing-record finding.
func (s *Service) AuditTripByID(ctx context.Context, tripID types.ID) (Result, error) {
	r, err := s.reports.GetReport(ctx, tripID)
	if errors.Is(err, ErrNotFound) {
		return missingRecordResult(tripID), nil
	}
	if err != nil {
		return Result{}, err
	}
	return s.AuditTrip(ctx, r)
}

// AuditTrips audits a batch concurrently. Each trip is independent and
// read-only against the rate card, so trips fan out across the worker bound;
// results keep the input order.
func (s *Service) AuditTrips(ctx context.Context, reports []TripRecordReport) ([]Result, error) {
	results := make([]Result, len(reports))
	errs := make([]error, len(reports))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, r := range reports {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, r TripRecordReport) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = s.AuditTrip(ctx, r)
		}(i, r)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("audit trip %s: %w", reports[i].TripID, err)
		}
	}
	return results, nil
}

// AuditByFilter pulls matching trip records and batch-audits them.
func (s *Service) AuditByFilter(ctx context.Context, f Filter) ([]Result, error) {
	reports, err := s.reports.ListReports(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.AuditTrips(ctx, reports)
}

func missingRecordResult(tripID types.ID) Result {
	return Result{
		TripID:        tripID,
		OverallStatus: SeverityCritical,
		Findings: []Finding{{
			Category:  CategoryMissingRecord,
			Severity:  SeverityCritical,
			Detail:    fmt.Sprintf("no trip record for %s; absent data cannot be reconstructed", tripID),
			FixStatus: FixNotApplicable,
		}},
	}
}
