// README: Reconciliation service: applies the policy table per finding, batch mode with audit-log summary.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"payguard/internal/modules/audit"
	"payguard/internal/modules/rates"
	"payguard/internal/types"
)

// Auditor produces the findings a reconciliation run acts on.
type Auditor interface {
	AuditTrip(ctx context.Context, r audit.TripRecordReport) (audit.Result, error)
}

// AuditLog records batch summaries for the external audit trail.
type AuditLog interface {
	RecordBatch(ctx context.Context, s BatchSummary) error
}

type Service struct {
	cfg     rates.RateConfig
	auditor Auditor
	log     AuditLog
	now     func() time.Time
}

func NewService(cfg rates.RateConfig, auditor Auditor, log AuditLog) *Service {
	return &Service{cfg: cfg, auditor: auditor, log: log, now: time.Now}
}

// ReconcileTrip decides a fix for every finding. Auto-fixable values are
// recomputed from the rate card and the trip's own raw attributes and
// replaced on a copy of the report; the original is never mutated. The
// returned Result carries the stamped fix statuses and the AutoFixApplied
// flag; the corrected report is what the caller should persist.
func (s *Service) ReconcileTrip(ctx context.Context, r audit.TripRecordReport, res audit.Result) (Outcome, audit.Result, audit.TripRecordReport) {
	corrected := r
	corrected.Fees = r.CloneFees()

	out := Outcome{TripID: res.TripID}
	unfixable := false
	criticalCount := 0
	criticalFixed := 0

	findings := append([]audit.Finding(nil), res.Findings...)
	var autoFix []*audit.Finding
	for i := range findings {
		f := &findings[i]
		if f.Severity == audit.SeverityInfo {
			// Informational findings record an observation (for example a
			// coordinate outside the zone index), not a detected defect.
			// Nothing to fix and no reason to hold the trip for review.
			continue
		}
		if f.Severity == audit.SeverityCritical {
			criticalCount++
		}
		switch PolicyFor(f.Category) {
		case PolicyAutoFix:
			f.FixStatus = audit.FixAutoFixed
			autoFix = append(autoFix, f)
			if f.Severity == audit.SeverityCritical {
				criticalFixed++
			}
		case PolicyManualReview:
			f.FixStatus = audit.FixRequiresReview
			out.RequiresManualReview = true
			out.ReviewReasons = append(out.ReviewReasons, f.Detail)
		case PolicyUnfixable:
			f.FixStatus = audit.FixUnfixable
			unfixable = true
		}
	}

	// Component fixes (fees, tolls) land before the fare fix so the
	// recomputed total reflects the corrected values.
	for _, f := range autoFix {
		if f.Category != audit.CategoryFareMismatch {
			out.AppliedFixes = append(out.AppliedFixes, s.applyFix(&corrected, *f))
		}
	}
	for _, f := range autoFix {
		if f.Category == audit.CategoryFareMismatch {
			out.AppliedFixes = append(out.AppliedFixes, s.applyFix(&corrected, *f))
		}
	}

	res.Findings = findings
	res.AutoFixApplied = len(out.AppliedFixes) > 0 && criticalFixed == criticalCount
	out.Success = !out.RequiresManualReview && !unfixable
	return out, res, corrected
}

// applyFix recomputes the correct value for one auto-fixable finding.
func (s *Service) applyFix(r *audit.TripRecordReport, f audit.Finding) AppliedFix {
	switch f.Category {
	case audit.CategoryFareMismatch:
		before := r.TotalFare
		r.TotalFare = types.RoundCents(r.FareSubtotal() + r.DeclaredFees() + r.TollsCharged - r.Discounts)
		return AppliedFix{Category: f.Category, Field: "total_fare", Before: before, After: r.TotalFare}
	case audit.CategoryTollMismatch:
		before := r.TollsReimbursed
		r.TollsReimbursed = r.TollsCharged
		return AppliedFix{Category: f.Category, Field: "tolls_reimbursed", Before: before, After: r.TollsReimbursed}
	default:
		// Fee errors: the checker already recomputed the schedule value and
		// stamped it as Expected, tagged with the fee name.
		name := f.Fee
		before := r.Fees[name]
		if f.Expected == 0 {
			delete(r.Fees, name)
		} else {
			r.Fees[name] = f.Expected
		}
		return AppliedFix{Category: f.Category, Field: name, Before: before, After: f.Expected}
	}
}

// ReconcileBatch audits and reconciles every trip, then records a summary
// with the audit-log sink.
func (s *Service) ReconcileBatch(ctx context.Context, reports []audit.TripRecordReport) (BatchSummary, []Outcome, error) {
	summary := BatchSummary{
		BatchID:   types.ID(uuid.NewString()),
		RunAt:     s.now(),
		TripCount: len(reports),
	}
	outcomes := make([]Outcome, 0, len(reports))

	for _, r := range reports {
		res, err := s.auditor.AuditTrip(ctx, r)
		if err != nil {
			return BatchSummary{}, nil, fmt.Errorf("audit trip %s: %w", r.TripID, err)
		}
		out, _, _ := s.ReconcileTrip(ctx, r, res)
		outcomes = append(outcomes, out)

		if out.Success {
			summary.SuccessCount++
		}
		if out.RequiresManualReview {
			summary.ReviewCount++
		}
		summary.AutoFixedCount += len(out.AppliedFixes)
	}

	if s.log != nil {
		if err := s.log.RecordBatch(ctx, summary); err != nil {
			return BatchSummary{}, nil, fmt.Errorf("record batch %s: %w", summary.BatchID, err)
		}
	}
	return summary, outcomes, nil
}
