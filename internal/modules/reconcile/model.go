// README: Reconciliation domain: fix policies per finding category, outcomes, batch summaries.
package reconcile

import (
	"time"

	"payguard/internal/modules/audit"
	"payguard/internal/types"
)

type FixPolicy string

const (
	PolicyAutoFix      FixPolicy = "auto_fix"
	PolicyManualReview FixPolicy = "manual_review"
	PolicyUnfixable    FixPolicy = "unfixable"
)

// fixPolicies is the fixed policy table over the closed finding-category
// set. It is not configurable per call: money owed to a person and ambiguous
// fraud signals always go to a human; absent data is never reconstructed.
var fixPolicies = map[audit.Category]FixPolicy{
	audit.CategoryFareMismatch:       PolicyAutoFix,
	audit.CategoryTLCFeeError:        PolicyAutoFix,
	audit.CategoryAirportFeeError:    PolicyAutoFix,
	audit.CategoryTollMismatch:       PolicyAutoFix,
	audit.CategoryDriverPayMismatch:  PolicyManualReview,
	audit.CategoryUnderpaidDriver:    PolicyManualReview,
	audit.CategoryZoneMismatch:       PolicyManualReview,
	audit.CategoryTimeDistanceError:  PolicyManualReview,
	audit.CategorySuspiciousEarnings: PolicyManualReview,
	audit.CategoryMissingRecord:      PolicyUnfixable,
}

// PolicyFor resolves the fix policy for a category. Categories outside the
// table fall back to manual review; nothing unknown is ever auto-fixed.
func PolicyFor(c audit.Category) FixPolicy {
	if p, ok := fixPolicies[c]; ok {
		return p
	}
	return PolicyManualReview
}

// AppliedFix records one deterministic correction.
type AppliedFix struct {
	Category audit.Category `json:"category"`
	// Field names the corrected report field ("total_fare", a fee name, or
	// "tolls_reimbursed").
	Field  string  `json:"field"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// Outcome is the reconciliation verdict for one trip.
type Outcome struct {
	TripID types.ID `json:"trip_id"`
	// Success means nothing is left unresolved: every finding was either
	// auto-fixed or absent.
	Success              bool         `json:"success"`
	RequiresManualReview bool         `json:"requires_manual_review"`
	AppliedFixes         []AppliedFix `json:"applied_fixes,omitempty"`
	ReviewReasons        []string     `json:"review_reasons,omitempty"`
}

// BatchSummary is the audit-log entry for one batch run.
type BatchSummary struct {
	BatchID        types.ID  `json:"batch_id"`
	RunAt          time.Time `json:"run_at"`
	TripCount      int       `json:"trip_count"`
	SuccessCount   int       `json:"success_count"`
	ReviewCount    int       `json:"review_count"`
	AutoFixedCount int       `json:"auto_fixed_count"`
}
