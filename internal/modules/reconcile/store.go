// README: Audit-log sink backed by PostgreSQL; records reconciliation batch summaries.
package reconcile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogStore struct {
	db *pgxpool.Pool
}

func NewAuditLogStore(db *pgxpool.Pool) *AuditLogStore {
	return &AuditLogStore{db: db}
}

func (s *AuditLogStore) RecordBatch(ctx context.Context, b BatchSummary) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO reconciliation_audit_log (
            batch_id, run_at, trip_count, success_count, review_count, auto_fixed_count
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(b.BatchID),
		b.RunAt,
		b.TripCount,
		b.SuccessCount,
		b.ReviewCount,
		b.AutoFixedCount,
	)
	if err != nil {
		return fmt.Errorf("insert batch summary: %w", err)
	}
	return nil
}
