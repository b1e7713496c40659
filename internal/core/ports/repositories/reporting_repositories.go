package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
)

// JournalFilter narrows till-sheet and journal listings.
type JournalFilter struct {
	BranchID string
	UserID   string         // optional
	Code     domain.TrxCode // optional
	From     time.Time
	To       time.Time
	// ByAppDate filters on app_date instead of ses_date.
	ByAppDate bool
}

// ReportingRepository serves the pure read-side aggregations. Every method
// applies the tenant scope before aggregating and never mutates state.
type ReportingRepository interface {
	GetTrialBalanceData(ctx context.Context, scope domain.TenantScope, branchID string, from, to time.Time) ([]domain.TrialBalanceRow, error)
	// GetTillRows lists active legs matching the filter with running totals.
	GetTillRows(ctx context.Context, scope domain.TenantScope, filter JournalFilter) ([]domain.TillRow, error)
	// GetLoanOutstanding aggregates LD and LP history into per-loan exposure.
	GetLoanOutstanding(ctx context.Context, scope domain.TenantScope, branchID string, asOf time.Time) ([]domain.LoanOutstandingRow, error)
}
