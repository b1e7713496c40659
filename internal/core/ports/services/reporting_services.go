package services

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
)

// ReportingSvcFacade serves the pure read-side derivations. All reports are
// tenant-scoped and never mutate state.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) (*domain.TrialBalance, error)
	ProfitAndLoss(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) (*domain.PAndLReport, error)
	BalanceSheet(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) (*domain.BalanceSheetReport, error)
	TillSheet(ctx context.Context, p domain.Principal, filter portsrepo.JournalFilter) (*domain.TillSheet, error)
	LoanOutstanding(ctx context.Context, p domain.Principal, branchID string, asOf time.Time) ([]domain.LoanOutstandingRow, error)
	PAR(ctx context.Context, p domain.Principal, branchID string, asOf time.Time) (*domain.PARReport, error)
	ExpectedRepayments(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) ([]domain.ExpectedRepaymentRow, error)
}
