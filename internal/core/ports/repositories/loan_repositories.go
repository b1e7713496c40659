package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
)

// LoanReader defines read operations on loans and their history.
type LoanReader interface {
	FindLoan(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, cycle int) (*domain.Loan, error)
	ListLoansByAccount(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) ([]domain.Loan, error)
	ListLiveLoans(ctx context.Context, scope domain.TenantScope, branchIDs []string) ([]domain.Loan, error)
	NextCycle(ctx context.Context, branchID, glNo, acNo string) (int, error)
	ListHist(ctx context.Context, branchID, glNo, acNo string, cycle int) ([]domain.LoanHist, error)
	// ListDueInstallments returns LD rows with trx_date in [from, to] across
	// the scope, for expected-repayment reporting.
	ListDueInstallments(ctx context.Context, scope domain.TenantScope, branchIDs []string, from, to time.Time) ([]domain.ExpectedRepaymentRow, error)
	ListProvisionBands(ctx context.Context, branchID string) ([]domain.LoanProvision, error)
}

// LoanWriter defines loan writes. The composite methods run the ledger
// append and the loan/history mutations in one database transaction.
type LoanWriter interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error
	UpdateLoan(ctx context.Context, loan domain.Loan) error
	// Disburse posts the cash-movement and unearned-interest legs, persists
	// the schedule as LD history rows under the same trx_no and flips the
	// loan to disbursed, atomically. Returns the trx_no.
	Disburse(ctx context.Context, loan domain.Loan, legs []domain.Leg, hist []domain.LoanHist) (string, error)
	// Repay posts the repayment legs, appends the LP history row and updates
	// the loan's cached totals, atomically. Returns the trx_no.
	Repay(ctx context.Context, loan domain.Loan, legs []domain.Leg, hist domain.LoanHist, code domain.TrxCode) (string, error)
	// ReverseDisbursement flips the disbursement trx group to H, deletes the
	// history rows of that trx_no and returns the loan to approved state.
	ReverseDisbursement(ctx context.Context, loan domain.Loan, trxNo, userID string) error
}

// LoanRepository combines loan reads and writes.
type LoanRepository interface {
	LoanReader
	LoanWriter
}
