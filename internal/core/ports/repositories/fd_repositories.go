package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
)

// FDReader defines read operations on fixed deposits.
type FDReader interface {
	FindDeposit(ctx context.Context, scope domain.TenantScope, branchID, fdID string) (*domain.FixedDeposit, error)
	ListDepositsByAccount(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) ([]domain.FixedDeposit, error)
	NextDepositCycle(ctx context.Context, branchID, glNo, acNo string) (int, error)
	// ListActiveDeposits returns deposits to accrue or mature during EOS.
	ListActiveDeposits(ctx context.Context, branchID string) ([]domain.FixedDeposit, error)
	FindProduct(ctx context.Context, branchID, productID string) (*domain.FDProduct, error)
	LastAccrual(ctx context.Context, fdID string) (*domain.FDInterestAccrual, error)
}

// FDWriter defines fixed-deposit writes. Composite methods pair the deposit
// mutation with its ledger legs in one transaction.
type FDWriter interface {
	// OpenDeposit posts the funding and unearned-interest legs and inserts
	// the deposit row atomically. Returns the trx_no.
	OpenDeposit(ctx context.Context, fd domain.FixedDeposit, legs []domain.Leg) (string, error)
	// CloseDeposit posts the payout legs and moves the deposit to its final
	// status atomically. Returns the trx_no.
	CloseDeposit(ctx context.Context, fd domain.FixedDeposit, legs []domain.Leg, code domain.TrxCode) (string, error)
	UpdateDeposit(ctx context.Context, fd domain.FixedDeposit) error
	SaveAccrual(ctx context.Context, accrual domain.FDInterestAccrual) error
	SaveRenewal(ctx context.Context, hist domain.FDRenewalHistory) error
	SaveProduct(ctx context.Context, product domain.FDProduct) error
	// MarkMatured flips active deposits past their maturity date as of the
	// given session date. Returns the number of deposits marked.
	MarkMatured(ctx context.Context, branchID string, asOf time.Time) (int, error)
}

// FDRepository combines fixed-deposit reads and writes.
type FDRepository interface {
	FDReader
	FDWriter
}
