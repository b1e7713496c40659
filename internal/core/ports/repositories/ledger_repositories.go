package repositories

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over posted legs.
type LedgerReader interface {
	FindPostingsByTrxNo(ctx context.Context, scope domain.TenantScope, branchID, trxNo string) ([]domain.Posting, error)
	// Balance sums active legs for (gl, ac) with ses_date <= asOf.
	Balance(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error)
	// StatementRows returns the opening balance just before from and the
	// active legs in [from, to] ordered by (ses_date, id).
	StatementRows(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string, from, to time.Time) (decimal.Decimal, []domain.StatementRow, error)
}

// LedgerWriter defines the append and reversal operations. Both run as a
// single database transaction that locks the branch session row FOR UPDATE.
type LedgerWriter interface {
	// AppendPosting allocates a trx_no with the code prefix, stamps every leg
	// with the branch session date, inserts the legs and updates the customer
	// balance caches atomically. Returns the allocated trx_no.
	AppendPosting(ctx context.Context, branchID string, code domain.TrxCode, userID string, legs []domain.Leg) (string, error)
	// AppendPostingWithTrxNo appends under a pre-allocated trx_no (used by
	// the maker-checker flow). Duplicate numbers fail with ErrDuplicateTrx.
	AppendPostingWithTrxNo(ctx context.Context, branchID, trxNo string, code domain.TrxCode, userID string, legs []domain.Leg) error
	// AllocateTrxNo reserves a fresh trx_no for the code without posting.
	AllocateTrxNo(ctx context.Context, branchID string, code domain.TrxCode) (string, error)
	// ReverseGroup flips every active leg of trx_no to H, prefixes the
	// descriptions with "Reversal:" and rebuilds the affected customer
	// caches. Refused when the branch session has moved past the legs'
	// ses_date. Reversing an already reversed group is a no-op.
	ReverseGroup(ctx context.Context, branchID, trxNo, userID string) error
}

// LedgerRepository combines ledger reads and writes.
type LedgerRepository interface {
	LedgerReader
	LedgerWriter
}
