package services

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the posting engine contract. Every write verifies the
// tenant scope and the branch session gate before touching the ledger.
type LedgerSvcFacade interface {
	// Post appends a balanced multi-leg group and returns the trx_no.
	Post(ctx context.Context, p domain.Principal, branchID string, code domain.TrxCode, legs []domain.Leg) (string, error)
	// PostJournal is Post for user-submitted general journals (code GL).
	PostJournal(ctx context.Context, p domain.Principal, branchID string, req dto.PostJournalRequest) (string, error)
	Balance(ctx context.Context, p domain.Principal, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error)
	Statement(ctx context.Context, p domain.Principal, branchID string, req dto.StatementRequest) (*domain.Statement, error)
	// Reverse flips all legs of trx_no to H as a group. Idempotent.
	Reverse(ctx context.Context, p domain.Principal, branchID, trxNo string) error
	GetPostings(ctx context.Context, p domain.Principal, branchID, trxNo string) ([]domain.Posting, error)
}

// SessionSvcFacade controls the per-branch session gate. Open, close and
// end-of-session are manager operations.
type SessionSvcFacade interface {
	GetSession(ctx context.Context, p domain.Principal, branchID string) (*domain.BranchSession, error)
	OpenSession(ctx context.Context, p domain.Principal, branchID string) error
	CloseSession(ctx context.Context, p domain.Principal, branchID string) error
	// EndOfSession optionally runs the EOS batches (FD accrual, maturity
	// marking) and advances the session date.
	EndOfSession(ctx context.Context, p domain.Principal, branchID string, req dto.AdvanceSessionRequest) error
}
