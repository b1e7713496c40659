package services

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/koboledger/kobo/internal/dto"
)

// LoanSvcFacade is the loan lifecycle state machine. Write operations are
// gated on the branch session and the loan's (approval, disbursement) state.
type LoanSvcFacade interface {
	Apply(ctx context.Context, p domain.Principal, branchID string, req dto.ApplyLoanRequest) (*domain.Loan, error)
	Modify(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.ModifyLoanRequest) (*domain.Loan, error)
	Approve(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.ApproveLoanRequest) (*domain.Loan, error)
	Reject(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) (*domain.Loan, error)
	ReverseApproval(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) (*domain.Loan, error)
	Disburse(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.DisburseLoanRequest) (string, error)
	Repay(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.RepayLoanRequest) (string, error)
	WriteOff(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.WriteOffLoanRequest) (string, error)
	ReverseDisbursement(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) error
	Get(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) (*domain.Loan, error)
	// ListLive returns the approved and disbursed loans of a branch.
	ListLive(ctx context.Context, p domain.Principal, branchID string) ([]domain.Loan, error)
	Schedule(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) ([]dto.ScheduleRow, error)
	History(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) ([]domain.LoanHist, error)
	// DaysOverdue computes arrears for a live loan as of a date.
	DaysOverdue(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, asOf time.Time) (int, domain.ArrearsBucket, error)
}
