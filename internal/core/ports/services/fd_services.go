package services

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/koboledger/kobo/internal/dto"
)

// FDSvcFacade is the fixed-deposit product engine.
type FDSvcFacade interface {
	// CreateProduct registers the policy knobs deposits can be opened under.
	CreateProduct(ctx context.Context, p domain.Principal, branchID string, req dto.CreateFDProductRequest) (*domain.FDProduct, error)
	Open(ctx context.Context, p domain.Principal, branchID string, req dto.OpenFDRequest) (*domain.FixedDeposit, error)
	Get(ctx context.Context, p domain.Principal, branchID, fdID string) (*domain.FixedDeposit, error)
	ListByAccount(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) ([]domain.FixedDeposit, error)
	// Withdraw pays out principal and interest at or after maturity.
	Withdraw(ctx context.Context, p domain.Principal, branchID, fdID string) (string, error)
	PrematureWithdraw(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.PrematureFDRequest) (string, error)
	Renew(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.RenewFDRequest) (*domain.FixedDeposit, error)
	MarkLien(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.LienRequest) error
	RemoveLien(ctx context.Context, p domain.Principal, branchID, fdID string) error
	// AccrueDaily writes one FDInterestAccrual row per active deposit for
	// the session date; already-accrued dates are skipped. Used by EOS.
	AccrueDaily(ctx context.Context, branchID string, sesDate time.Time) (int, error)
	// MarkMatured flips active deposits past maturity. Used by EOS.
	MarkMatured(ctx context.Context, branchID string, sesDate time.Time) (int, error)
}

// MerchantSvcFacade moves value between merchant floats and customers under
// per-transaction and per-day limits.
type MerchantSvcFacade interface {
	Register(ctx context.Context, p domain.Principal, branchID string, req dto.CreateMerchantRequest) (*domain.Merchant, error)
	Deposit(ctx context.Context, p domain.Principal, branchID string, req dto.MerchantTxnRequest) (string, error)
	Withdraw(ctx context.Context, p domain.Principal, branchID string, req dto.MerchantTxnRequest) (string, error)
}

// PendingSvcFacade is the maker-checker staging flow.
type PendingSvcFacade interface {
	Submit(ctx context.Context, p domain.Principal, branchID string, req dto.SubmitPendingRequest) (*domain.PendingTransaction, error)
	Approve(ctx context.Context, p domain.Principal, branchID, pendingID string) (*domain.PendingTransaction, error)
	Reject(ctx context.Context, p domain.Principal, branchID, pendingID string, req dto.RejectPendingRequest) (*domain.PendingTransaction, error)
	List(ctx context.Context, p domain.Principal, branchID string, status domain.PendingStatus) ([]domain.PendingTransaction, error)
}
