package services

import (
	"context"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/shopspring/decimal"
)

// ChartSvcFacade manages the chart of accounts.
type ChartSvcFacade interface {
	CreateAccount(ctx context.Context, p domain.Principal, branchID string, req dto.CreateAccountRequest) (*domain.Account, error)
	UpdateAccount(ctx context.Context, p domain.Principal, branchID, glNo string, req dto.UpdateAccountRequest) (*domain.Account, error)
	DeleteAccount(ctx context.Context, p domain.Principal, branchID, glNo string) error
	GetAccount(ctx context.Context, p domain.Principal, branchID, glNo string) (*domain.Account, error)
	ListAccounts(ctx context.Context, p domain.Principal, branchID string) ([]domain.Account, error)
	// SeedDefaultChart installs the default GL list for a new branch and
	// links the hierarchy in a second pass.
	SeedDefaultChart(ctx context.Context, branchID, userID string) error
}

// CustomerSvcFacade manages customers and their cash movements.
type CustomerSvcFacade interface {
	CreateCustomer(ctx context.Context, p domain.Principal, branchID string, req dto.CreateCustomerRequest) (*domain.Customer, error)
	GetCustomer(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) (*domain.Customer, error)
	// ListCustomers returns the customers of one GL; empty glNo lists the
	// whole branch.
	ListCustomers(ctx context.Context, p domain.Principal, branchID, glNo string) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, p domain.Principal, branchID, glNo, acNo string, req dto.UpdateCustomerRequest) (*domain.Customer, error)
	Deposit(ctx context.Context, p domain.Principal, branchID string, req dto.CashTxnRequest) (string, error)
	Withdraw(ctx context.Context, p domain.Principal, branchID string, req dto.CashTxnRequest) (string, error)
	// RebuildBalance refreshes the denormalised cache from the ledger.
	RebuildBalance(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) (decimal.Decimal, error)
}
