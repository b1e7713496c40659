package repositories

import (
	"context"

	"github.com/koboledger/kobo/internal/core/domain"
)

// AccountReader defines read operations on the chart of accounts.
type AccountReader interface {
	FindAccountByGL(ctx context.Context, branchID, glNo string) (*domain.Account, error)
	FindAccountsByGLs(ctx context.Context, branchID string, glNos []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, scope domain.TenantScope, branchID string) ([]domain.Account, error)
	// HasChildren reports whether any account names this GL as its header.
	HasChildren(ctx context.Context, branchID, glNo string) (bool, error)
	// IsReferenced reports whether the GL is used by any customer, loan or
	// posting row, which blocks update and delete.
	IsReferenced(ctx context.Context, branchID, glNo string) (bool, error)
}

// AccountWriter defines write operations on the chart of accounts.
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	// SaveAccounts inserts a batch atomically; used by default chart seeding.
	SaveAccounts(ctx context.Context, accounts []domain.Account) error
	UpdateAccount(ctx context.Context, account domain.Account) error
	DeleteAccount(ctx context.Context, branchID, glNo string) error
}

// AccountRepository combines chart-of-accounts reads and writes.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
