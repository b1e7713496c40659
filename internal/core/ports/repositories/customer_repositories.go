package repositories

import (
	"context"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CustomerRepository manages customer accounts and their denormalised
// balance cache.
type CustomerRepository interface {
	// CreateCustomer allocates the next ac_no under (branch, gl_no) with the
	// allocation serialised FOR UPDATE, inserts the row and returns it with
	// the assigned number.
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	FindCustomer(ctx context.Context, scope domain.TenantScope, branchID, glNo, acNo string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, scope domain.TenantScope, branchID, glNo string) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) error
	// RebuildBalance recomputes the cache from the ledger and returns the
	// authoritative value.
	RebuildBalance(ctx context.Context, branchID, glNo, acNo string) (decimal.Decimal, error)
}
