package repositories

import (
	"context"

	"github.com/koboledger/kobo/internal/core/domain"
)

// CompanyRepository accesses companies in the vendor database.
type CompanyRepository interface {
	SaveCompany(ctx context.Context, company domain.Company) error
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}

// BranchRepository accesses branches in the vendor database. Branch rows are
// administrative; the live session gate lives in the client database (see
// SessionRepository).
type BranchRepository interface {
	SaveBranch(ctx context.Context, branch domain.Branch) error
	FindBranchByID(ctx context.Context, branchID string) (*domain.Branch, error)
	FindBranchByCode(ctx context.Context, branchCode string) (*domain.Branch, error)
	ListBranchesByCompany(ctx context.Context, companyID string) ([]domain.Branch, error)
}

// UserRepository reads branch users from the vendor database for
// authentication. User administration itself is out of scope.
type UserRepository interface {
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
