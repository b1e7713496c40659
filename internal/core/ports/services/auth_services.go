package services

import (
	"context"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/koboledger/kobo/internal/dto"
)

// AuthSvcFacade authenticates branch users and issues principal tokens.
// Login refuses users whose branch licence has expired.
type AuthSvcFacade interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

// TenantSvcFacade resolves the visible branch set for a principal: the own
// branch for ordinary users, all sibling branches for head-office users, all
// branches for super admins.
type TenantSvcFacade interface {
	ScopeFor(ctx context.Context, p domain.Principal) (domain.TenantScope, error)
}

// VendorSvcFacade administers companies and branches (vendor admins only).
// Branch creation seeds the default chart and the session row; these writes
// are decoupled, never one distributed transaction.
type VendorSvcFacade interface {
	CreateCompany(ctx context.Context, p domain.Principal, req dto.CreateCompanyRequest) (*domain.Company, error)
	CreateBranch(ctx context.Context, p domain.Principal, req dto.CreateBranchRequest) (*domain.Branch, error)
	GetBranch(ctx context.Context, p domain.Principal, branchID string) (*domain.Branch, error)
}
