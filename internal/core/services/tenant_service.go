package services

import (
	"context"
	"fmt"

	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
)

// tenantService resolves the visible branch set for a principal.
type tenantService struct {
	branchRepo portsrepo.BranchRepository
}

// NewTenantService creates the tenant scope resolver.
func NewTenantService(branchRepo portsrepo.BranchRepository) portssvc.TenantSvcFacade {
	return &tenantService{branchRepo: branchRepo}
}

var _ portssvc.TenantSvcFacade = (*tenantService)(nil)

// ScopeFor computes the branch set the principal may read and write.
// Ordinary users see their own branch, head-office users every branch of
// their company, super admins everything.
func (s *tenantService) ScopeFor(ctx context.Context, p domain.Principal) (domain.TenantScope, error) {
	if p.SuperAdmin {
		return domain.TenantScope{All: true}, nil
	}
	if !p.HeadOffice {
		return domain.ScopeFor(p.BranchID), nil
	}

	branches, err := s.branchRepo.ListBranchesByCompany(ctx, p.CompanyID)
	if err != nil {
		return domain.TenantScope{}, fmt.Errorf("failed to list company branches: %w", err)
	}
	ids := make([]string, 0, len(branches))
	for _, b := range branches {
		ids = append(ids, b.BranchID)
	}
	return domain.TenantScope{BranchIDs: ids}, nil
}

// requireBranch verifies the target branch is inside the principal's scope.
func requireBranch(scope domain.TenantScope, branchID string) error {
	if !scope.Contains(branchID) {
		return fmt.Errorf("%w: branch %s", apperrors.ErrTenantViolation, branchID)
	}
	return nil
}

// requireRole verifies the principal carries at least the given role.
func requireRole(p domain.Principal, role domain.Role) error {
	if p.SuperAdmin {
		return nil
	}
	if !p.Role.AtLeast(role) {
		return fmt.Errorf("%w: requires role %s", apperrors.ErrForbidden, role)
	}
	return nil
}
