package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

// vendorService administers companies and branches in the vendor database and
// provisions the client-side state a new branch needs.
type vendorService struct {
	companyRepo  portsrepo.CompanyRepository
	branchRepo   portsrepo.BranchRepository
	sessionRepo  portsrepo.SessionRepository
	customerRepo portsrepo.CustomerRepository
	chartSvc     portssvc.ChartSvcFacade
	now          func() time.Time
}

// NewVendorService creates the vendor admin facade.
func NewVendorService(companyRepo portsrepo.CompanyRepository, branchRepo portsrepo.BranchRepository, sessionRepo portsrepo.SessionRepository, customerRepo portsrepo.CustomerRepository, chartSvc portssvc.ChartSvcFacade) portssvc.VendorSvcFacade {
	return &vendorService{
		companyRepo:  companyRepo,
		branchRepo:   branchRepo,
		sessionRepo:  sessionRepo,
		customerRepo: customerRepo,
		chartSvc:     chartSvc,
		now:          time.Now,
	}
}

var _ portssvc.VendorSvcFacade = (*vendorService)(nil)

func requireVendorAdmin(p domain.Principal) error {
	if p.SuperAdmin || p.Role == domain.RoleVendorAdmin {
		return nil
	}
	return fmt.Errorf("%w: vendor admin role required", apperrors.ErrForbidden)
}

func (s *vendorService) CreateCompany(ctx context.Context, p domain.Principal, req dto.CreateCompanyRequest) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requireVendorAdmin(p); err != nil {
		return nil, err
	}
	if !req.ExpireDate.After(s.now()) {
		return nil, fmt.Errorf("%w: expire date is in the past", apperrors.ErrValidation)
	}

	company := domain.Company{
		CompanyID:  uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		RegDate:    s.now().UTC(),
		ExpireDate: req.ExpireDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}
	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID), slog.String("name", company.Name))
	return &company, nil
}

// CreateBranch registers the branch in the vendor database, then provisions
// the client-side state: the session row, the default chart and the cashier
// till account. Provisioning failures are reported but leave the branch row
// in place; re-running provisioning is idempotent at the repository level.
func (s *vendorService) CreateBranch(ctx context.Context, p domain.Principal, req dto.CreateBranchRequest) (*domain.Branch, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requireVendorAdmin(p); err != nil {
		return nil, err
	}
	if _, err := s.companyRepo.FindCompanyByID(ctx, req.CompanyID); err != nil {
		return nil, fmt.Errorf("company %s: %w", req.CompanyID, err)
	}
	if existing, err := s.branchRepo.FindBranchByCode(ctx, req.BranchCode); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: branch code %s", apperrors.ErrDuplicateKey, req.BranchCode)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check branch code: %w", err)
	}

	audit := domain.AuditFields{
		CreatedAt:     s.now().UTC(),
		CreatedBy:     p.UserID,
		LastUpdatedAt: s.now().UTC(),
		LastUpdatedBy: p.UserID,
	}
	branch := domain.Branch{
		BranchID:    uuid.NewString(),
		CompanyID:   req.CompanyID,
		BranchCode:  req.BranchCode,
		Name:        req.Name,
		Plan:        req.Plan,
		HeadOffice:  req.HeadOffice,
		ExpireDate:  req.ExpireDate,
		AuditFields: audit,
	}
	if err := s.branchRepo.SaveBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}

	session := domain.BranchSession{
		BranchID:      branch.BranchID,
		SessionDate:   req.SessionDate,
		SessionStatus: domain.SessionOpen,
		AuditFields:   audit,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("branch %s saved but session provisioning failed: %w", branch.BranchID, err)
	}
	if err := s.chartSvc.SeedDefaultChart(ctx, branch.BranchID, p.UserID); err != nil {
		return nil, fmt.Errorf("branch %s saved but chart seeding failed: %w", branch.BranchID, err)
	}

	till := domain.Customer{
		CustomerID:  uuid.NewString(),
		BranchID:    branch.BranchID,
		GLNo:        cashierTillGL,
		Label:       domain.LabelCashier,
		Name:        branch.Name + " TILL",
		AuditFields: audit,
	}
	if _, err := s.customerRepo.CreateCustomer(ctx, till); err != nil {
		return nil, fmt.Errorf("branch %s saved but till provisioning failed: %w", branch.BranchID, err)
	}

	logger.Info("Branch created",
		slog.String("branch_id", branch.BranchID),
		slog.String("branch_code", branch.BranchCode),
		slog.String("company_id", branch.CompanyID),
		slog.String("plan", string(branch.Plan)))
	return &branch, nil
}

func (s *vendorService) GetBranch(ctx context.Context, p domain.Principal, branchID string) (*domain.Branch, error) {
	if err := requireVendorAdmin(p); err != nil {
		// Branch users may read their own branch record.
		if p.BranchID != branchID {
			return nil, err
		}
	}
	return s.branchRepo.FindBranchByID(ctx, branchID)
}
