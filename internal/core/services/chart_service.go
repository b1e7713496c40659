package services

import (
	"context"
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

// chartService manages the chart of accounts.
type chartService struct {
	accountRepo portsrepo.AccountRepository
	tenantSvc   portssvc.TenantSvcFacade
}

// NewChartService creates the chart-of-accounts service.
func NewChartService(accountRepo portsrepo.AccountRepository, tenantSvc portssvc.TenantSvcFacade) portssvc.ChartSvcFacade {
	return &chartService{accountRepo: accountRepo, tenantSvc: tenantSvc}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

// CreateAccount adds a GL to the branch chart. The parent link is derived
// from the zero-suffix rule, the account type from the leading digit when
// not supplied.
func (s *chartService) CreateAccount(ctx context.Context, p domain.Principal, branchID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	if err := requireRole(p, domain.RoleManager); err != nil {
		return nil, err
	}

	accountType := req.AccountType
	if derived := domain.AccountTypeForGL(req.GLNo); derived != "" && derived != accountType {
		return nil, fmt.Errorf("%w: GL %s cannot be of type %s", apperrors.ErrValidation, req.GLNo, accountType)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		BranchID:        branchID,
		GLNo:            req.GLNo,
		GLName:          req.GLName,
		AccountType:     accountType,
		Currency:        req.Currency,
		DoubleEntryType: req.DoubleEntryType,
		HeaderGLNo:      domain.ParentGLNo(req.GLNo),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}
	if account.Currency == "" {
		account.Currency = "NGN"
	}
	if account.DoubleEntryType == "" {
		account.DoubleEntryType = domain.DebitCredit
	}
	if req.Loan != nil {
		account.Loan = *req.Loan
	}
	if req.FD != nil {
		account.FD = *req.FD
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account %s: %w", req.GLNo, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("GL account created",
		slog.String("branch_id", branchID), slog.String("gl_no", req.GLNo))
	return &account, nil
}

// UpdateAccount changes mutable chart fields. Accounts referenced by
// customers, loans or postings refuse the update.
func (s *chartService) UpdateAccount(ctx context.Context, p domain.Principal, branchID, glNo string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	if err := requireRole(p, domain.RoleManager); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByGL(ctx, branchID, glNo)
	if err != nil {
		return nil, err
	}

	referenced, err := s.accountRepo.IsReferenced(ctx, branchID, glNo)
	if err != nil {
		return nil, fmt.Errorf("failed to check references for GL %s: %w", glNo, err)
	}
	if referenced && req.GLName != nil {
		return nil, fmt.Errorf("%w: GL %s is in use", apperrors.ErrValidation, glNo)
	}

	if req.GLName != nil {
		account.GLName = *req.GLName
	}
	if req.DoubleEntryType != nil {
		account.DoubleEntryType = *req.DoubleEntryType
	}
	if req.Loan != nil {
		account.Loan = *req.Loan
	}
	if req.FD != nil {
		account.FD = *req.FD
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = p.UserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", glNo, err)
	}
	return account, nil
}

// DeleteAccount removes an unreferenced, childless GL from the chart.
func (s *chartService) DeleteAccount(ctx context.Context, p domain.Principal, branchID, glNo string) error {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return err
	}
	if err := requireRole(p, domain.RoleManager); err != nil {
		return err
	}

	hasChildren, err := s.accountRepo.HasChildren(ctx, branchID, glNo)
	if err != nil {
		return fmt.Errorf("failed to check children of GL %s: %w", glNo, err)
	}
	if hasChildren {
		return fmt.Errorf("%w: GL %s is a header with children", apperrors.ErrValidation, glNo)
	}

	referenced, err := s.accountRepo.IsReferenced(ctx, branchID, glNo)
	if err != nil {
		return fmt.Errorf("failed to check references for GL %s: %w", glNo, err)
	}
	if referenced {
		return fmt.Errorf("%w: GL %s is in use", apperrors.ErrValidation, glNo)
	}

	return s.accountRepo.DeleteAccount(ctx, branchID, glNo)
}

func (s *chartService) GetAccount(ctx context.Context, p domain.Principal, branchID, glNo string) (*domain.Account, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.accountRepo.FindAccountByGL(ctx, branchID, glNo)
}

func (s *chartService) ListAccounts(ctx context.Context, p domain.Principal, branchID string) ([]domain.Account, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.accountRepo.ListAccounts(ctx, scope, branchID)
}

// SeedDefaultChart installs the default GL list atomically for a new branch.
// Loan and FD product GLs come pre-wired with their binding slots.
func (s *chartService) SeedDefaultChart(ctx context.Context, branchID, userID string) error {
	now := time.Now().UTC()
	accounts := make([]domain.Account, 0, len(defaultChart))
	for _, gl := range defaultChart {
		account := domain.Account{
			AccountID:       uuid.NewString(),
			BranchID:        branchID,
			GLNo:            gl.GLNo,
			GLName:          gl.GLName,
			AccountType:     domain.AccountTypeForGL(gl.GLNo),
			Currency:        "NGN",
			DoubleEntryType: domain.DebitCredit,
			HeaderGLNo:      domain.ParentGLNo(gl.GLNo),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if isLoanProductGL(gl.GLNo) {
			account.Loan = defaultLoanBindings
		}
		if isFDProductGL(gl.GLNo) {
			account.FD = defaultFDBindings
		}
		accounts = append(accounts, account)
	}

	if err := s.accountRepo.SaveAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("failed to seed default chart for branch %s: %w", branchID, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Default chart seeded",
		slog.String("branch_id", branchID), slog.Int("gl_count", len(accounts)))
	return nil
}
