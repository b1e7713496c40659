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
	"github.com/shopspring/decimal"
)

// customerService manages the customer registry and teller cash movements.
type customerService struct {
	customerRepo portsrepo.CustomerRepository
	accountRepo  portsrepo.AccountReader
	ledgerSvc    portssvc.LedgerSvcFacade
	tenantSvc    portssvc.TenantSvcFacade
	notifier     portssvc.Notifier
	now          func() time.Time
}

// NewCustomerService creates the customer facade. notifier may be nil.
func NewCustomerService(customerRepo portsrepo.CustomerRepository, accountRepo portsrepo.AccountReader, ledgerSvc portssvc.LedgerSvcFacade, tenantSvc portssvc.TenantSvcFacade, notifier portssvc.Notifier) portssvc.CustomerSvcFacade {
	return &customerService{
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
		ledgerSvc:    ledgerSvc,
		tenantSvc:    tenantSvc,
		notifier:     notifier,
		now:          time.Now,
	}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

func (s *customerService) CreateCustomer(ctx context.Context, p domain.Principal, branchID string, req dto.CreateCustomerRequest) (*domain.Customer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByGL(ctx, branchID, req.GLNo); err != nil {
		return nil, fmt.Errorf("GL %s: %w", req.GLNo, err)
	}

	customer := domain.Customer{
		CustomerID:  uuid.NewString(),
		BranchID:    branchID,
		GLNo:        req.GLNo,
		Label:       req.Label,
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		NotifySMS:   req.NotifySMS,
		NotifyEmail: req.NotifyEmail,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}
	created, err := s.customerRepo.CreateCustomer(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logger.Info("Customer created",
		slog.String("customer_id", created.CustomerID),
		slog.String("gl_no", created.GLNo),
		slog.String("ac_no", created.AcNo),
		slog.String("branch_id", branchID))
	return created, nil
}

func (s *customerService) GetCustomer(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) (*domain.Customer, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.customerRepo.FindCustomer(ctx, scope, branchID, glNo, acNo)
}

func (s *customerService) ListCustomers(ctx context.Context, p domain.Principal, branchID, glNo string) ([]domain.Customer, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.customerRepo.ListCustomers(ctx, scope, branchID, glNo)
}

func (s *customerService) UpdateCustomer(ctx context.Context, p domain.Principal, branchID, glNo, acNo string, req dto.UpdateCustomerRequest) (*domain.Customer, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindCustomer(ctx, scope, branchID, glNo, acNo)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.NotifySMS != nil {
		customer.NotifySMS = *req.NotifySMS
	}
	if req.NotifyEmail != nil {
		customer.NotifyEmail = *req.NotifyEmail
	}
	customer.LastUpdatedAt = s.now().UTC()
	customer.LastUpdatedBy = p.UserID

	if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
		return nil, fmt.Errorf("failed to update customer %s/%s: %w", glNo, acNo, err)
	}
	return customer, nil
}

// Deposit posts cash in: credit the customer, debit the cashier till.
func (s *customerService) Deposit(ctx context.Context, p domain.Principal, branchID string, req dto.CashTxnRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	legs := []domain.Leg{
		{
			GLNo:        req.GLNo,
			AcNo:        req.AcNo,
			Amount:      req.Amount,
			Type:        domain.LegCredit,
			AccountType: domain.AccountTypeForGL(req.GLNo),
			Description: req.Description,
			AppDate:     req.AppDate,
		},
		{
			GLNo:        req.CashierGLNo,
			AcNo:        req.CashierAcNo,
			Amount:      req.Amount.Neg(),
			Type:        domain.LegDebit,
			AccountType: domain.AccountTypeForGL(req.CashierGLNo),
			Description: req.Description,
			AppDate:     req.AppDate,
		},
	}
	trxNo, err := s.ledgerSvc.Post(ctx, p, branchID, domain.CodeDeposit, legs)
	if err != nil {
		return "", err
	}
	s.notify(ctx, branchID, "customer.deposit", req, trxNo)
	return trxNo, nil
}

// Withdraw posts cash out: debit the customer, credit the cashier till.
// Refused when the active ledger balance cannot cover the amount.
func (s *customerService) Withdraw(ctx context.Context, p domain.Principal, branchID string, req dto.CashTxnRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	balance, err := s.ledgerSvc.Balance(ctx, p, branchID, req.GLNo, req.AcNo, s.now().UTC())
	if err != nil {
		return "", err
	}
	if balance.LessThan(req.Amount) {
		return "", fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, balance, req.Amount)
	}

	legs := []domain.Leg{
		{
			GLNo:        req.GLNo,
			AcNo:        req.AcNo,
			Amount:      req.Amount.Neg(),
			Type:        domain.LegDebit,
			AccountType: domain.AccountTypeForGL(req.GLNo),
			Description: req.Description,
			AppDate:     req.AppDate,
		},
		{
			GLNo:        req.CashierGLNo,
			AcNo:        req.CashierAcNo,
			Amount:      req.Amount,
			Type:        domain.LegCredit,
			AccountType: domain.AccountTypeForGL(req.CashierGLNo),
			Description: req.Description,
			AppDate:     req.AppDate,
		},
	}
	trxNo, err := s.ledgerSvc.Post(ctx, p, branchID, domain.CodeWithdrawal, legs)
	if err != nil {
		return "", err
	}
	s.notify(ctx, branchID, "customer.withdrawal", req, trxNo)
	return trxNo, nil
}

func (s *customerService) RebuildBalance(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) (decimal.Decimal, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return decimal.Zero, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return decimal.Zero, err
	}
	if err := requireRole(p, domain.RoleManager); err != nil {
		return decimal.Zero, err
	}
	return s.customerRepo.RebuildBalance(ctx, branchID, glNo, acNo)
}

func (s *customerService) notify(ctx context.Context, branchID, event string, req dto.CashTxnRequest, trxNo string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event, map[string]any{
		"branchID": branchID,
		"glNo":     req.GLNo,
		"acNo":     req.AcNo,
		"amount":   req.Amount.String(),
		"trxNo":    trxNo,
	})
}
