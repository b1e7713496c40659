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

// merchantService moves value between merchant floats and customer accounts
// under per-transaction and per-day limits.
type merchantService struct {
	merchantRepo portsrepo.MerchantRepository
	branchRepo   portsrepo.BranchRepository
	sessionRepo  portsrepo.SessionRepository
	ledgerSvc    portssvc.LedgerSvcFacade
	tenantSvc    portssvc.TenantSvcFacade
	now          func() time.Time
}

// NewMerchantService creates the merchant facade.
func NewMerchantService(merchantRepo portsrepo.MerchantRepository, branchRepo portsrepo.BranchRepository, sessionRepo portsrepo.SessionRepository, ledgerSvc portssvc.LedgerSvcFacade, tenantSvc portssvc.TenantSvcFacade) portssvc.MerchantSvcFacade {
	return &merchantService{
		merchantRepo: merchantRepo,
		branchRepo:   branchRepo,
		sessionRepo:  sessionRepo,
		ledgerSvc:    ledgerSvc,
		tenantSvc:    tenantSvc,
		now:          time.Now,
	}
}

var _ portssvc.MerchantSvcFacade = (*merchantService)(nil)

// Register creates a merchant float under the branch. The float GL itself is
// validated at posting time by the ledger chart check.
func (s *merchantService) Register(ctx context.Context, p domain.Principal, branchID string, req dto.CreateMerchantRequest) (*domain.Merchant, error) {
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

	branch, err := s.branchRepo.FindBranchByID(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", branchID, err)
	}
	if !branch.Plan.AllowsMerchants() {
		return nil, fmt.Errorf("%w: plan %s does not include merchants", apperrors.ErrForbidden, branch.Plan)
	}
	if req.SingleTransactionLimit.IsNegative() || req.DailyTransactionLimit.IsNegative() {
		return nil, fmt.Errorf("%w: transaction limits cannot be negative", apperrors.ErrValidation)
	}

	now := s.now().UTC()
	merchant := domain.Merchant{
		MerchantID:             uuid.NewString(),
		BranchID:               branchID,
		Name:                   req.Name,
		Phone:                  req.Phone,
		FloatGLNo:              req.FloatGLNo,
		FloatAcNo:              req.FloatAcNo,
		SingleTransactionLimit: req.SingleTransactionLimit,
		DailyTransactionLimit:  req.DailyTransactionLimit,
		IsActive:               true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}
	if err := s.merchantRepo.SaveMerchant(ctx, merchant); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Merchant registered",
		slog.String("merchant_id", merchant.MerchantID),
		slog.String("branch_id", branchID),
		slog.String("float_gl", merchant.FloatGLNo))
	return &merchant, nil
}

// prepare runs the shared checks: scope, role, plan, session, merchant state
// and the two limits. Returns the merchant and the open session.
func (s *merchantService) prepare(ctx context.Context, p domain.Principal, branchID string, req dto.MerchantTxnRequest) (*domain.Merchant, *domain.BranchSession, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, nil, err
	}
	if err := requireRole(p, domain.RoleTeller); err != nil {
		return nil, nil, err
	}

	branch, err := s.branchRepo.FindBranchByID(ctx, branchID)
	if err != nil {
		return nil, nil, fmt.Errorf("branch %s: %w", branchID, err)
	}
	if !branch.Plan.AllowsMerchants() {
		return nil, nil, fmt.Errorf("%w: plan %s does not include merchants", apperrors.ErrForbidden, branch.Plan)
	}

	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !session.IsOpen() {
		return nil, nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}

	if !req.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	merchant, err := s.merchantRepo.FindMerchant(ctx, scope, branchID, req.MerchantID)
	if err != nil {
		return nil, nil, err
	}
	if !merchant.IsActive {
		return nil, nil, fmt.Errorf("%w: merchant %s is inactive", apperrors.ErrForbidden, merchant.MerchantID)
	}
	if merchant.SingleTransactionLimit.IsPositive() && req.Amount.GreaterThan(merchant.SingleTransactionLimit) {
		return nil, nil, fmt.Errorf("%w: amount %s exceeds the single transaction limit %s", apperrors.ErrValidation, req.Amount, merchant.SingleTransactionLimit)
	}
	if merchant.DailyTransactionLimit.IsPositive() {
		used, err := s.merchantRepo.SumCompletedForDay(ctx, merchant.MerchantID, session.SessionDate)
		if err != nil {
			return nil, nil, err
		}
		if used.Add(req.Amount).GreaterThan(merchant.DailyTransactionLimit) {
			return nil, nil, fmt.Errorf("%w: daily limit %s exhausted (%s used)", apperrors.ErrValidation, merchant.DailyTransactionLimit, used)
		}
	}
	return merchant, session, nil
}

func (s *merchantService) post(ctx context.Context, p domain.Principal, branchID string, merchant *domain.Merchant, session *domain.BranchSession, req dto.MerchantTxnRequest, code domain.TrxCode, custAmountPositive bool) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	custAmount := req.Amount
	floatAmount := req.Amount.Neg()
	if !custAmountPositive {
		custAmount = req.Amount.Neg()
		floatAmount = req.Amount
	}

	// Cover the debited side from its ledger balance.
	debitGL, debitAc := merchant.FloatGLNo, merchant.FloatAcNo
	debitAmount := floatAmount
	if !custAmountPositive {
		debitGL, debitAc = req.CustGLNo, req.CustAcNo
		debitAmount = custAmount
	}
	if debitAmount.IsNegative() {
		balance, err := s.ledgerSvc.Balance(ctx, p, branchID, debitGL, debitAc, s.now().UTC())
		if err != nil {
			return "", err
		}
		if balance.LessThan(req.Amount) {
			return "", fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, balance, req.Amount)
		}
	}

	appDate := session.SessionDate
	legs := []domain.Leg{
		{GLNo: req.CustGLNo, AcNo: req.CustAcNo, Amount: custAmount, Type: legTypeFor(custAmount), AccountType: domain.AccountTypeForGL(req.CustGLNo), Description: req.Description, AppDate: appDate},
		{GLNo: merchant.FloatGLNo, AcNo: merchant.FloatAcNo, Amount: floatAmount, Type: legTypeFor(floatAmount), AccountType: domain.AccountTypeForGL(merchant.FloatGLNo), Description: req.Description, AppDate: appDate},
	}

	trx := domain.MerchantTransaction{
		ID:         uuid.NewString(),
		MerchantID: merchant.MerchantID,
		BranchID:   branchID,
		Code:       code,
		Amount:     req.Amount,
		Status:     domain.MerchantTrxCompleted,
		TrxDate:    appDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}

	trxNo, err := s.merchantRepo.SaveTransactionWithLegs(ctx, trx, legs)
	if err != nil {
		return "", err
	}
	logger.Info("Merchant transaction posted",
		slog.String("trx_no", trxNo),
		slog.String("merchant_id", merchant.MerchantID),
		slog.String("code", string(code)),
		slog.String("amount", req.Amount.String()))
	return trxNo, nil
}

// Deposit credits the customer from the merchant float.
func (s *merchantService) Deposit(ctx context.Context, p domain.Principal, branchID string, req dto.MerchantTxnRequest) (string, error) {
	merchant, session, err := s.prepare(ctx, p, branchID, req)
	if err != nil {
		return "", err
	}
	return s.post(ctx, p, branchID, merchant, session, req, domain.CodeMerchantDeposit, true)
}

// Withdraw debits the customer into the merchant float.
func (s *merchantService) Withdraw(ctx context.Context, p domain.Principal, branchID string, req dto.MerchantTxnRequest) (string, error) {
	merchant, session, err := s.prepare(ctx, p, branchID, req)
	if err != nil {
		return "", err
	}
	return s.post(ctx, p, branchID, merchant, session, req, domain.CodeMerchantWithdrawal, false)
}

func legTypeFor(amount decimal.Decimal) domain.LegType {
	if amount.IsNegative() {
		return domain.LegDebit
	}
	return domain.LegCredit
}
