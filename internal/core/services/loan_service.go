package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/core/services/amort"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
	"github.com/shopspring/decimal"
)

// loanService drives the loan lifecycle: apply, approve, disburse, repay,
// write off, with soft reversal of approval and disbursement.
type loanService struct {
	loanRepo     portsrepo.LoanRepository
	accountRepo  portsrepo.AccountReader
	customerRepo portsrepo.CustomerRepository
	sessionRepo  portsrepo.SessionRepository
	tenantSvc    portssvc.TenantSvcFacade
	notifier     portssvc.Notifier
	now          func() time.Time
}

// NewLoanService creates the loan lifecycle facade. notifier may be nil.
func NewLoanService(loanRepo portsrepo.LoanRepository, accountRepo portsrepo.AccountReader, customerRepo portsrepo.CustomerRepository, sessionRepo portsrepo.SessionRepository, tenantSvc portssvc.TenantSvcFacade, notifier portssvc.Notifier) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo:     loanRepo,
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		sessionRepo:  sessionRepo,
		tenantSvc:    tenantSvc,
		notifier:     notifier,
		now:          time.Now,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// authorize resolves the scope, checks branch membership and the minimum role.
func (s *loanService) authorize(ctx context.Context, p domain.Principal, branchID string, role domain.Role) (domain.TenantScope, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return domain.TenantScope{}, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return domain.TenantScope{}, err
	}
	if err := requireRole(p, role); err != nil {
		return domain.TenantScope{}, err
	}
	return scope, nil
}

// openSession loads the branch session and refuses closed branches.
func (s *loanService) openSession(ctx context.Context, branchID string) (*domain.BranchSession, error) {
	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}
	return session, nil
}

func (s *loanService) load(ctx context.Context, scope domain.TenantScope, branchID string, key dto.LoanKey) (*domain.Loan, error) {
	return s.loanRepo.FindLoan(ctx, scope, branchID, key.GLNo, key.AcNo, key.Cycle)
}

func (s *loanService) Apply(ctx context.Context, p domain.Principal, branchID string, req dto.ApplyLoanRequest) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.authorize(ctx, p, branchID, domain.RoleOfficer)
	if err != nil {
		return nil, err
	}
	if !req.LoanAmount.IsPositive() {
		return nil, fmt.Errorf("%w: loan amount must be positive", apperrors.ErrValidation)
	}
	if req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate must not be negative", apperrors.ErrValidation)
	}
	if _, err := s.accountRepo.FindAccountByGL(ctx, branchID, req.GLNo); err != nil {
		return nil, fmt.Errorf("loan product GL %s: %w", req.GLNo, err)
	}
	if _, err := s.customerRepo.FindCustomer(ctx, scope, branchID, req.GLNo, req.AcNo); err != nil {
		return nil, fmt.Errorf("loan account %s/%s: %w", req.GLNo, req.AcNo, err)
	}

	// A new cycle may only open once every earlier cycle is settled.
	existing, err := s.loanRepo.ListLoansByAccount(ctx, scope, branchID, req.GLNo, req.AcNo)
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if l.IsLive() || l.IsModifiable() || (l.ApprovalStatus == domain.ApprovalApproved && l.DisbStatus == domain.NotDisbursed) {
			return nil, fmt.Errorf("%w: cycle %d of %s/%s is still open", apperrors.ErrIllegalTransition, l.Cycle, req.GLNo, req.AcNo)
		}
	}

	cycle, err := s.loanRepo.NextCycle(ctx, branchID, req.GLNo, req.AcNo)
	if err != nil {
		return nil, err
	}

	loan := domain.Loan{
		LoanID:         uuid.NewString(),
		BranchID:       branchID,
		GLNo:           req.GLNo,
		AcNo:           req.AcNo,
		Cycle:          cycle,
		LoanAmount:     req.LoanAmount,
		InterestRate:   req.InterestRate,
		NumInstall:     req.NumInstall,
		PaymentFreq:    req.PaymentFreq,
		InterestMethod: req.InterestMethod,
		AppliDate:      req.AppliDate,
		LoanOfficer:    req.LoanOfficer,
		BusinessSector: req.BusinessSector,
		ApprovalStatus: domain.ApprovalPending,
		DisbStatus:     domain.NotDisbursed,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}

	// Reject parameter sets the schedule generator cannot amortise.
	if _, err := amort.Schedule(loan.LoanAmount, loan.InterestRate, loan.NumInstall, loan.PaymentFreq, loan.InterestMethod, loan.AppliDate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan application: %w", err)
	}

	logger.Info("Loan application created",
		slog.String("loan_id", loan.LoanID),
		slog.String("gl_no", loan.GLNo),
		slog.String("ac_no", loan.AcNo),
		slog.Int("cycle", loan.Cycle),
		slog.String("amount", loan.LoanAmount.String()))
	return &loan, nil
}

func (s *loanService) Modify(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.ModifyLoanRequest) (*domain.Loan, error) {
	scope, err := s.authorize(ctx, p, branchID, domain.RoleOfficer)
	if err != nil {
		return nil, err
	}
	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return nil, err
	}
	if !loan.IsModifiable() {
		return nil, fmt.Errorf("%w: loan %s/%s cycle %d is not pending", apperrors.ErrIllegalTransition, key.GLNo, key.AcNo, key.Cycle)
	}

	if req.LoanAmount != nil {
		if !req.LoanAmount.IsPositive() {
			return nil, fmt.Errorf("%w: loan amount must be positive", apperrors.ErrValidation)
		}
		loan.LoanAmount = *req.LoanAmount
	}
	if req.InterestRate != nil {
		if req.InterestRate.IsNegative() {
			return nil, fmt.Errorf("%w: interest rate must not be negative", apperrors.ErrValidation)
		}
		loan.InterestRate = *req.InterestRate
	}
	if req.NumInstall != nil {
		loan.NumInstall = *req.NumInstall
	}
	if req.PaymentFreq != nil {
		loan.PaymentFreq = *req.PaymentFreq
	}
	if req.InterestMethod != nil {
		loan.InterestMethod = *req.InterestMethod
	}
	if req.LoanOfficer != nil {
		loan.LoanOfficer = *req.LoanOfficer
	}
	if req.BusinessSector != nil {
		loan.BusinessSector = *req.BusinessSector
	}

	if _, err := amort.Schedule(loan.LoanAmount, loan.InterestRate, loan.NumInstall, loan.PaymentFreq, loan.InterestMethod, loan.AppliDate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	loan.LastUpdatedAt = s.now().UTC()
	loan.LastUpdatedBy = p.UserID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) Approve(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.ApproveLoanRequest) (*domain.Loan, error) {
	scope, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return nil, err
	}
	if loan.ApprovalStatus != domain.ApprovalPending {
		return nil, fmt.Errorf("%w: loan is %s, only pending loans can be approved", apperrors.ErrIllegalTransition, loan.ApprovalStatus)
	}
	if req.ApprovalDate.Before(loan.AppliDate) {
		return nil, fmt.Errorf("%w: approval date precedes application date", apperrors.ErrInvalidDate)
	}

	loan.ApprovalStatus = domain.ApprovalApproved
	loan.ApprovalDate = &req.ApprovalDate
	loan.LastUpdatedAt = s.now().UTC()
	loan.LastUpdatedBy = p.UserID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) Reject(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) (*domain.Loan, error) {
	scope, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return nil, err
	}
	if loan.ApprovalStatus != domain.ApprovalPending {
		return nil, fmt.Errorf("%w: loan is %s, only pending loans can be rejected", apperrors.ErrIllegalTransition, loan.ApprovalStatus)
	}

	loan.ApprovalStatus = domain.ApprovalRejected
	loan.LastUpdatedAt = s.now().UTC()
	loan.LastUpdatedBy = p.UserID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReverseApproval returns an approved, undisbursed loan to pending.
func (s *loanService) ReverseApproval(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) (*domain.Loan, error) {
	scope, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return nil, err
	}
	if loan.ApprovalStatus != domain.ApprovalApproved || loan.DisbStatus != domain.NotDisbursed {
		return nil, fmt.Errorf("%w: only approved undisbursed loans can revert to pending", apperrors.ErrIllegalTransition)
	}

	loan.ApprovalStatus = domain.ApprovalPending
	loan.ApprovalDate = nil
	loan.LastUpdatedAt = s.now().UTC()
	loan.LastUpdatedBy = p.UserID
	if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// Disburse releases the principal through a cashier till and books the full
// schedule interest as receivable against unearned income. The legs, the
// expected-installment history and the loan flip commit in one transaction.
func (s *loanService) Disburse(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.DisburseLoanRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.authorize(ctx, p, branchID, domain.RoleTeller)
	if err != nil {
		return "", err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return "", err
	}
	if req.Date.After(session.SessionDate) {
		return "", fmt.Errorf("%w: disbursement date is after the session date", apperrors.ErrInvalidDate)
	}
	if req.Fee.IsNegative() || req.VAT.IsNegative() {
		return "", fmt.Errorf("%w: fee and VAT must not be negative", apperrors.ErrValidation)
	}

	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return "", err
	}
	if loan.ApprovalStatus != domain.ApprovalApproved {
		return "", fmt.Errorf("%w: loan is not approved", apperrors.ErrIllegalTransition)
	}
	if loan.DisbStatus == domain.Disbursed {
		return "", fmt.Errorf("%w: loan is already disbursed", apperrors.ErrIllegalTransition)
	}

	product, err := s.accountRepo.FindAccountByGL(ctx, branchID, loan.GLNo)
	if err != nil {
		return "", fmt.Errorf("loan product GL %s: %w", loan.GLNo, err)
	}
	withFee := req.Fee.IsPositive()
	withVAT := req.VAT.IsPositive()
	if missing := product.Loan.MissingForDisbursement(withFee, withVAT); len(missing) > 0 {
		return "", fmt.Errorf("%w: GL %s is missing bindings %v", apperrors.ErrLoanParametersMissing, loan.GLNo, missing)
	}

	schedule, err := amort.Schedule(loan.LoanAmount, loan.InterestRate, loan.NumInstall, loan.PaymentFreq, loan.InterestMethod, req.Date)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	totalInterest := amort.TotalInterest(schedule)

	netCash := loan.LoanAmount.Sub(req.Fee).Sub(req.VAT)
	if !netCash.IsPositive() {
		return "", fmt.Errorf("%w: fee and VAT exceed the principal", apperrors.ErrValidation)
	}

	desc := fmt.Sprintf("Loan disbursement %s/%s cycle %d", loan.GLNo, loan.AcNo, loan.Cycle)
	legs := []domain.Leg{
		{GLNo: loan.GLNo, AcNo: loan.AcNo, Amount: loan.LoanAmount.Neg(), Type: domain.LegLoan, AccountType: domain.AccountTypeForGL(loan.GLNo), Description: desc, AppDate: req.Date, Cycle: loan.Cycle},
		{GLNo: req.CashierGLNo, AcNo: req.CashierAcNo, Amount: netCash, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(req.CashierGLNo), Description: desc, AppDate: req.Date},
	}
	if withFee {
		legs = append(legs, domain.Leg{GLNo: product.Loan.AppFeeIncGLNo, Amount: req.Fee, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.AppFeeIncGLNo), Description: "Loan application fee", AppDate: req.Date, Cycle: loan.Cycle})
	}
	if withVAT {
		legs = append(legs, domain.Leg{GLNo: product.Loan.LoanVATGLNo, Amount: req.VAT, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.LoanVATGLNo), Description: "VAT on loan fee", AppDate: req.Date, Cycle: loan.Cycle})
	}
	if totalInterest.IsPositive() {
		legs = append(legs,
			domain.Leg{GLNo: product.Loan.IntReceivableGLNo, AcNo: loan.AcNo, Amount: totalInterest.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(product.Loan.IntReceivableGLNo), Description: "Interest receivable", AppDate: req.Date, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.UnearnedIntIncGLNo, Amount: totalInterest, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(product.Loan.UnearnedIntIncGLNo), Description: "Unearned loan interest", AppDate: req.Date, Cycle: loan.Cycle},
		)
	}

	hist := make([]domain.LoanHist, len(schedule))
	for i, row := range schedule {
		hist[i] = domain.LoanHist{
			BranchID:  branchID,
			GLNo:      loan.GLNo,
			AcNo:      loan.AcNo,
			Cycle:     loan.Cycle,
			Period:    row.Period,
			TrxType:   domain.HistExpected,
			TrxDate:   row.DueDate,
			Principal: row.Principal,
			Interest:  row.Interest,
		}
	}

	updated := *loan
	updated.DisbStatus = domain.Disbursed
	updated.DisbursementDate = &req.Date
	updated.TotalLoan = loan.LoanAmount
	updated.TotalInterest = totalInterest
	updated.CustGLNo = req.CashierGLNo
	updated.LastUpdatedAt = s.now().UTC()
	updated.LastUpdatedBy = p.UserID

	trxNo, err := s.loanRepo.Disburse(ctx, updated, legs, hist)
	if err != nil {
		return "", err
	}

	logger.Info("Loan disbursed",
		slog.String("trx_no", trxNo),
		slog.String("loan_id", loan.LoanID),
		slog.String("amount", loan.LoanAmount.String()),
		slog.String("interest", totalInterest.String()))
	s.notifyLoan(ctx, "loan.disbursed", updated, trxNo)
	return trxNo, nil
}

// Repay allocates a repayment to principal, interest and penalty. The split
// may not exceed the outstanding caches.
func (s *loanService) Repay(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.RepayLoanRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.authorize(ctx, p, branchID, domain.RoleTeller)
	if err != nil {
		return "", err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return "", err
	}
	if req.AppDate.After(session.SessionDate) {
		return "", fmt.Errorf("%w: repayment date is after the session date", apperrors.ErrInvalidDate)
	}
	if req.Principal.IsNegative() || req.Interest.IsNegative() || req.Penalty.IsNegative() {
		return "", fmt.Errorf("%w: repayment split must not be negative", apperrors.ErrValidation)
	}
	total := req.Principal.Add(req.Interest).Add(req.Penalty)
	if !total.IsPositive() {
		return "", fmt.Errorf("%w: repayment must be positive", apperrors.ErrValidation)
	}

	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return "", err
	}
	if !loan.IsLive() {
		return "", fmt.Errorf("%w: loan is not live", apperrors.ErrIllegalTransition)
	}
	if req.Principal.GreaterThan(loan.TotalLoan) {
		return "", fmt.Errorf("%w: principal %s exceeds outstanding %s", apperrors.ErrValidation, req.Principal, loan.TotalLoan)
	}
	if req.Interest.GreaterThan(loan.TotalInterest) {
		return "", fmt.Errorf("%w: interest %s exceeds outstanding %s", apperrors.ErrValidation, req.Interest, loan.TotalInterest)
	}

	product, err := s.accountRepo.FindAccountByGL(ctx, branchID, loan.GLNo)
	if err != nil {
		return "", fmt.Errorf("loan product GL %s: %w", loan.GLNo, err)
	}

	desc := fmt.Sprintf("Loan repayment %s/%s cycle %d", loan.GLNo, loan.AcNo, loan.Cycle)
	legs := []domain.Leg{
		{GLNo: req.CashierGLNo, AcNo: req.CashierAcNo, Amount: total.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(req.CashierGLNo), Description: desc, AppDate: req.AppDate},
	}
	if req.Principal.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: loan.GLNo, AcNo: loan.AcNo, Amount: req.Principal, Type: domain.LegLoan, AccountType: domain.AccountTypeForGL(loan.GLNo), Description: desc, AppDate: req.AppDate, Cycle: loan.Cycle})
	}
	if req.Interest.IsPositive() {
		// Clear the receivable and recognise the earned slice of income.
		legs = append(legs,
			domain.Leg{GLNo: product.Loan.IntReceivableGLNo, AcNo: loan.AcNo, Amount: req.Interest, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(product.Loan.IntReceivableGLNo), Description: "Interest repaid", AppDate: req.AppDate, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.UnearnedIntIncGLNo, Amount: req.Interest.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.UnearnedIntIncGLNo), Description: "Unearned interest released", AppDate: req.AppDate, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.InterestGLNo, Amount: req.Interest, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.InterestGLNo), Description: "Loan interest earned", AppDate: req.AppDate, Cycle: loan.Cycle},
		)
	}
	if req.Penalty.IsPositive() {
		if product.Loan.PenGLNo == "" {
			return "", fmt.Errorf("%w: GL %s is missing bindings [pen_gl]", apperrors.ErrLoanParametersMissing, loan.GLNo)
		}
		legs = append(legs, domain.Leg{GLNo: product.Loan.PenGLNo, Amount: req.Penalty, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.PenGLNo), Description: "Loan penalty income", AppDate: req.AppDate, Cycle: loan.Cycle})
	}

	hist := domain.LoanHist{
		BranchID:  branchID,
		GLNo:      loan.GLNo,
		AcNo:      loan.AcNo,
		Cycle:     loan.Cycle,
		Period:    s.nextPaymentPeriod(ctx, branchID, loan),
		TrxType:   domain.HistPayment,
		TrxDate:   req.AppDate,
		Principal: req.Principal.Neg(),
		Interest:  req.Interest.Neg(),
		Penalty:   req.Penalty.Neg(),
	}

	updated := *loan
	updated.TotalLoan = loan.TotalLoan.Sub(req.Principal)
	updated.TotalInterest = loan.TotalInterest.Sub(req.Interest)
	updated.LastUpdatedAt = s.now().UTC()
	updated.LastUpdatedBy = p.UserID

	trxNo, err := s.loanRepo.Repay(ctx, updated, legs, hist, domain.CodeLoanRepayment)
	if err != nil {
		return "", err
	}

	logger.Info("Loan repayment posted",
		slog.String("trx_no", trxNo),
		slog.String("loan_id", loan.LoanID),
		slog.String("principal", req.Principal.String()),
		slog.String("interest", req.Interest.String()),
		slog.String("penalty", req.Penalty.String()))
	s.notifyLoan(ctx, "loan.repayment", updated, trxNo)
	return trxNo, nil
}

// WriteOff clears the remaining exposure: principal to the write-off expense,
// interest recognised and immediately contra'd so the income statement shows
// both the gross and the loss.
func (s *loanService) WriteOff(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, req dto.WriteOffLoanRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return "", err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return "", err
	}

	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return "", err
	}
	if !loan.IsLive() {
		return "", fmt.Errorf("%w: loan is not live", apperrors.ErrIllegalTransition)
	}
	if req.Principal.IsNegative() || req.Interest.IsNegative() || req.Penalty.IsNegative() {
		return "", fmt.Errorf("%w: write-off split must not be negative", apperrors.ErrValidation)
	}
	if req.Principal.GreaterThan(loan.TotalLoan) || req.Interest.GreaterThan(loan.TotalInterest) {
		return "", fmt.Errorf("%w: write-off exceeds outstanding exposure", apperrors.ErrValidation)
	}

	product, err := s.accountRepo.FindAccountByGL(ctx, branchID, loan.GLNo)
	if err != nil {
		return "", fmt.Errorf("loan product GL %s: %w", loan.GLNo, err)
	}
	if product.Loan.WriteOffGLNo == "" || product.Loan.WriteOffIntGLNo == "" {
		return "", fmt.Errorf("%w: GL %s is missing bindings [write_off_gl write_off_int_gl]", apperrors.ErrLoanParametersMissing, loan.GLNo)
	}

	appDate := session.SessionDate
	desc := fmt.Sprintf("Loan write-off %s/%s cycle %d", loan.GLNo, loan.AcNo, loan.Cycle)
	var legs []domain.Leg
	if req.Principal.IsPositive() {
		legs = append(legs,
			domain.Leg{GLNo: loan.GLNo, AcNo: loan.AcNo, Amount: req.Principal, Type: domain.LegLoan, AccountType: domain.AccountTypeForGL(loan.GLNo), Description: desc, AppDate: appDate, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.WriteOffGLNo, Amount: req.Principal.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.WriteOffGLNo), Description: desc, AppDate: appDate, Cycle: loan.Cycle},
		)
	}
	if req.Interest.IsPositive() {
		legs = append(legs,
			domain.Leg{GLNo: product.Loan.IntReceivableGLNo, AcNo: loan.AcNo, Amount: req.Interest, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(product.Loan.IntReceivableGLNo), Description: "Interest written off", AppDate: appDate, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.UnearnedIntIncGLNo, Amount: req.Interest.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.UnearnedIntIncGLNo), Description: "Unearned interest released", AppDate: appDate, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.InterestGLNo, Amount: req.Interest, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.InterestGLNo), Description: "Loan interest earned", AppDate: appDate, Cycle: loan.Cycle},
			domain.Leg{GLNo: product.Loan.WriteOffIntGLNo, Amount: req.Interest.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(product.Loan.WriteOffIntGLNo), Description: "Interest income written off", AppDate: appDate, Cycle: loan.Cycle},
		)
	}
	if len(legs) == 0 {
		return "", fmt.Errorf("%w: nothing to write off", apperrors.ErrValidation)
	}

	hist := domain.LoanHist{
		BranchID:  branchID,
		GLNo:      loan.GLNo,
		AcNo:      loan.AcNo,
		Cycle:     loan.Cycle,
		Period:    s.nextPaymentPeriod(ctx, branchID, loan),
		TrxType:   domain.HistWriteOff,
		TrxDate:   appDate,
		Principal: req.Principal.Neg(),
		Interest:  req.Interest.Neg(),
		Penalty:   req.Penalty.Neg(),
	}

	updated := *loan
	updated.TotalLoan = loan.TotalLoan.Sub(req.Principal)
	updated.TotalInterest = loan.TotalInterest.Sub(req.Interest)
	updated.LastUpdatedAt = s.now().UTC()
	updated.LastUpdatedBy = p.UserID

	trxNo, err := s.loanRepo.Repay(ctx, updated, legs, hist, domain.CodeLoanWriteOff)
	if err != nil {
		return "", err
	}
	logger.Info("Loan written off", slog.String("trx_no", trxNo), slog.String("loan_id", loan.LoanID))
	return trxNo, nil
}

// ReverseDisbursement undoes a disbursement that has seen no repayment,
// flipping the posting group and returning the loan to approved.
func (s *loanService) ReverseDisbursement(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return err
	}
	if _, err := s.openSession(ctx, branchID); err != nil {
		return err
	}

	loan, err := s.load(ctx, scope, branchID, key)
	if err != nil {
		return err
	}
	if loan.DisbStatus != domain.Disbursed {
		return fmt.Errorf("%w: loan is not disbursed", apperrors.ErrIllegalTransition)
	}

	hist, err := s.loanRepo.ListHist(ctx, branchID, key.GLNo, key.AcNo, key.Cycle)
	if err != nil {
		return err
	}
	var trxNo string
	for _, h := range hist {
		if h.TrxType != domain.HistExpected {
			return fmt.Errorf("%w: loan has repayments, disbursement cannot be reversed", apperrors.ErrIllegalTransition)
		}
		trxNo = h.TrxNo
	}
	if trxNo == "" {
		return fmt.Errorf("%w: disbursement transaction for loan %s", apperrors.ErrNotFound, loan.LoanID)
	}

	updated := *loan
	updated.DisbStatus = domain.NotDisbursed
	updated.DisbursementDate = nil
	updated.TotalLoan = decimal.Zero
	updated.TotalInterest = decimal.Zero
	updated.CustGLNo = ""
	updated.LastUpdatedAt = s.now().UTC()
	updated.LastUpdatedBy = p.UserID

	if err := s.loanRepo.ReverseDisbursement(ctx, updated, trxNo, p.UserID); err != nil {
		return err
	}
	logger.Info("Loan disbursement reversed", slog.String("trx_no", trxNo), slog.String("loan_id", loan.LoanID))
	return nil
}

func (s *loanService) Get(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) (*domain.Loan, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.load(ctx, scope, branchID, key)
}

func (s *loanService) ListLive(ctx context.Context, p domain.Principal, branchID string) ([]domain.Loan, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListLiveLoans(ctx, scope, []string{branchID})
}

// Schedule regenerates the amortisation table from the loan parameters,
// anchored on the disbursement date when disbursed.
func (s *loanService) Schedule(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) ([]dto.ScheduleRow, error) {
	loan, err := s.Get(ctx, p, branchID, key)
	if err != nil {
		return nil, err
	}
	anchor := loan.AppliDate
	if loan.DisbursementDate != nil {
		anchor = *loan.DisbursementDate
	}
	rows, err := amort.Schedule(loan.LoanAmount, loan.InterestRate, loan.NumInstall, loan.PaymentFreq, loan.InterestMethod, anchor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	out := make([]dto.ScheduleRow, len(rows))
	for i, r := range rows {
		out[i] = dto.ScheduleRow{
			Period:    r.Period,
			DueDate:   r.DueDate,
			Principal: r.Principal,
			Interest:  r.Interest,
			Total:     r.Total,
			Remaining: r.Remaining,
		}
	}
	return out, nil
}

func (s *loanService) History(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey) ([]domain.LoanHist, error) {
	if _, err := s.Get(ctx, p, branchID, key); err != nil {
		return nil, err
	}
	return s.loanRepo.ListHist(ctx, branchID, key.GLNo, key.AcNo, key.Cycle)
}

// DaysOverdue counts installments due against repayment allocations made.
// Each payment row covers one installment regardless of its size, so the
// arrears clock starts at the earliest installment with no matching payment.
func (s *loanService) DaysOverdue(ctx context.Context, p domain.Principal, branchID string, key dto.LoanKey, asOf time.Time) (int, domain.ArrearsBucket, error) {
	loan, err := s.Get(ctx, p, branchID, key)
	if err != nil {
		return 0, "", err
	}
	if !loan.IsLive() {
		return 0, domain.ArrearsCurrent, nil
	}
	hist, err := s.loanRepo.ListHist(ctx, branchID, key.GLNo, key.AcNo, key.Cycle)
	if err != nil {
		return 0, "", err
	}

	var due []domain.LoanHist
	paid := 0
	for _, h := range hist {
		switch h.TrxType {
		case domain.HistExpected:
			if !h.TrxDate.After(asOf) {
				due = append(due, h)
			}
		case domain.HistPayment:
			paid++
		}
	}
	if paid >= len(due) {
		return 0, domain.ArrearsCurrent, nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].TrxDate.Before(due[j].TrxDate) })

	days := int(asOf.Sub(due[paid].TrxDate).Hours() / 24)
	return days, domain.BucketForDays(days), nil
}

// nextPaymentPeriod numbers allocation rows after the last recorded one.
func (s *loanService) nextPaymentPeriod(ctx context.Context, branchID string, loan *domain.Loan) int {
	hist, err := s.loanRepo.ListHist(ctx, branchID, loan.GLNo, loan.AcNo, loan.Cycle)
	if err != nil {
		return 1
	}
	max := 0
	for _, h := range hist {
		if h.TrxType != domain.HistExpected && h.Period > max {
			max = h.Period
		}
	}
	return max + 1
}

func (s *loanService) notifyLoan(ctx context.Context, event string, loan domain.Loan, trxNo string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event, map[string]any{
		"branchID": loan.BranchID,
		"glNo":     loan.GLNo,
		"acNo":     loan.AcNo,
		"cycle":    loan.Cycle,
		"trxNo":    trxNo,
	})
}
