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
	"github.com/koboledger/kobo/internal/core/services/fdmath"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
	"github.com/shopspring/decimal"
)

// fdService is the fixed-deposit product engine: open, mature, withdraw,
// premature closure, renewal, lien holds and the EOS accrual batch.
type fdService struct {
	fdRepo      portsrepo.FDRepository
	accountRepo portsrepo.AccountReader
	branchRepo  portsrepo.BranchRepository
	sessionRepo portsrepo.SessionRepository
	ledgerSvc   portssvc.LedgerSvcFacade
	tenantSvc   portssvc.TenantSvcFacade
	notifier    portssvc.Notifier
	now         func() time.Time
}

// NewFDService creates the fixed-deposit facade. notifier may be nil.
func NewFDService(fdRepo portsrepo.FDRepository, accountRepo portsrepo.AccountReader, branchRepo portsrepo.BranchRepository, sessionRepo portsrepo.SessionRepository, ledgerSvc portssvc.LedgerSvcFacade, tenantSvc portssvc.TenantSvcFacade, notifier portssvc.Notifier) portssvc.FDSvcFacade {
	return &fdService{
		fdRepo:      fdRepo,
		accountRepo: accountRepo,
		branchRepo:  branchRepo,
		sessionRepo: sessionRepo,
		ledgerSvc:   ledgerSvc,
		tenantSvc:   tenantSvc,
		notifier:    notifier,
		now:         time.Now,
	}
}

var _ portssvc.FDSvcFacade = (*fdService)(nil)

// defaultMinLockInDays applies to deposits opened outside a product.
const defaultMinLockInDays = 7

// authorize checks scope, role and that the branch plan carries the FD product.
func (s *fdService) authorize(ctx context.Context, p domain.Principal, branchID string, role domain.Role) (domain.TenantScope, *domain.Branch, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return domain.TenantScope{}, nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return domain.TenantScope{}, nil, err
	}
	if err := requireRole(p, role); err != nil {
		return domain.TenantScope{}, nil, err
	}
	branch, err := s.branchRepo.FindBranchByID(ctx, branchID)
	if err != nil {
		return domain.TenantScope{}, nil, fmt.Errorf("branch %s: %w", branchID, err)
	}
	if !branch.Plan.AllowsFixedDeposits() {
		return domain.TenantScope{}, nil, fmt.Errorf("%w: plan %s does not include fixed deposits", apperrors.ErrForbidden, branch.Plan)
	}
	return scope, branch, nil
}

func (s *fdService) openSession(ctx context.Context, branchID string) (*domain.BranchSession, error) {
	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}
	return session, nil
}

// CreateProduct registers the policy knobs shared by deposits opened under
// the product.
func (s *fdService) CreateProduct(ctx context.Context, p domain.Principal, branchID string, req dto.CreateFDProductRequest) (*domain.FDProduct, error) {
	_, _, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	if req.PenaltyRate.IsNegative() || req.TDSRate.IsNegative() || req.SeniorExtra.IsNegative() {
		return nil, fmt.Errorf("%w: product rates must not be negative", apperrors.ErrValidation)
	}

	now := s.now().UTC()
	product := domain.FDProduct{
		ProductID:     uuid.NewString(),
		BranchID:      branchID,
		Name:          req.Name,
		MinLockInDays: req.MinLockInDays,
		PenaltyRate:   req.PenaltyRate,
		TDSRate:       req.TDSRate,
		SeniorExtra:   req.SeniorExtra,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     p.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: p.UserID,
		},
	}
	if err := s.fdRepo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("FD product created",
		slog.String("product_id", product.ProductID),
		slog.String("branch_id", branchID),
		slog.String("name", product.Name))
	return &product, nil
}

// ListByAccount returns every cycle of deposits a customer holds under an FD
// product GL.
func (s *fdService) ListByAccount(ctx context.Context, p domain.Principal, branchID, glNo, acNo string) ([]domain.FixedDeposit, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.fdRepo.ListDepositsByAccount(ctx, scope, branchID, glNo, acNo)
}

// grossInterest computes the full-tenure interest for a deposit at its
// effective rate.
func grossInterest(fd domain.FixedDeposit, tenureMonths decimal.Decimal) decimal.Decimal {
	if fd.InterestType == domain.InterestCompound {
		return fdmath.CompoundInterest(fd.Principal, fd.EffectiveRate(), tenureMonths, fd.CompoundFrequency.PerYear())
	}
	return fdmath.SimpleInterest(fd.Principal, fd.EffectiveRate(), tenureMonths)
}

func (s *fdService) Open(ctx context.Context, p domain.Principal, branchID string, req dto.OpenFDRequest) (*domain.FixedDeposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	_, branch, err := s.authorize(ctx, p, branchID, domain.RoleTeller)
	if err != nil {
		return nil, err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if req.StartDate.After(session.SessionDate) {
		return nil, fmt.Errorf("%w: start date is after the session date", apperrors.ErrInvalidDate)
	}
	if !req.Principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
	}
	if req.Rate.IsNegative() {
		return nil, fmt.Errorf("%w: rate must not be negative", apperrors.ErrValidation)
	}
	if req.InterestType == domain.InterestCompound && req.CompoundFrequency == "" {
		return nil, fmt.Errorf("%w: compound frequency is required for compound interest", apperrors.ErrValidation)
	}

	productAccount, err := s.accountRepo.FindAccountByGL(ctx, branchID, req.FixedGLNo)
	if err != nil {
		return nil, fmt.Errorf("FD product GL %s: %w", req.FixedGLNo, err)
	}

	// The funding account must cover the principal.
	balance, err := s.ledgerSvc.Balance(ctx, p, branchID, req.CustGLNo, req.CustAcNo, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if balance.LessThan(req.Principal) {
		return nil, fmt.Errorf("%w: balance %s, principal %s", apperrors.ErrInsufficientFunds, balance, req.Principal)
	}

	tdsRate := req.TDSRate
	seniorExtra := req.SeniorExtraRate
	if req.ProductID != "" {
		product, err := s.fdRepo.FindProduct(ctx, branchID, req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("FD product %s: %w", req.ProductID, err)
		}
		if tdsRate.IsZero() {
			tdsRate = product.TDSRate
		}
		if seniorExtra.IsZero() {
			seniorExtra = product.SeniorExtra
		}
	}

	cycle, err := s.fdRepo.NextDepositCycle(ctx, branchID, req.FixedGLNo, req.CustAcNo)
	if err != nil {
		return nil, err
	}

	fd := domain.FixedDeposit{
		FDID:              uuid.NewString(),
		BranchID:          branchID,
		FixedGLNo:         req.FixedGLNo,
		FixedAcNo:         req.CustAcNo,
		Cycle:             cycle,
		ProductID:         req.ProductID,
		Principal:         req.Principal,
		Rate:              req.Rate,
		TenureMonths:      req.TenureMonths,
		StartDate:         req.StartDate,
		MaturityDate:      req.StartDate.AddDate(0, req.TenureMonths, 0),
		InterestType:      req.InterestType,
		CompoundFrequency: req.CompoundFrequency,
		InterestOption:    req.InterestOption,
		Status:            domain.FDActive,
		TDSApplicable:     req.TDSApplicable,
		TDSRate:           tdsRate,
		SeniorCitizen:     req.SeniorCitizen,
		SeniorExtraRate:   seniorExtra,
		NomineeName:       req.NomineeName,
		NomineeRelation:   req.NomineeRelation,
		CustGLNo:          req.CustGLNo,
		CustAcNo:          req.CustAcNo,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}
	fd.InterestAmount = grossInterest(fd, decimal.NewFromInt(int64(fd.TenureMonths)))
	fd.MaturityAmount = fd.Principal.Add(fd.InterestAmount)
	fd.CertificateNo = domain.CertificateNumber(branch.BranchCode, s.now().UTC(), int64(cycle))

	desc := fmt.Sprintf("Fixed deposit %s", fd.CertificateNo)
	legs := []domain.Leg{
		{GLNo: req.CustGLNo, AcNo: req.CustAcNo, Amount: req.Principal.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(req.CustGLNo), Description: desc, AppDate: req.StartDate},
		{GLNo: fd.FixedGLNo, AcNo: fd.FixedAcNo, Amount: req.Principal, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(fd.FixedGLNo), Description: desc, AppDate: req.StartDate, Cycle: cycle},
	}
	if fd.InterestAmount.IsPositive() {
		b := productAccount.FD
		if b.FDIntReceivableGLNo == "" || b.FDUnearnedIntGLNo == "" {
			return nil, fmt.Errorf("%w: GL %s is missing FD bindings", apperrors.ErrLoanParametersMissing, req.FixedGLNo)
		}
		legs = append(legs,
			domain.Leg{GLNo: b.FDIntReceivableGLNo, Amount: fd.InterestAmount.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(b.FDIntReceivableGLNo), Description: "Interest receivable", AppDate: req.StartDate, Cycle: cycle},
			domain.Leg{GLNo: b.FDUnearnedIntGLNo, Amount: fd.InterestAmount, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(b.FDUnearnedIntGLNo), Description: "Unearned FD interest", AppDate: req.StartDate, Cycle: cycle},
		)
	}

	trxNo, err := s.fdRepo.OpenDeposit(ctx, fd, legs)
	if err != nil {
		return nil, err
	}

	logger.Info("Fixed deposit opened",
		slog.String("fd_id", fd.FDID),
		slog.String("certificate_no", fd.CertificateNo),
		slog.String("trx_no", trxNo),
		slog.String("principal", fd.Principal.String()),
		slog.String("maturity", fd.MaturityDate.Format("2006-01-02")))
	s.notifyFD(ctx, "fd.opened", fd, trxNo)
	return &fd, nil
}

func (s *fdService) Get(ctx context.Context, p domain.Principal, branchID, fdID string) (*domain.FixedDeposit, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.fdRepo.FindDeposit(ctx, scope, branchID, fdID)
}

// Withdraw pays out principal plus full-tenure interest at or after maturity.
func (s *fdService) Withdraw(ctx context.Context, p domain.Principal, branchID, fdID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, _, err := s.authorize(ctx, p, branchID, domain.RoleTeller)
	if err != nil {
		return "", err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return "", err
	}

	fd, err := s.fdRepo.FindDeposit(ctx, scope, branchID, fdID)
	if err != nil {
		return "", err
	}
	switch fd.Status {
	case domain.FDMatured:
	case domain.FDActive:
		if session.SessionDate.Before(fd.MaturityDate) {
			return "", fmt.Errorf("%w: deposit matures on %s, use premature closure", apperrors.ErrIllegalTransition, fd.MaturityDate.Format("2006-01-02"))
		}
	default:
		return "", fmt.Errorf("%w: deposit is %s", apperrors.ErrIllegalTransition, fd.Status)
	}
	if fd.LienMarked {
		return "", fmt.Errorf("%w: deposit carries a lien (%s)", apperrors.ErrIllegalTransition, fd.LienReference)
	}

	bindings, err := s.payoutBindings(ctx, branchID, fd.FixedGLNo)
	if err != nil {
		return "", err
	}

	interest := fd.InterestAmount
	tds := decimal.Zero
	if fd.TDSApplicable {
		tds = fdmath.TDS(interest, fd.TDSRate)
	}
	payout := fd.Principal.Add(interest).Sub(tds)

	appDate := session.SessionDate
	desc := fmt.Sprintf("Fixed deposit payout %s", fd.CertificateNo)
	legs := []domain.Leg{
		{GLNo: fd.FixedGLNo, AcNo: fd.FixedAcNo, Amount: fd.Principal.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(fd.FixedGLNo), Description: desc, AppDate: appDate, Cycle: fd.Cycle},
		{GLNo: bindings.FixedDepIntGLNo, Amount: interest.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.FixedDepIntGLNo), Description: "Fixed deposit interest", AppDate: appDate, Cycle: fd.Cycle},
		{GLNo: fd.CustGLNo, AcNo: fd.CustAcNo, Amount: payout, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(fd.CustGLNo), Description: desc, AppDate: appDate},
	}
	if tds.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: bindings.TDSPayableGLNo, Amount: tds, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.TDSPayableGLNo), Description: "TDS on FD interest", AppDate: appDate, Cycle: fd.Cycle})
	}

	closed := *fd
	closed.Status = domain.FDClosed
	closed.LastUpdatedAt = s.now().UTC()
	closed.LastUpdatedBy = p.UserID

	trxNo, err := s.fdRepo.CloseDeposit(ctx, closed, legs, domain.CodeFixedDepositWdl)
	if err != nil {
		return "", err
	}
	logger.Info("Fixed deposit withdrawn",
		slog.String("fd_id", fd.FDID),
		slog.String("trx_no", trxNo),
		slog.String("payout", payout.String()))
	s.notifyFD(ctx, "fd.withdrawn", closed, trxNo)
	return trxNo, nil
}

// PrematureWithdraw closes a deposit before maturity: interest is recomputed
// on the actual holding period, a penalty is taken from it, then TDS.
func (s *fdService) PrematureWithdraw(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.PrematureFDRequest) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, _, err := s.authorize(ctx, p, branchID, domain.RoleTeller)
	if err != nil {
		return "", err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return "", err
	}

	fd, err := s.fdRepo.FindDeposit(ctx, scope, branchID, fdID)
	if err != nil {
		return "", err
	}
	if fd.Status != domain.FDActive {
		return "", fmt.Errorf("%w: deposit is %s", apperrors.ErrIllegalTransition, fd.Status)
	}
	if fd.LienMarked {
		return "", fmt.Errorf("%w: deposit carries a lien (%s)", apperrors.ErrIllegalTransition, fd.LienReference)
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = session.SessionDate
	}
	if asOf.Before(fd.StartDate) || asOf.After(session.SessionDate) {
		return "", fmt.Errorf("%w: closure date outside [start, session] window", apperrors.ErrInvalidDate)
	}

	penaltyRate := req.PenaltyRate
	minLockIn := defaultMinLockInDays
	if fd.ProductID != "" {
		product, err := s.fdRepo.FindProduct(ctx, branchID, fd.ProductID)
		if err == nil {
			minLockIn = product.MinLockInDays
			if penaltyRate.IsZero() {
				penaltyRate = product.PenaltyRate
			}
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
	}
	if held := fdmath.DaysHeld(fd.StartDate, asOf); held < minLockIn {
		return "", fmt.Errorf("%w: deposit held %d days, lock-in is %d", apperrors.ErrIllegalTransition, held, minLockIn)
	}

	bindings, err := s.payoutBindings(ctx, branchID, fd.FixedGLNo)
	if err != nil {
		return "", err
	}

	months := fdmath.MonthsHeld(fd.StartDate, asOf)
	gross := grossInterest(*fd, months)
	penalty := fdmath.PrematurePenalty(gross, penaltyRate)
	netInterest := gross.Sub(penalty)
	tds := decimal.Zero
	if fd.TDSApplicable {
		tds = fdmath.TDS(netInterest, fd.TDSRate)
	}
	payout := fd.Principal.Add(netInterest).Sub(tds)

	desc := fmt.Sprintf("Premature FD closure %s", fd.CertificateNo)
	legs := []domain.Leg{
		{GLNo: fd.FixedGLNo, AcNo: fd.FixedAcNo, Amount: fd.Principal.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(fd.FixedGLNo), Description: desc, AppDate: asOf, Cycle: fd.Cycle},
		{GLNo: fd.CustGLNo, AcNo: fd.CustAcNo, Amount: payout, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(fd.CustGLNo), Description: desc, AppDate: asOf},
	}
	if gross.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: bindings.FixedDepIntGLNo, Amount: gross.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.FixedDepIntGLNo), Description: "Fixed deposit interest", AppDate: asOf, Cycle: fd.Cycle})
	}
	if penalty.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: bindings.FixedDepPenIncGLNo, Amount: penalty, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.FixedDepPenIncGLNo), Description: "Premature closure penalty", AppDate: asOf, Cycle: fd.Cycle})
	}
	if tds.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: bindings.TDSPayableGLNo, Amount: tds, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.TDSPayableGLNo), Description: "TDS on FD interest", AppDate: asOf, Cycle: fd.Cycle})
	}

	closed := *fd
	closed.Status = domain.FDPrematureClosed
	closed.InterestAmount = netInterest
	closed.MaturityAmount = payout
	closed.LastUpdatedAt = s.now().UTC()
	closed.LastUpdatedBy = p.UserID

	trxNo, err := s.fdRepo.CloseDeposit(ctx, closed, legs, domain.CodeFixedDepositWdl)
	if err != nil {
		return "", err
	}
	logger.Info("Fixed deposit closed prematurely",
		slog.String("fd_id", fd.FDID),
		slog.String("trx_no", trxNo),
		slog.String("penalty", penalty.String()),
		slog.String("payout", payout.String()))
	s.notifyFD(ctx, "fd.premature_closed", closed, trxNo)
	return trxNo, nil
}

// Renew rolls a matured deposit into a new instance. Depending on the renewal
// type the new principal carries the old principal, principal plus net
// interest, or a custom figure with the remainder paid to the customer.
func (s *fdService) Renew(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.RenewFDRequest) (*domain.FixedDeposit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, branch, err := s.authorize(ctx, p, branchID, domain.RoleTeller)
	if err != nil {
		return nil, err
	}
	session, err := s.openSession(ctx, branchID)
	if err != nil {
		return nil, err
	}

	old, err := s.fdRepo.FindDeposit(ctx, scope, branchID, fdID)
	if err != nil {
		return nil, err
	}
	if old.Status != domain.FDMatured && !(old.Status == domain.FDActive && !session.SessionDate.Before(old.MaturityDate)) {
		return nil, fmt.Errorf("%w: only matured deposits can be renewed", apperrors.ErrIllegalTransition)
	}
	if old.LienMarked {
		return nil, fmt.Errorf("%w: deposit carries a lien (%s)", apperrors.ErrIllegalTransition, old.LienReference)
	}

	bindings, err := s.payoutBindings(ctx, branchID, old.FixedGLNo)
	if err != nil {
		return nil, err
	}

	interest := old.InterestAmount
	tds := decimal.Zero
	if old.TDSApplicable {
		tds = fdmath.TDS(interest, old.TDSRate)
	}
	available := old.Principal.Add(interest).Sub(tds)

	var newPrincipal decimal.Decimal
	switch req.RenewalType {
	case domain.RenewPrincipalOnly:
		newPrincipal = old.Principal
	case domain.RenewWithInterest:
		newPrincipal = available
	case domain.RenewCustomPrincipal:
		newPrincipal = req.CustomPrincipal
		if !newPrincipal.IsPositive() || newPrincipal.GreaterThan(available) {
			return nil, fmt.Errorf("%w: custom principal must be in (0, %s]", apperrors.ErrValidation, available)
		}
	default:
		return nil, fmt.Errorf("%w: unknown renewal type %q", apperrors.ErrValidation, req.RenewalType)
	}
	toCustomer := available.Sub(newPrincipal)

	cycle, err := s.fdRepo.NextDepositCycle(ctx, branchID, old.FixedGLNo, old.FixedAcNo)
	if err != nil {
		return nil, err
	}
	startDate := session.SessionDate
	renewed := domain.FixedDeposit{
		FDID:              uuid.NewString(),
		BranchID:          branchID,
		FixedGLNo:         old.FixedGLNo,
		FixedAcNo:         old.FixedAcNo,
		Cycle:             cycle,
		ProductID:         old.ProductID,
		Principal:         newPrincipal,
		Rate:              req.Rate,
		TenureMonths:      req.TenureMonths,
		StartDate:         startDate,
		MaturityDate:      startDate.AddDate(0, req.TenureMonths, 0),
		InterestType:      old.InterestType,
		CompoundFrequency: old.CompoundFrequency,
		InterestOption:    old.InterestOption,
		Status:            domain.FDActive,
		TDSApplicable:     old.TDSApplicable,
		TDSRate:           old.TDSRate,
		SeniorCitizen:     old.SeniorCitizen,
		SeniorExtraRate:   old.SeniorExtraRate,
		NomineeName:       old.NomineeName,
		NomineeRelation:   old.NomineeRelation,
		CustGLNo:          old.CustGLNo,
		CustAcNo:          old.CustAcNo,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}
	renewed.InterestAmount = grossInterest(renewed, decimal.NewFromInt(int64(renewed.TenureMonths)))
	renewed.MaturityAmount = renewed.Principal.Add(renewed.InterestAmount)
	renewed.CertificateNo = domain.CertificateNumber(branch.BranchCode, s.now().UTC(), int64(cycle))

	desc := fmt.Sprintf("Fixed deposit renewal %s -> %s", old.CertificateNo, renewed.CertificateNo)
	legs := []domain.Leg{
		{GLNo: old.FixedGLNo, AcNo: old.FixedAcNo, Amount: old.Principal.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(old.FixedGLNo), Description: desc, AppDate: startDate, Cycle: old.Cycle},
		{GLNo: bindings.FixedDepIntGLNo, Amount: interest.Neg(), Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.FixedDepIntGLNo), Description: "Fixed deposit interest", AppDate: startDate, Cycle: old.Cycle},
		{GLNo: renewed.FixedGLNo, AcNo: renewed.FixedAcNo, Amount: newPrincipal, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(renewed.FixedGLNo), Description: desc, AppDate: startDate, Cycle: cycle},
	}
	if tds.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: bindings.TDSPayableGLNo, Amount: tds, Type: domain.LegNominal, AccountType: domain.AccountTypeForGL(bindings.TDSPayableGLNo), Description: "TDS on FD interest", AppDate: startDate, Cycle: old.Cycle})
	}
	if toCustomer.IsPositive() {
		legs = append(legs, domain.Leg{GLNo: old.CustGLNo, AcNo: old.CustAcNo, Amount: toCustomer, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(old.CustGLNo), Description: desc, AppDate: startDate})
	}
	if renewed.InterestAmount.IsPositive() {
		if bindings.FDIntReceivableGLNo == "" || bindings.FDUnearnedIntGLNo == "" {
			return nil, fmt.Errorf("%w: GL %s is missing FD bindings", apperrors.ErrLoanParametersMissing, renewed.FixedGLNo)
		}
		legs = append(legs,
			domain.Leg{GLNo: bindings.FDIntReceivableGLNo, Amount: renewed.InterestAmount.Neg(), Type: domain.LegDebit, AccountType: domain.AccountTypeForGL(bindings.FDIntReceivableGLNo), Description: "Interest receivable", AppDate: startDate, Cycle: cycle},
			domain.Leg{GLNo: bindings.FDUnearnedIntGLNo, Amount: renewed.InterestAmount, Type: domain.LegCredit, AccountType: domain.AccountTypeForGL(bindings.FDUnearnedIntGLNo), Description: "Unearned FD interest", AppDate: startDate, Cycle: cycle},
		)
	}

	trxNo, err := s.fdRepo.OpenDeposit(ctx, renewed, legs)
	if err != nil {
		return nil, err
	}

	prior := *old
	prior.Status = domain.FDRenewed
	prior.LastUpdatedAt = s.now().UTC()
	prior.LastUpdatedBy = p.UserID
	if err := s.fdRepo.UpdateDeposit(ctx, prior); err != nil {
		return nil, fmt.Errorf("renewal posted as %s but closing the old deposit failed: %w", trxNo, err)
	}
	if err := s.fdRepo.SaveRenewal(ctx, domain.FDRenewalHistory{
		RenewalID:   uuid.NewString(),
		BranchID:    branchID,
		OldFDID:     old.FDID,
		NewFDID:     renewed.FDID,
		RenewalType: req.RenewalType,
		Principal:   newPrincipal,
		RenewedAt:   s.now().UTC(),
	}); err != nil {
		return nil, err
	}

	logger.Info("Fixed deposit renewed",
		slog.String("old_fd_id", old.FDID),
		slog.String("new_fd_id", renewed.FDID),
		slog.String("trx_no", trxNo),
		slog.String("principal", newPrincipal.String()))
	s.notifyFD(ctx, "fd.renewed", renewed, trxNo)
	return &renewed, nil
}

func (s *fdService) MarkLien(ctx context.Context, p domain.Principal, branchID, fdID string, req dto.LienRequest) error {
	scope, _, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return err
	}
	fd, err := s.fdRepo.FindDeposit(ctx, scope, branchID, fdID)
	if err != nil {
		return err
	}
	if fd.Status != domain.FDActive {
		return fmt.Errorf("%w: deposit is %s", apperrors.ErrIllegalTransition, fd.Status)
	}
	if fd.LienMarked {
		return fmt.Errorf("%w: deposit already carries a lien", apperrors.ErrIllegalTransition)
	}
	if !req.Amount.IsPositive() || req.Amount.GreaterThan(fd.Principal) {
		return fmt.Errorf("%w: lien amount must be in (0, %s]", apperrors.ErrValidation, fd.Principal)
	}

	fd.LienMarked = true
	fd.LienAmount = req.Amount
	fd.LienReference = req.Reference
	fd.LastUpdatedAt = s.now().UTC()
	fd.LastUpdatedBy = p.UserID
	return s.fdRepo.UpdateDeposit(ctx, *fd)
}

func (s *fdService) RemoveLien(ctx context.Context, p domain.Principal, branchID, fdID string) error {
	scope, _, err := s.authorize(ctx, p, branchID, domain.RoleManager)
	if err != nil {
		return err
	}
	fd, err := s.fdRepo.FindDeposit(ctx, scope, branchID, fdID)
	if err != nil {
		return err
	}
	if !fd.LienMarked {
		return fmt.Errorf("%w: deposit carries no lien", apperrors.ErrIllegalTransition)
	}

	fd.LienMarked = false
	fd.LienAmount = decimal.Zero
	fd.LienReference = ""
	fd.LastUpdatedAt = s.now().UTC()
	fd.LastUpdatedBy = p.UserID
	return s.fdRepo.UpdateDeposit(ctx, *fd)
}

// AccrueDaily writes one accrual row per active deposit for the session date.
// Deposits already accrued for the date are skipped, so the batch is safe to
// re-run.
func (s *fdService) AccrueDaily(ctx context.Context, branchID string, sesDate time.Time) (int, error) {
	deposits, err := s.fdRepo.ListActiveDeposits(ctx, branchID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, fd := range deposits {
		last, err := s.fdRepo.LastAccrual(ctx, fd.FDID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return count, err
		}
		cumulative := decimal.Zero
		if last != nil {
			if !last.AccrualDate.Before(sesDate) {
				continue
			}
			cumulative = last.CumulativeAccrued
		}
		amount := fdmath.DailyAccrual(fd.Principal, fd.EffectiveRate())
		if err := s.fdRepo.SaveAccrual(ctx, domain.FDInterestAccrual{
			AccrualID:         uuid.NewString(),
			FDID:              fd.FDID,
			AccrualDate:       sesDate,
			AccruedAmount:     amount,
			CumulativeAccrued: cumulative.Add(amount),
		}); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *fdService) MarkMatured(ctx context.Context, branchID string, sesDate time.Time) (int, error) {
	return s.fdRepo.MarkMatured(ctx, branchID, sesDate)
}

// payoutBindings loads the FD product GL bindings needed for payout legs.
func (s *fdService) payoutBindings(ctx context.Context, branchID, glNo string) (domain.FDBindings, error) {
	account, err := s.accountRepo.FindAccountByGL(ctx, branchID, glNo)
	if err != nil {
		return domain.FDBindings{}, fmt.Errorf("FD product GL %s: %w", glNo, err)
	}
	b := account.FD
	if b.FixedDepIntGLNo == "" || b.TDSPayableGLNo == "" || b.FixedDepPenIncGLNo == "" {
		return domain.FDBindings{}, fmt.Errorf("%w: GL %s is missing FD bindings", apperrors.ErrLoanParametersMissing, glNo)
	}
	return b, nil
}

func (s *fdService) notifyFD(ctx context.Context, event string, fd domain.FixedDeposit, trxNo string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, event, map[string]any{
		"branchID":      fd.BranchID,
		"fdID":          fd.FDID,
		"certificateNo": fd.CertificateNo,
		"principal":     fd.Principal.String(),
		"trxNo":         trxNo,
	})
}
