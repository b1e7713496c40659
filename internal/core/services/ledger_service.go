package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
	"github.com/shopspring/decimal"
)

// ledgerService is the posting engine: balanced multi-leg appends, balances,
// statements and group reversal.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepository
	sessionRepo portsrepo.SessionRepository
	accountRepo portsrepo.AccountReader
	tenantSvc   portssvc.TenantSvcFacade
}

// NewLedgerService creates the posting engine.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository, sessionRepo portsrepo.SessionRepository, accountRepo portsrepo.AccountReader, tenantSvc portssvc.TenantSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
		tenantSvc:   tenantSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateLegs enforces the posting pre-conditions: at least two legs, every
// amount non-zero, sum exactly zero, app dates not after the session date,
// and every GL present on the chart.
func (s *ledgerService) validateLegs(ctx context.Context, branchID string, session domain.BranchSession, legs []domain.Leg) error {
	if len(legs) < 2 {
		return fmt.Errorf("%w: posting needs at least two legs", apperrors.ErrValidation)
	}

	glSet := make(map[string]struct{})
	for i, leg := range legs {
		if leg.Amount.IsZero() {
			return fmt.Errorf("%w: leg %d has zero amount", apperrors.ErrValidation, i)
		}
		if leg.AppDate.After(session.SessionDate) {
			return fmt.Errorf("%w: leg %d app_date %s is after session date %s",
				apperrors.ErrInvalidDate, i, leg.AppDate.Format("2006-01-02"), session.SessionDate.Format("2006-01-02"))
		}
		// Counterparty-branch legs are validated against their own chart at
		// insert time; only owning-branch GLs are checked here.
		if leg.CustBranchID == "" || leg.CustBranchID == branchID {
			glSet[leg.GLNo] = struct{}{}
		}
	}

	if sum := domain.SumLegs(legs); !sum.IsZero() {
		return fmt.Errorf("%w: legs sum to %s", apperrors.ErrUnbalancedPosting, sum)
	}

	glNos := make([]string, 0, len(glSet))
	for gl := range glSet {
		glNos = append(glNos, gl)
	}
	accounts, err := s.accountRepo.FindAccountsByGLs(ctx, branchID, glNos)
	if err != nil {
		return fmt.Errorf("failed to resolve GLs: %w", err)
	}
	for _, gl := range glNos {
		if _, ok := accounts[gl]; !ok {
			return fmt.Errorf("%w: GL %s", apperrors.ErrNotFound, gl)
		}
	}
	return nil
}

// writableSession loads the branch session and refuses closed branches.
func (s *ledgerService) writableSession(ctx context.Context, branchID string) (*domain.BranchSession, error) {
	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}
	return session, nil
}

// Post appends a balanced group and returns the allocated trx_no.
func (s *ledgerService) Post(ctx context.Context, p domain.Principal, branchID string, code domain.TrxCode, legs []domain.Leg) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return "", err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return "", err
	}
	if err := requireRole(p, domain.RoleTeller); err != nil {
		return "", err
	}

	session, err := s.writableSession(ctx, branchID)
	if err != nil {
		return "", err
	}
	if err := s.validateLegs(ctx, branchID, *session, legs); err != nil {
		return "", err
	}

	trxNo, err := s.ledgerRepo.AppendPosting(ctx, branchID, code, p.UserID, legs)
	if err != nil {
		logger.Error("Failed to append posting", slog.String("branch_id", branchID), slog.String("code", string(code)), slog.String("error", err.Error()))
		return "", err
	}

	logger.Info("Posting appended",
		slog.String("trx_no", trxNo),
		slog.String("branch_id", branchID),
		slog.String("code", string(code)),
		slog.Int("legs", len(legs)))
	return trxNo, nil
}

// PostJournal posts a user-submitted general journal (code GL).
func (s *ledgerService) PostJournal(ctx context.Context, p domain.Principal, branchID string, req dto.PostJournalRequest) (string, error) {
	legs := make([]domain.Leg, len(req.Legs))
	for i, l := range req.Legs {
		legType := l.Type
		if legType == "" {
			legType = domain.LegCredit
			if l.Amount.IsNegative() {
				legType = domain.LegDebit
			}
		}
		legs[i] = domain.Leg{
			GLNo:         l.GLNo,
			AcNo:         l.AcNo,
			Amount:       l.Amount,
			Type:         legType,
			AccountType:  domain.AccountTypeForGL(l.GLNo),
			Description:  l.Description,
			AppDate:      l.AppDate,
			CustBranchID: l.CustBranchID,
			Cycle:        l.Cycle,
		}
	}
	return s.Post(ctx, p, branchID, domain.CodeGeneralJournal, legs)
}

// Balance returns the authoritative ledger balance for (gl, ac).
func (s *ledgerService) Balance(ctx context.Context, p domain.Principal, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return decimal.Zero, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return decimal.Zero, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return s.ledgerRepo.Balance(ctx, scope, branchID, glNo, acNo, asOf)
}

// Statement builds the statement of account with opening, running rows and
// closing balance.
func (s *ledgerService) Statement(ctx context.Context, p domain.Principal, branchID string, req dto.StatementRequest) (*domain.Statement, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	if req.To.Before(req.From) {
		return nil, fmt.Errorf("%w: statement range end precedes start", apperrors.ErrInvalidDate)
	}

	opening, rows, err := s.ledgerRepo.StatementRows(ctx, scope, branchID, req.GLNo, req.AcNo, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to build statement rows: %w", err)
	}

	running := opening
	for i := range rows {
		running = running.Add(rows[i].Credit).Sub(rows[i].Debit)
		rows[i].Running = running
	}

	return &domain.Statement{
		GLNo:    req.GLNo,
		AcNo:    req.AcNo,
		From:    req.From,
		To:      req.To,
		Opening: opening,
		Rows:    rows,
		Closing: running,
	}, nil
}

// Reverse flips every leg of the group to H. The repository refuses groups
// whose session day has already closed and ignores repeated reversals.
func (s *ledgerService) Reverse(ctx context.Context, p domain.Principal, branchID, trxNo string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

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
	if _, err := s.writableSession(ctx, branchID); err != nil {
		return err
	}

	if err := s.ledgerRepo.ReverseGroup(ctx, branchID, trxNo, p.UserID); err != nil {
		return err
	}
	logger.Info("Posting group reversed", slog.String("trx_no", trxNo), slog.String("branch_id", branchID))
	return nil
}

// GetPostings lists all legs of one transaction group.
func (s *ledgerService) GetPostings(ctx context.Context, p domain.Principal, branchID, trxNo string) ([]domain.Posting, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.FindPostingsByTrxNo(ctx, scope, branchID, trxNo)
}
