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

// pendingService is the maker-checker flow: officers stage postings, managers
// approve or reject them. The trx_no is allocated at staging time, so a
// repeated approval cannot post the group twice.
type pendingService struct {
	pendingRepo portsrepo.PendingRepository
	ledgerRepo  portsrepo.LedgerRepository
	sessionRepo portsrepo.SessionRepository
	accountRepo portsrepo.AccountReader
	tenantSvc   portssvc.TenantSvcFacade
	now         func() time.Time
}

// NewPendingService creates the maker-checker facade.
func NewPendingService(pendingRepo portsrepo.PendingRepository, ledgerRepo portsrepo.LedgerRepository, sessionRepo portsrepo.SessionRepository, accountRepo portsrepo.AccountReader, tenantSvc portssvc.TenantSvcFacade) portssvc.PendingSvcFacade {
	return &pendingService{
		pendingRepo: pendingRepo,
		ledgerRepo:  ledgerRepo,
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
		tenantSvc:   tenantSvc,
		now:         time.Now,
	}
}

var _ portssvc.PendingSvcFacade = (*pendingService)(nil)

func (s *pendingService) Submit(ctx context.Context, p domain.Principal, branchID string, req dto.SubmitPendingRequest) (*domain.PendingTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	if err := requireRole(p, domain.RoleOfficer); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}

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
	if len(legs) < 2 {
		return nil, fmt.Errorf("%w: posting needs at least two legs", apperrors.ErrValidation)
	}
	if sum := domain.SumLegs(legs); !sum.IsZero() {
		return nil, fmt.Errorf("%w: legs sum to %s", apperrors.ErrUnbalancedPosting, sum)
	}
	for i, leg := range legs {
		if leg.Amount.IsZero() {
			return nil, fmt.Errorf("%w: leg %d has zero amount", apperrors.ErrValidation, i)
		}
		if _, err := s.accountRepo.FindAccountByGL(ctx, branchID, leg.GLNo); err != nil {
			return nil, fmt.Errorf("GL %s: %w", leg.GLNo, err)
		}
	}

	trxNo, err := s.ledgerRepo.AllocateTrxNo(ctx, branchID, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate trx number: %w", err)
	}

	pending := domain.PendingTransaction{
		PendingID: uuid.NewString(),
		BranchID:  branchID,
		TrxNo:     trxNo,
		Code:      req.Code,
		Legs:      legs,
		Status:    domain.PendingAwaiting,
		MakerID:   p.UserID,
		AuditFields: domain.AuditFields{
			CreatedAt:     s.now().UTC(),
			CreatedBy:     p.UserID,
			LastUpdatedAt: s.now().UTC(),
			LastUpdatedBy: p.UserID,
		},
	}
	if err := s.pendingRepo.SavePending(ctx, pending); err != nil {
		return nil, err
	}

	logger.Info("Pending transaction staged",
		slog.String("pending_id", pending.PendingID),
		slog.String("trx_no", trxNo),
		slog.String("maker_id", p.UserID))
	return &pending, nil
}

// Approve posts the staged group under its reserved trx_no. The checker must
// not be the maker. A group already posted under the number is treated as
// approved rather than posted again.
func (s *pendingService) Approve(ctx context.Context, p domain.Principal, branchID, pendingID string) (*domain.PendingTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

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

	pending, err := s.pendingRepo.FindPendingByID(ctx, scope, branchID, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != domain.PendingAwaiting {
		return nil, fmt.Errorf("%w: transaction is %s", apperrors.ErrIllegalTransition, pending.Status)
	}
	if pending.MakerID == p.UserID && !p.SuperAdmin {
		return nil, fmt.Errorf("%w: checker cannot approve their own submission", apperrors.ErrForbidden)
	}

	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("%w: branch %s", apperrors.ErrSessionClosed, branchID)
	}

	err = s.ledgerRepo.AppendPostingWithTrxNo(ctx, branchID, pending.TrxNo, pending.Code, p.UserID, pending.Legs)
	if err != nil && !errors.Is(err, apperrors.ErrDuplicateTrx) {
		return nil, err
	}
	if errors.Is(err, apperrors.ErrDuplicateTrx) {
		logger.Warn("Pending group already posted, marking approved", slog.String("trx_no", pending.TrxNo))
	}

	decidedAt := s.now().UTC()
	if err := s.pendingRepo.UpdatePendingStatus(ctx, pendingID, domain.PendingApproved, "", p.UserID, decidedAt); err != nil {
		return nil, err
	}

	pending.Status = domain.PendingApproved
	pending.CheckerID = p.UserID
	pending.DecidedAt = &decidedAt
	logger.Info("Pending transaction approved",
		slog.String("pending_id", pendingID),
		slog.String("trx_no", pending.TrxNo),
		slog.String("checker_id", p.UserID))
	return pending, nil
}

func (s *pendingService) Reject(ctx context.Context, p domain.Principal, branchID, pendingID string, req dto.RejectPendingRequest) (*domain.PendingTransaction, error) {
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

	pending, err := s.pendingRepo.FindPendingByID(ctx, scope, branchID, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != domain.PendingAwaiting {
		return nil, fmt.Errorf("%w: transaction is %s", apperrors.ErrIllegalTransition, pending.Status)
	}

	decidedAt := s.now().UTC()
	if err := s.pendingRepo.UpdatePendingStatus(ctx, pendingID, domain.PendingRejected, req.Reason, p.UserID, decidedAt); err != nil {
		return nil, err
	}

	pending.Status = domain.PendingRejected
	pending.Reason = req.Reason
	pending.CheckerID = p.UserID
	pending.DecidedAt = &decidedAt
	return pending, nil
}

func (s *pendingService) List(ctx context.Context, p domain.Principal, branchID string, status domain.PendingStatus) ([]domain.PendingTransaction, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.pendingRepo.ListPending(ctx, scope, branchID, status)
}
