package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/middleware"
)

// sessionService controls the per-branch posting gate.
type sessionService struct {
	sessionRepo portsrepo.SessionRepository
	tenantSvc   portssvc.TenantSvcFacade
	fdSvc       portssvc.FDSvcFacade
}

// NewSessionService creates the branch session controller. fdSvc may be nil
// when the end-of-session batches are not wired.
func NewSessionService(sessionRepo portsrepo.SessionRepository, tenantSvc portssvc.TenantSvcFacade, fdSvc portssvc.FDSvcFacade) portssvc.SessionSvcFacade {
	return &sessionService{
		sessionRepo: sessionRepo,
		tenantSvc:   tenantSvc,
		fdSvc:       fdSvc,
	}
}

var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

func (s *sessionService) authorize(ctx context.Context, p domain.Principal, branchID string) error {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return err
	}
	return requireRole(p, domain.RoleManager)
}

func (s *sessionService) GetSession(ctx context.Context, p domain.Principal, branchID string) (*domain.BranchSession, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return nil, err
	}
	return s.sessionRepo.FindSession(ctx, branchID)
}

func (s *sessionService) OpenSession(ctx context.Context, p domain.Principal, branchID string) error {
	if err := s.authorize(ctx, p, branchID); err != nil {
		return err
	}
	return s.sessionRepo.SetStatus(ctx, branchID, domain.SessionOpen, p.UserID)
}

func (s *sessionService) CloseSession(ctx context.Context, p domain.Principal, branchID string) error {
	if err := s.authorize(ctx, p, branchID); err != nil {
		return err
	}
	return s.sessionRepo.SetStatus(ctx, branchID, domain.SessionClosed, p.UserID)
}

// EndOfSession runs the optional EOS batches against the closing date, then
// advances the session date and reopens the branch.
func (s *sessionService) EndOfSession(ctx context.Context, p domain.Principal, branchID string, req dto.AdvanceSessionRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.authorize(ctx, p, branchID); err != nil {
		return err
	}

	session, err := s.sessionRepo.FindSession(ctx, branchID)
	if err != nil {
		return fmt.Errorf("failed to load session for branch %s: %w", branchID, err)
	}
	if !req.NextDate.After(session.SessionDate) {
		return fmt.Errorf("%w: next date %s must be after session date %s",
			apperrors.ErrInvalidDate, req.NextDate.Format("2006-01-02"), session.SessionDate.Format("2006-01-02"))
	}

	if req.RunBatches && s.fdSvc != nil {
		accrued, err := s.fdSvc.AccrueDaily(ctx, branchID, session.SessionDate)
		if err != nil {
			return fmt.Errorf("end of session accrual failed: %w", err)
		}
		matured, err := s.fdSvc.MarkMatured(ctx, branchID, session.SessionDate)
		if err != nil {
			return fmt.Errorf("end of session maturity marking failed: %w", err)
		}
		logger.Info("End of session batches completed",
			slog.String("branch_id", branchID),
			slog.Int("deposits_accrued", accrued),
			slog.Int("deposits_matured", matured))
	}

	if err := s.sessionRepo.AdvanceDate(ctx, branchID, req.NextDate, p.UserID); err != nil {
		return err
	}
	logger.Info("Session advanced",
		slog.String("branch_id", branchID),
		slog.String("from", session.SessionDate.Format("2006-01-02")),
		slog.String("to", req.NextDate.Format("2006-01-02")))
	return nil
}
