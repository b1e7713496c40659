package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/core/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PendingServiceTestSuite struct {
	suite.Suite
	mockPendingRepo *MockPendingRepository
	mockLedgerRepo  *MockLedgerRepository
	mockSessionRepo *MockSessionRepository
	mockAccountRepo *MockAccountRepository
	mockBranchRepo  *MockBranchRepository
	service         portssvc.PendingSvcFacade
	branchID        string
	officer         domain.Principal
	manager         domain.Principal
	session         domain.BranchSession
}

func (suite *PendingServiceTestSuite) SetupTest() {
	suite.mockPendingRepo = new(MockPendingRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockSessionRepo = new(MockSessionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockBranchRepo = new(MockBranchRepository)

	tenantSvc := services.NewTenantService(suite.mockBranchRepo)
	suite.service = services.NewPendingService(suite.mockPendingRepo, suite.mockLedgerRepo, suite.mockSessionRepo, suite.mockAccountRepo, tenantSvc)

	suite.branchID = uuid.NewString()
	suite.officer = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleOfficer}
	suite.manager = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleManager}
	suite.session = domain.BranchSession{
		BranchID:      suite.branchID,
		SessionDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SessionStatus: domain.SessionOpen,
	}
}

func (suite *PendingServiceTestSuite) submitRequest() dto.SubmitPendingRequest {
	appDate := suite.session.SessionDate
	return dto.SubmitPendingRequest{
		Code: domain.CodeGeneralJournal,
		Legs: []dto.JournalLegRequest{
			{GLNo: "10400", AcNo: "00001", Amount: decimal.NewFromInt(-750), Description: "till adjustment", AppDate: appDate},
			{GLNo: "20100", AcNo: "00042", Amount: decimal.NewFromInt(750), Description: "till adjustment", AppDate: appDate},
		},
	}
}

func (suite *PendingServiceTestSuite) awaiting(maker string) *domain.PendingTransaction {
	return &domain.PendingTransaction{
		PendingID: uuid.NewString(),
		BranchID:  suite.branchID,
		TrxNo:     "GL0000012",
		Code:      domain.CodeGeneralJournal,
		Legs: []domain.Leg{
			{GLNo: "10400", AcNo: "00001", Amount: decimal.NewFromInt(-750), Type: domain.LegDebit},
			{GLNo: "20100", AcNo: "00042", Amount: decimal.NewFromInt(750), Type: domain.LegCredit},
		},
		Status:  domain.PendingAwaiting,
		MakerID: maker,
	}
}

func (suite *PendingServiceTestSuite) TestSubmit_Success() {
	ctx := context.Background()
	req := suite.submitRequest()

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockAccountRepo.On("FindAccountByGL", ctx, suite.branchID, mock.AnythingOfType("string")).Return(&domain.Account{BranchID: suite.branchID}, nil).Twice()
	suite.mockLedgerRepo.On("AllocateTrxNo", ctx, suite.branchID, domain.CodeGeneralJournal).Return("GL0000012", nil).Once()
	suite.mockPendingRepo.On("SavePending", ctx, mock.MatchedBy(func(p domain.PendingTransaction) bool {
		return p.TrxNo == "GL0000012" &&
			p.Status == domain.PendingAwaiting &&
			p.MakerID == suite.officer.UserID &&
			len(p.Legs) == 2 &&
			p.Legs[0].Type == domain.LegDebit &&
			p.Legs[1].Type == domain.LegCredit
	})).Return(nil).Once()

	pending, err := suite.service.Submit(ctx, suite.officer, suite.branchID, req)

	suite.Require().NoError(err)
	suite.Equal("GL0000012", pending.TrxNo)
	suite.Equal(domain.PendingAwaiting, pending.Status)
	suite.mockPendingRepo.AssertExpectations(suite.T())
}

func (suite *PendingServiceTestSuite) TestSubmit_Unbalanced() {
	ctx := context.Background()
	req := suite.submitRequest()
	req.Legs[1].Amount = decimal.NewFromInt(700)

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()

	_, err := suite.service.Submit(ctx, suite.officer, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnbalancedPosting)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AllocateTrxNo", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PendingServiceTestSuite) TestSubmit_SessionClosed() {
	ctx := context.Background()
	closed := suite.session
	closed.SessionStatus = domain.SessionClosed

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&closed, nil).Once()

	_, err := suite.service.Submit(ctx, suite.officer, suite.branchID, suite.submitRequest())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSessionClosed)
}

func (suite *PendingServiceTestSuite) TestApprove_Success() {
	ctx := context.Background()
	pending := suite.awaiting(suite.officer.UserID)

	suite.mockPendingRepo.On("FindPendingByID", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, pending.PendingID).Return(pending, nil).Once()
	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockLedgerRepo.On("AppendPostingWithTrxNo", ctx, suite.branchID, pending.TrxNo, pending.Code, suite.manager.UserID, pending.Legs).Return(nil).Once()
	suite.mockPendingRepo.On("UpdatePendingStatus", ctx, pending.PendingID, domain.PendingApproved, "", suite.manager.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	approved, err := suite.service.Approve(ctx, suite.manager, suite.branchID, pending.PendingID)

	suite.Require().NoError(err)
	suite.Equal(domain.PendingApproved, approved.Status)
	suite.Equal(suite.manager.UserID, approved.CheckerID)
	suite.NotNil(approved.DecidedAt)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockPendingRepo.AssertExpectations(suite.T())
}

func (suite *PendingServiceTestSuite) TestApprove_MakerCannotCheck() {
	ctx := context.Background()
	managerMade := suite.awaiting(suite.manager.UserID)

	suite.mockPendingRepo.On("FindPendingByID", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, managerMade.PendingID).Return(managerMade, nil).Once()

	_, err := suite.service.Approve(ctx, suite.manager, suite.branchID, managerMade.PendingID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendPostingWithTrxNo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PendingServiceTestSuite) TestApprove_OfficerRefused() {
	ctx := context.Background()
	pending := suite.awaiting(suite.officer.UserID)

	_, err := suite.service.Approve(ctx, suite.officer, suite.branchID, pending.PendingID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PendingServiceTestSuite) TestApprove_AlreadyPostedGroup() {
	ctx := context.Background()
	pending := suite.awaiting(suite.officer.UserID)

	suite.mockPendingRepo.On("FindPendingByID", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, pending.PendingID).Return(pending, nil).Once()
	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockLedgerRepo.On("AppendPostingWithTrxNo", ctx, suite.branchID, pending.TrxNo, pending.Code, suite.manager.UserID, pending.Legs).Return(apperrors.ErrDuplicateTrx).Once()
	suite.mockPendingRepo.On("UpdatePendingStatus", ctx, pending.PendingID, domain.PendingApproved, "", suite.manager.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	approved, err := suite.service.Approve(ctx, suite.manager, suite.branchID, pending.PendingID)

	suite.Require().NoError(err)
	suite.Equal(domain.PendingApproved, approved.Status)
}

func (suite *PendingServiceTestSuite) TestApprove_NotAwaiting() {
	ctx := context.Background()
	pending := suite.awaiting(suite.officer.UserID)
	pending.Status = domain.PendingRejected

	suite.mockPendingRepo.On("FindPendingByID", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, pending.PendingID).Return(pending, nil).Once()

	_, err := suite.service.Approve(ctx, suite.manager, suite.branchID, pending.PendingID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
}

func (suite *PendingServiceTestSuite) TestReject_Success() {
	ctx := context.Background()
	pending := suite.awaiting(suite.officer.UserID)
	req := dto.RejectPendingRequest{Reason: "wrong contra account"}

	suite.mockPendingRepo.On("FindPendingByID", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, pending.PendingID).Return(pending, nil).Once()
	suite.mockPendingRepo.On("UpdatePendingStatus", ctx, pending.PendingID, domain.PendingRejected, req.Reason, suite.manager.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	rejected, err := suite.service.Reject(ctx, suite.manager, suite.branchID, pending.PendingID, req)

	suite.Require().NoError(err)
	suite.Equal(domain.PendingRejected, rejected.Status)
	suite.Equal(req.Reason, rejected.Reason)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendPostingWithTrxNo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PendingServiceTestSuite) TestList_PassesStatusFilter() {
	ctx := context.Background()
	staged := []domain.PendingTransaction{*suite.awaiting(suite.officer.UserID)}

	suite.mockPendingRepo.On("ListPending", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, domain.PendingAwaiting).Return(staged, nil).Once()

	got, err := suite.service.List(ctx, suite.manager, suite.branchID, domain.PendingAwaiting)

	suite.Require().NoError(err)
	suite.Len(got, 1)
}

func TestPendingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PendingServiceTestSuite))
}
