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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SessionServiceTestSuite struct {
	suite.Suite
	mockSessionRepo *MockSessionRepository
	mockBranchRepo  *MockBranchRepository
	mockFDSvc       *MockFDService
	service         portssvc.SessionSvcFacade
	branchID        string
	manager         domain.Principal
	teller          domain.Principal
	session         domain.BranchSession
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.mockSessionRepo = new(MockSessionRepository)
	suite.mockBranchRepo = new(MockBranchRepository)
	suite.mockFDSvc = new(MockFDService)

	tenantSvc := services.NewTenantService(suite.mockBranchRepo)
	suite.service = services.NewSessionService(suite.mockSessionRepo, tenantSvc, suite.mockFDSvc)

	suite.branchID = uuid.NewString()
	suite.manager = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleManager}
	suite.teller = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleTeller}
	suite.session = domain.BranchSession{
		BranchID:      suite.branchID,
		SessionDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SessionStatus: domain.SessionOpen,
	}
}

func (suite *SessionServiceTestSuite) TestOpenSession_Success() {
	ctx := context.Background()

	suite.mockSessionRepo.On("SetStatus", ctx, suite.branchID, domain.SessionOpen, suite.manager.UserID).Return(nil).Once()

	err := suite.service.OpenSession(ctx, suite.manager, suite.branchID)

	suite.Require().NoError(err)
	suite.mockSessionRepo.AssertExpectations(suite.T())
}

func (suite *SessionServiceTestSuite) TestOpenSession_TellerRefused() {
	ctx := context.Background()

	err := suite.service.OpenSession(ctx, suite.teller, suite.branchID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockSessionRepo.AssertNotCalled(suite.T(), "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestCloseSession_Success() {
	ctx := context.Background()

	suite.mockSessionRepo.On("SetStatus", ctx, suite.branchID, domain.SessionClosed, suite.manager.UserID).Return(nil).Once()

	err := suite.service.CloseSession(ctx, suite.manager, suite.branchID)

	suite.Require().NoError(err)
}

func (suite *SessionServiceTestSuite) TestGetSession_ForeignBranchRefused() {
	ctx := context.Background()

	_, err := suite.service.GetSession(ctx, suite.manager, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrTenantViolation)
}

func (suite *SessionServiceTestSuite) TestEndOfSession_AdvancesDate() {
	ctx := context.Background()
	nextDate := suite.session.SessionDate.AddDate(0, 0, 1)

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockSessionRepo.On("AdvanceDate", ctx, suite.branchID, nextDate, suite.manager.UserID).Return(nil).Once()

	err := suite.service.EndOfSession(ctx, suite.manager, suite.branchID, dto.AdvanceSessionRequest{NextDate: nextDate})

	suite.Require().NoError(err)
	suite.mockFDSvc.AssertNotCalled(suite.T(), "AccrueDaily", mock.Anything, mock.Anything, mock.Anything)
	suite.mockSessionRepo.AssertExpectations(suite.T())
}

func (suite *SessionServiceTestSuite) TestEndOfSession_RunsBatchesFirst() {
	ctx := context.Background()
	nextDate := suite.session.SessionDate.AddDate(0, 0, 1)

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockFDSvc.On("AccrueDaily", ctx, suite.branchID, suite.session.SessionDate).Return(14, nil).Once()
	suite.mockFDSvc.On("MarkMatured", ctx, suite.branchID, suite.session.SessionDate).Return(2, nil).Once()
	suite.mockSessionRepo.On("AdvanceDate", ctx, suite.branchID, nextDate, suite.manager.UserID).Return(nil).Once()

	err := suite.service.EndOfSession(ctx, suite.manager, suite.branchID, dto.AdvanceSessionRequest{NextDate: nextDate, RunBatches: true})

	suite.Require().NoError(err)
	suite.mockFDSvc.AssertExpectations(suite.T())
	suite.mockSessionRepo.AssertExpectations(suite.T())
}

func (suite *SessionServiceTestSuite) TestEndOfSession_DateMustAdvance() {
	ctx := context.Background()

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()

	err := suite.service.EndOfSession(ctx, suite.manager, suite.branchID, dto.AdvanceSessionRequest{NextDate: suite.session.SessionDate})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidDate)
	suite.mockSessionRepo.AssertNotCalled(suite.T(), "AdvanceDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestEndOfSession_AccrualFailureStopsAdvance() {
	ctx := context.Background()
	nextDate := suite.session.SessionDate.AddDate(0, 0, 1)

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockFDSvc.On("AccrueDaily", ctx, suite.branchID, suite.session.SessionDate).Return(0, apperrors.ErrValidation).Once()

	err := suite.service.EndOfSession(ctx, suite.manager, suite.branchID, dto.AdvanceSessionRequest{NextDate: nextDate, RunBatches: true})

	suite.Require().Error(err)
	suite.mockSessionRepo.AssertNotCalled(suite.T(), "AdvanceDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}
