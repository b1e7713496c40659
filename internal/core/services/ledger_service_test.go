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

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockSessionRepo *MockSessionRepository
	mockAccountRepo *MockAccountRepository
	mockBranchRepo  *MockBranchRepository
	service         portssvc.LedgerSvcFacade
	branchID        string
	principal       domain.Principal
	session         domain.BranchSession
	sessionDate     time.Time
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockSessionRepo = new(MockSessionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockBranchRepo = new(MockBranchRepository)

	tenantSvc := services.NewTenantService(suite.mockBranchRepo)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockSessionRepo, suite.mockAccountRepo, tenantSvc)

	suite.branchID = uuid.NewString()
	suite.principal = domain.Principal{
		UserID:   uuid.NewString(),
		BranchID: suite.branchID,
		Role:     domain.RoleTeller,
	}
	suite.sessionDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	suite.session = domain.BranchSession{
		BranchID:      suite.branchID,
		SessionDate:   suite.sessionDate,
		SessionStatus: domain.SessionOpen,
	}
}

func (suite *LedgerServiceTestSuite) balancedLegs() []domain.Leg {
	return []domain.Leg{
		{GLNo: "10400", AcNo: "00001", Amount: decimal.NewFromInt(-500), Type: domain.LegDebit, Description: "Cash out", AppDate: suite.sessionDate},
		{GLNo: "20100", AcNo: "00042", Amount: decimal.NewFromInt(500), Type: domain.LegCredit, Description: "Savings in", AppDate: suite.sessionDate},
	}
}

func (suite *LedgerServiceTestSuite) chartFor(legs []domain.Leg) map[string]domain.Account {
	accounts := make(map[string]domain.Account)
	for _, l := range legs {
		accounts[l.GLNo] = domain.Account{BranchID: suite.branchID, GLNo: l.GLNo}
	}
	return accounts
}

func (suite *LedgerServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	legs := suite.balancedLegs()

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGLs", ctx, suite.branchID, mock.AnythingOfType("[]string")).Return(suite.chartFor(legs), nil).Once()
	suite.mockLedgerRepo.On("AppendPosting", ctx, suite.branchID, domain.CodeDeposit, suite.principal.UserID, legs).Return("DP0000001", nil).Once()

	trxNo, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, legs)

	suite.Require().NoError(err)
	suite.Equal("DP0000001", trxNo)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPost_Unbalanced() {
	ctx := context.Background()
	legs := suite.balancedLegs()
	legs[1].Amount = decimal.NewFromInt(499)

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()

	_, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, legs)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnbalancedPosting)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendPosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPost_ZeroAmountLeg() {
	ctx := context.Background()
	legs := []domain.Leg{
		{GLNo: "10400", Amount: decimal.Zero, AppDate: suite.sessionDate},
		{GLNo: "20100", Amount: decimal.Zero, AppDate: suite.sessionDate},
	}

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()

	_, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, legs)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPost_SingleLeg() {
	ctx := context.Background()
	legs := suite.balancedLegs()[:1]

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()

	_, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, legs)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestPost_SessionClosed() {
	ctx := context.Background()
	closed := suite.session
	closed.SessionStatus = domain.SessionClosed

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&closed, nil).Once()

	_, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, suite.balancedLegs())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSessionClosed)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "AppendPosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPost_ForeignBranchRefused() {
	ctx := context.Background()

	_, err := suite.service.Post(ctx, suite.principal, uuid.NewString(), domain.CodeDeposit, suite.balancedLegs())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrTenantViolation)
}

func (suite *LedgerServiceTestSuite) TestPost_OfficerRefused() {
	ctx := context.Background()
	officer := suite.principal
	officer.Role = domain.RoleOfficer

	_, err := suite.service.Post(ctx, officer, suite.branchID, domain.CodeDeposit, suite.balancedLegs())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) TestPost_FutureAppDate() {
	ctx := context.Background()
	legs := suite.balancedLegs()
	legs[0].AppDate = suite.sessionDate.AddDate(0, 0, 1)

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()

	_, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, legs)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidDate)
}

func (suite *LedgerServiceTestSuite) TestPost_UnknownGL() {
	ctx := context.Background()
	legs := suite.balancedLegs()
	chart := suite.chartFor(legs[:1])

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGLs", ctx, suite.branchID, mock.AnythingOfType("[]string")).Return(chart, nil).Once()

	_, err := suite.service.Post(ctx, suite.principal, suite.branchID, domain.CodeDeposit, legs)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestPostJournal_InfersLegTypes() {
	ctx := context.Background()
	req := dto.PostJournalRequest{
		Legs: []dto.JournalLegRequest{
			{GLNo: "10400", AcNo: "00001", Amount: decimal.NewFromInt(-250), Description: "adj", AppDate: suite.sessionDate},
			{GLNo: "31100", AcNo: "", Amount: decimal.NewFromInt(250), Description: "adj", AppDate: suite.sessionDate},
		},
	}

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGLs", ctx, suite.branchID, mock.AnythingOfType("[]string")).Return(map[string]domain.Account{
		"10400": {GLNo: "10400"}, "31100": {GLNo: "31100"},
	}, nil).Once()
	suite.mockLedgerRepo.On("AppendPosting", ctx, suite.branchID, domain.CodeGeneralJournal, suite.principal.UserID, mock.MatchedBy(func(legs []domain.Leg) bool {
		return len(legs) == 2 && legs[0].Type == domain.LegDebit && legs[1].Type == domain.LegCredit
	})).Return("GL0000007", nil).Once()

	trxNo, err := suite.service.PostJournal(ctx, suite.principal, suite.branchID, req)

	suite.Require().NoError(err)
	suite.Equal("GL0000007", trxNo)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestBalance_DefaultsAsOf() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("Balance", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, "20100", "00042", mock.MatchedBy(func(asOf time.Time) bool {
		return !asOf.IsZero()
	})).Return(decimal.NewFromInt(1200), nil).Once()

	balance, err := suite.service.Balance(ctx, suite.principal, suite.branchID, "20100", "00042", time.Time{})

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(1200)))
}

func (suite *LedgerServiceTestSuite) TestStatement_RunningBalances() {
	ctx := context.Background()
	from := suite.sessionDate.AddDate(0, -1, 0)
	to := suite.sessionDate
	req := dto.StatementRequest{GLNo: "20100", AcNo: "00042", From: from, To: to}

	rows := []domain.StatementRow{
		{TrxNo: "DP0000001", Credit: decimal.NewFromInt(500)},
		{TrxNo: "WD0000001", Debit: decimal.NewFromInt(200)},
	}
	suite.mockLedgerRepo.On("StatementRows", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, "20100", "00042", from, to).
		Return(decimal.NewFromInt(100), rows, nil).Once()

	stmt, err := suite.service.Statement(ctx, suite.principal, suite.branchID, req)

	suite.Require().NoError(err)
	suite.True(stmt.Opening.Equal(decimal.NewFromInt(100)))
	suite.True(stmt.Rows[0].Running.Equal(decimal.NewFromInt(600)))
	suite.True(stmt.Rows[1].Running.Equal(decimal.NewFromInt(400)))
	suite.True(stmt.Closing.Equal(decimal.NewFromInt(400)))
}

func (suite *LedgerServiceTestSuite) TestStatement_InvertedRange() {
	ctx := context.Background()
	req := dto.StatementRequest{GLNo: "20100", AcNo: "00042", From: suite.sessionDate, To: suite.sessionDate.AddDate(0, 0, -1)}

	_, err := suite.service.Statement(ctx, suite.principal, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidDate)
}

func (suite *LedgerServiceTestSuite) TestReverse_RequiresManager() {
	ctx := context.Background()

	err := suite.service.Reverse(ctx, suite.principal, suite.branchID, "DP0000001")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReverseGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestReverse_Success() {
	ctx := context.Background()
	manager := suite.principal
	manager.Role = domain.RoleManager

	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockLedgerRepo.On("ReverseGroup", ctx, suite.branchID, "DP0000001", manager.UserID).Return(nil).Once()

	err := suite.service.Reverse(ctx, manager, suite.branchID, "DP0000001")

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
