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

type MerchantServiceTestSuite struct {
	suite.Suite
	mockMerchantRepo *MockMerchantRepository
	mockBranchRepo   *MockBranchRepository
	mockSessionRepo  *MockSessionRepository
	mockLedgerSvc    *MockLedgerService
	service          portssvc.MerchantSvcFacade
	branchID         string
	teller           domain.Principal
	session          domain.BranchSession
	branch           domain.Branch
	merchant         domain.Merchant
}

func (suite *MerchantServiceTestSuite) SetupTest() {
	suite.mockMerchantRepo = new(MockMerchantRepository)
	suite.mockBranchRepo = new(MockBranchRepository)
	suite.mockSessionRepo = new(MockSessionRepository)
	suite.mockLedgerSvc = new(MockLedgerService)

	tenantSvc := services.NewTenantService(suite.mockBranchRepo)
	suite.service = services.NewMerchantService(suite.mockMerchantRepo, suite.mockBranchRepo, suite.mockSessionRepo, suite.mockLedgerSvc, tenantSvc)

	suite.branchID = uuid.NewString()
	suite.teller = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleTeller}
	suite.session = domain.BranchSession{
		BranchID:      suite.branchID,
		SessionDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SessionStatus: domain.SessionOpen,
	}
	suite.branch = domain.Branch{BranchID: suite.branchID, Plan: domain.PlanUltimate}
	suite.merchant = domain.Merchant{
		MerchantID:             uuid.NewString(),
		BranchID:               suite.branchID,
		FloatGLNo:              "20500",
		FloatAcNo:              "00009",
		SingleTransactionLimit: decimal.NewFromInt(5000),
		DailyTransactionLimit:  decimal.NewFromInt(20000),
		IsActive:               true,
	}
}

func (suite *MerchantServiceTestSuite) request(amount int64) dto.MerchantTxnRequest {
	return dto.MerchantTxnRequest{
		MerchantID:  suite.merchant.MerchantID,
		CustGLNo:    "20100",
		CustAcNo:    "00042",
		Amount:      decimal.NewFromInt(amount),
		Description: "agent cash in",
	}
}

func (suite *MerchantServiceTestSuite) expectPrepare(usedToday int64) {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindBranchByID", ctx, suite.branchID).Return(&suite.branch, nil).Once()
	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockMerchantRepo.On("FindMerchant", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, suite.merchant.MerchantID).Return(&suite.merchant, nil).Once()
	suite.mockMerchantRepo.On("SumCompletedForDay", ctx, suite.merchant.MerchantID, suite.session.SessionDate).Return(decimal.NewFromInt(usedToday), nil).Maybe()
}

func (suite *MerchantServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	manager := domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleManager}
	req := dto.CreateMerchantRequest{
		Name:                   "Corner Shop Agent",
		FloatGLNo:              "20500",
		FloatAcNo:              "00009",
		SingleTransactionLimit: decimal.NewFromInt(5000),
		DailyTransactionLimit:  decimal.NewFromInt(20000),
	}

	suite.mockBranchRepo.On("FindBranchByID", ctx, suite.branchID).Return(&suite.branch, nil).Once()
	suite.mockMerchantRepo.On("SaveMerchant", ctx, mock.MatchedBy(func(m domain.Merchant) bool {
		return m.BranchID == suite.branchID && m.IsActive && m.FloatGLNo == "20500"
	})).Return(nil).Once()

	merchant, err := suite.service.Register(ctx, manager, suite.branchID, req)

	suite.Require().NoError(err)
	suite.True(merchant.IsActive)
	suite.NotEmpty(merchant.MerchantID)
	suite.mockMerchantRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestRegister_TellerRefused() {
	ctx := context.Background()

	_, err := suite.service.Register(ctx, suite.teller, suite.branchID, dto.CreateMerchantRequest{Name: "x", FloatGLNo: "20500", FloatAcNo: "00009"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockMerchantRepo.AssertNotCalled(suite.T(), "SaveMerchant", mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	req := suite.request(1000)

	suite.expectPrepare(0)
	// The float side is debited, so its balance must cover the amount.
	suite.mockLedgerSvc.On("Balance", ctx, suite.teller, suite.branchID, suite.merchant.FloatGLNo, suite.merchant.FloatAcNo, mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(8000), nil).Once()
	suite.mockMerchantRepo.On("SaveTransactionWithLegs", ctx,
		mock.MatchedBy(func(trx domain.MerchantTransaction) bool {
			return trx.Code == domain.CodeMerchantDeposit && trx.Status == domain.MerchantTrxCompleted
		}),
		mock.MatchedBy(func(legs []domain.Leg) bool {
			return len(legs) == 2 && domain.SumLegs(legs).IsZero() && legs[0].Amount.IsPositive()
		}),
	).Return("MDP0000001", nil).Once()

	trxNo, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().NoError(err)
	suite.Equal("MDP0000001", trxNo)
	suite.mockMerchantRepo.AssertExpectations(suite.T())
}

func (suite *MerchantServiceTestSuite) TestDeposit_FloatInsufficient() {
	ctx := context.Background()
	req := suite.request(1000)

	suite.expectPrepare(0)
	suite.mockLedgerSvc.On("Balance", ctx, suite.teller, suite.branchID, suite.merchant.FloatGLNo, suite.merchant.FloatAcNo, mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(200), nil).Once()

	_, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockMerchantRepo.AssertNotCalled(suite.T(), "SaveTransactionWithLegs", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestWithdraw_CustomerInsufficient() {
	ctx := context.Background()
	req := suite.request(1500)

	suite.expectPrepare(0)
	suite.mockLedgerSvc.On("Balance", ctx, suite.teller, suite.branchID, "20100", "00042", mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(900), nil).Once()

	_, err := suite.service.Withdraw(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *MerchantServiceTestSuite) TestDeposit_SingleLimitExceeded() {
	ctx := context.Background()
	req := suite.request(6000)

	suite.expectPrepare(0)

	_, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMerchantRepo.AssertNotCalled(suite.T(), "SaveTransactionWithLegs", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestDeposit_DailyLimitExhausted() {
	ctx := context.Background()
	req := suite.request(3000)

	suite.expectPrepare(18000)

	_, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MerchantServiceTestSuite) TestDeposit_InactiveMerchant() {
	ctx := context.Background()
	req := suite.request(100)
	inactive := suite.merchant
	inactive.IsActive = false

	suite.mockBranchRepo.On("FindBranchByID", ctx, suite.branchID).Return(&suite.branch, nil).Once()
	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
	suite.mockMerchantRepo.On("FindMerchant", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, suite.merchant.MerchantID).Return(&inactive, nil).Once()

	_, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *MerchantServiceTestSuite) TestDeposit_PlanWithoutMerchants() {
	ctx := context.Background()
	req := suite.request(100)
	starter := suite.branch
	starter.Plan = domain.PlanStarter

	suite.mockBranchRepo.On("FindBranchByID", ctx, suite.branchID).Return(&starter, nil).Once()

	_, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockMerchantRepo.AssertNotCalled(suite.T(), "FindMerchant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MerchantServiceTestSuite) TestDeposit_SessionClosed() {
	ctx := context.Background()
	req := suite.request(100)
	closed := suite.session
	closed.SessionStatus = domain.SessionClosed

	suite.mockBranchRepo.On("FindBranchByID", ctx, suite.branchID).Return(&suite.branch, nil).Once()
	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&closed, nil).Once()

	_, err := suite.service.Deposit(ctx, suite.teller, suite.branchID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSessionClosed)
}

func TestMerchantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MerchantServiceTestSuite))
}
