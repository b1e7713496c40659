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

type FDServiceTestSuite struct {
	suite.Suite
	mockFDRepo      *MockFDRepository
	mockAccountRepo *MockAccountRepository
	mockBranchRepo  *MockBranchRepository
	mockSessionRepo *MockSessionRepository
	mockLedgerSvc   *MockLedgerService
	notifier        *stubNotifier
	service         portssvc.FDSvcFacade
	branchID        string
	teller          domain.Principal
	sessionDate     time.Time
	session         domain.BranchSession
	branch          domain.Branch
	productAccount  domain.Account
}

func (suite *FDServiceTestSuite) SetupTest() {
	suite.mockFDRepo = new(MockFDRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockBranchRepo = new(MockBranchRepository)
	suite.mockSessionRepo = new(MockSessionRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.notifier = &stubNotifier{}

	tenantSvc := services.NewTenantService(suite.mockBranchRepo)
	suite.service = services.NewFDService(suite.mockFDRepo, suite.mockAccountRepo, suite.mockBranchRepo, suite.mockSessionRepo, suite.mockLedgerSvc, tenantSvc, suite.notifier)

	suite.branchID = uuid.NewString()
	suite.teller = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleTeller}
	suite.sessionDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	suite.session = domain.BranchSession{
		BranchID:      suite.branchID,
		SessionDate:   suite.sessionDate,
		SessionStatus: domain.SessionOpen,
	}
	suite.branch = domain.Branch{BranchID: suite.branchID, BranchCode: "0001", Plan: domain.PlanUltimate}
	suite.productAccount = domain.Account{
		BranchID: suite.branchID,
		GLNo:     "20201",
		FD: domain.FDBindings{
			FixedDepIntGLNo:     "50102",
			FDIntReceivableGLNo: "10212",
			FDUnearnedIntGLNo:   "20301",
			FixedDepPenIncGLNo:  "40302",
			TDSPayableGLNo:      "20402",
		},
	}
}

func (suite *FDServiceTestSuite) expectAuthorize() {
	ctx := context.Background()
	suite.mockBranchRepo.On("FindBranchByID", ctx, suite.branchID).Return(&suite.branch, nil).Once()
	suite.mockSessionRepo.On("FindSession", ctx, suite.branchID).Return(&suite.session, nil).Once()
}

func (suite *FDServiceTestSuite) openRequest() dto.OpenFDRequest {
	return dto.OpenFDRequest{
		FixedGLNo:    "20201",
		CustGLNo:     "20101",
		CustAcNo:     "00042",
		Principal:    decimal.NewFromInt(100000),
		Rate:         decimal.NewFromInt(10),
		TenureMonths: 12,
		StartDate:    suite.sessionDate,
		InterestType: domain.InterestSimple,
	}
}

func (suite *FDServiceTestSuite) activeDeposit() *domain.FixedDeposit {
	return &domain.FixedDeposit{
		FDID:           uuid.NewString(),
		BranchID:       suite.branchID,
		FixedGLNo:      "20201",
		FixedAcNo:      "00042",
		Cycle:          1,
		Principal:      decimal.NewFromInt(100000),
		Rate:           decimal.NewFromInt(10),
		TenureMonths:   12,
		StartDate:      suite.sessionDate.AddDate(0, 0, -90),
		MaturityDate:   suite.sessionDate.AddDate(0, 9, 0),
		InterestType:   domain.InterestSimple,
		Status:         domain.FDActive,
		InterestAmount: decimal.NewFromInt(10000),
		CertificateNo:  "FDC000120251210000000001",
		CustGLNo:       "20101",
		CustAcNo:       "00042",
	}
}

func (suite *FDServiceTestSuite) TestOpen_PostsFundingAndUnearnedPair() {
	ctx := context.Background()
	req := suite.openRequest()

	suite.expectAuthorize()
	suite.mockAccountRepo.On("FindAccountByGL", ctx, suite.branchID, "20201").Return(&suite.productAccount, nil).Once()
	suite.mockLedgerSvc.On("Balance", ctx, suite.teller, suite.branchID, "20101", "00042", mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(150000), nil).Once()
	suite.mockFDRepo.On("NextDepositCycle", ctx, suite.branchID, "20201", "00042").Return(1, nil).Once()
	suite.mockFDRepo.On("OpenDeposit", ctx,
		mock.MatchedBy(func(fd domain.FixedDeposit) bool {
			return fd.InterestAmount.Equal(decimal.NewFromInt(10000)) &&
				fd.MaturityAmount.Equal(decimal.NewFromInt(110000)) &&
				fd.Status == domain.FDActive
		}),
		mock.MatchedBy(func(legs []domain.Leg) bool {
			return len(legs) == 4 && domain.SumLegs(legs).IsZero() &&
				legs[2].GLNo == "10212" && legs[2].Amount.Equal(decimal.NewFromInt(-10000)) &&
				legs[3].GLNo == "20301" && legs[3].Amount.Equal(decimal.NewFromInt(10000))
		}),
	).Return("FD0000001", nil).Once()

	fd, err := suite.service.Open(ctx, suite.teller, suite.branchID, req)

	suite.Require().NoError(err)
	suite.Equal(decimal.NewFromInt(10000).String(), fd.InterestAmount.String())
	suite.Equal([]string{"fd.opened"}, suite.notifier.events)
	suite.mockFDRepo.AssertExpectations(suite.T())
}

func (suite *FDServiceTestSuite) TestOpen_MissingBindingsRefused() {
	ctx := context.Background()
	bare := suite.productAccount
	bare.FD.FDIntReceivableGLNo = ""

	suite.expectAuthorize()
	suite.mockAccountRepo.On("FindAccountByGL", ctx, suite.branchID, "20201").Return(&bare, nil).Once()
	suite.mockLedgerSvc.On("Balance", ctx, suite.teller, suite.branchID, "20101", "00042", mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(150000), nil).Once()
	suite.mockFDRepo.On("NextDepositCycle", ctx, suite.branchID, "20201", "00042").Return(1, nil).Once()

	_, err := suite.service.Open(ctx, suite.teller, suite.branchID, suite.openRequest())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrLoanParametersMissing)
	suite.mockFDRepo.AssertNotCalled(suite.T(), "OpenDeposit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FDServiceTestSuite) TestOpen_InsufficientFunds() {
	ctx := context.Background()

	suite.expectAuthorize()
	suite.mockAccountRepo.On("FindAccountByGL", ctx, suite.branchID, "20201").Return(&suite.productAccount, nil).Once()
	suite.mockLedgerSvc.On("Balance", ctx, suite.teller, suite.branchID, "20101", "00042", mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(5000), nil).Once()

	_, err := suite.service.Open(ctx, suite.teller, suite.branchID, suite.openRequest())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockFDRepo.AssertNotCalled(suite.T(), "OpenDeposit", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FDServiceTestSuite) TestWithdraw_BeforeMaturityRefused() {
	ctx := context.Background()
	fd := suite.activeDeposit()

	suite.expectAuthorize()
	suite.mockFDRepo.On("FindDeposit", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, fd.FDID).Return(fd, nil).Once()

	_, err := suite.service.Withdraw(ctx, suite.teller, suite.branchID, fd.FDID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
	suite.mockFDRepo.AssertNotCalled(suite.T(), "CloseDeposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FDServiceTestSuite) TestWithdraw_LienRefused() {
	ctx := context.Background()
	fd := suite.activeDeposit()
	fd.Status = domain.FDMatured
	fd.LienMarked = true
	fd.LienReference = "court order 42"

	suite.expectAuthorize()
	suite.mockFDRepo.On("FindDeposit", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, fd.FDID).Return(fd, nil).Once()

	_, err := suite.service.Withdraw(ctx, suite.teller, suite.branchID, fd.FDID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
}

func (suite *FDServiceTestSuite) TestPrematureWithdraw_PenaltyTaken() {
	ctx := context.Background()
	fd := suite.activeDeposit()
	req := dto.PrematureFDRequest{AsOf: suite.sessionDate, PenaltyRate: decimal.NewFromInt(2)}

	suite.expectAuthorize()
	suite.mockFDRepo.On("FindDeposit", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, fd.FDID).Return(fd, nil).Once()
	suite.mockAccountRepo.On("FindAccountByGL", ctx, suite.branchID, "20201").Return(&suite.productAccount, nil).Once()
	// 90 days held: interest 2500 at the declared simple rate, penalty 2%.
	suite.mockFDRepo.On("CloseDeposit", ctx,
		mock.MatchedBy(func(closed domain.FixedDeposit) bool {
			return closed.Status == domain.FDPrematureClosed &&
				closed.InterestAmount.Equal(decimal.NewFromInt(2450)) &&
				closed.MaturityAmount.Equal(decimal.NewFromInt(102450))
		}),
		mock.MatchedBy(func(legs []domain.Leg) bool {
			return len(legs) == 4 && domain.SumLegs(legs).IsZero() &&
				legs[3].GLNo == "40302" && legs[3].Amount.Equal(decimal.NewFromInt(50))
		}),
		domain.CodeFixedDepositWdl,
	).Return("FDW0000004", nil).Once()

	trxNo, err := suite.service.PrematureWithdraw(ctx, suite.teller, suite.branchID, fd.FDID, req)

	suite.Require().NoError(err)
	suite.Equal("FDW0000004", trxNo)
	suite.mockFDRepo.AssertExpectations(suite.T())
}

func (suite *FDServiceTestSuite) TestPrematureWithdraw_LockInWithoutProduct() {
	ctx := context.Background()
	fd := suite.activeDeposit()
	fd.StartDate = suite.sessionDate.AddDate(0, 0, -3)

	suite.expectAuthorize()
	suite.mockFDRepo.On("FindDeposit", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, fd.FDID).Return(fd, nil).Once()

	_, err := suite.service.PrematureWithdraw(ctx, suite.teller, suite.branchID, fd.FDID, dto.PrematureFDRequest{AsOf: suite.sessionDate})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
	suite.mockFDRepo.AssertNotCalled(suite.T(), "CloseDeposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FDServiceTestSuite) TestPrematureWithdraw_ProductLockInApplies() {
	ctx := context.Background()
	fd := suite.activeDeposit()
	fd.ProductID = uuid.NewString()
	fd.StartDate = suite.sessionDate.AddDate(0, 0, -20)
	product := &domain.FDProduct{ProductID: fd.ProductID, BranchID: suite.branchID, MinLockInDays: 30}

	suite.expectAuthorize()
	suite.mockFDRepo.On("FindDeposit", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, fd.FDID).Return(fd, nil).Once()
	suite.mockFDRepo.On("FindProduct", ctx, suite.branchID, fd.ProductID).Return(product, nil).Once()

	_, err := suite.service.PrematureWithdraw(ctx, suite.teller, suite.branchID, fd.FDID, dto.PrematureFDRequest{AsOf: suite.sessionDate})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
}

func (suite *FDServiceTestSuite) TestRenew_PrincipalAndInterest() {
	ctx := context.Background()
	old := suite.activeDeposit()
	old.Status = domain.FDMatured
	req := dto.RenewFDRequest{
		RenewalType:  domain.RenewWithInterest,
		TenureMonths: 12,
		Rate:         decimal.NewFromInt(10),
	}

	suite.expectAuthorize()
	suite.mockFDRepo.On("FindDeposit", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, old.FDID).Return(old, nil).Once()
	suite.mockAccountRepo.On("FindAccountByGL", ctx, suite.branchID, "20201").Return(&suite.productAccount, nil).Once()
	suite.mockFDRepo.On("NextDepositCycle", ctx, suite.branchID, "20201", "00042").Return(2, nil).Once()
	suite.mockFDRepo.On("OpenDeposit", ctx,
		mock.MatchedBy(func(fd domain.FixedDeposit) bool {
			return fd.Cycle == 2 && fd.Principal.Equal(decimal.NewFromInt(110000))
		}),
		mock.MatchedBy(func(legs []domain.Leg) bool {
			return len(legs) == 5 && domain.SumLegs(legs).IsZero() &&
				legs[2].Amount.Equal(decimal.NewFromInt(110000))
		}),
	).Return("FD0000002", nil).Once()
	suite.mockFDRepo.On("UpdateDeposit", ctx, mock.MatchedBy(func(fd domain.FixedDeposit) bool {
		return fd.FDID == old.FDID && fd.Status == domain.FDRenewed
	})).Return(nil).Once()
	suite.mockFDRepo.On("SaveRenewal", ctx, mock.MatchedBy(func(h domain.FDRenewalHistory) bool {
		return h.OldFDID == old.FDID && h.RenewalType == domain.RenewWithInterest &&
			h.Principal.Equal(decimal.NewFromInt(110000))
	})).Return(nil).Once()

	renewed, err := suite.service.Renew(ctx, suite.teller, suite.branchID, old.FDID, req)

	suite.Require().NoError(err)
	suite.Equal(decimal.NewFromInt(110000).String(), renewed.Principal.String())
	suite.mockFDRepo.AssertExpectations(suite.T())
}

func (suite *FDServiceTestSuite) TestAccrueDaily_SkipsAccruedDeposits() {
	ctx := context.Background()
	fresh := *suite.activeDeposit()
	accrued := *suite.activeDeposit()
	accrued.FDID = uuid.NewString()

	suite.mockFDRepo.On("ListActiveDeposits", ctx, suite.branchID).Return([]domain.FixedDeposit{fresh, accrued}, nil).Once()
	suite.mockFDRepo.On("LastAccrual", ctx, fresh.FDID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFDRepo.On("LastAccrual", ctx, accrued.FDID).Return(&domain.FDInterestAccrual{
		FDID:        accrued.FDID,
		AccrualDate: suite.sessionDate,
	}, nil).Once()
	suite.mockFDRepo.On("SaveAccrual", ctx, mock.MatchedBy(func(a domain.FDInterestAccrual) bool {
		return a.FDID == fresh.FDID && a.AccrualDate.Equal(suite.sessionDate) &&
			a.AccruedAmount.Equal(decimal.RequireFromString("27.40"))
	})).Return(nil).Once()

	count, err := suite.service.AccrueDaily(ctx, suite.branchID, suite.sessionDate)

	suite.Require().NoError(err)
	suite.Equal(1, count)
	suite.mockFDRepo.AssertExpectations(suite.T())
}

func TestFDServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FDServiceTestSuite))
}
