package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportRepo *MockReportingRepository
	mockLoanRepo   *MockLoanRepository
	mockBranchRepo *MockBranchRepository
	service        portssvc.ReportingSvcFacade
	branchID       string
	manager        domain.Principal
	asOf           time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportRepo = new(MockReportingRepository)
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockBranchRepo = new(MockBranchRepository)

	tenantSvc := services.NewTenantService(suite.mockBranchRepo)
	suite.service = services.NewReportingService(suite.mockReportRepo, suite.mockLoanRepo, tenantSvc)

	suite.branchID = uuid.NewString()
	suite.manager = domain.Principal{UserID: uuid.NewString(), BranchID: suite.branchID, Role: domain.RoleManager}
	suite.asOf = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (suite *ReportingServiceTestSuite) outstandingRows() []domain.LoanOutstandingRow {
	return []domain.LoanOutstandingRow{
		{
			BranchID:     suite.branchID,
			GLNo:         "10700",
			AcNo:         "00005",
			Cycle:        1,
			LoanAmount:   decimal.NewFromInt(12000),
			OutPrincipal: decimal.NewFromInt(9000),
			OutInterest:  decimal.NewFromInt(1170),
			DaysOverdue:  120,
		},
		{
			BranchID:     suite.branchID,
			GLNo:         "10700",
			AcNo:         "00006",
			Cycle:        1,
			LoanAmount:   decimal.NewFromInt(8000),
			OutPrincipal: decimal.NewFromInt(6000),
			OutInterest:  decimal.NewFromInt(780),
			DaysOverdue:  0,
		},
	}
}

func (suite *ReportingServiceTestSuite) provisionBands() []domain.LoanProvision {
	return []domain.LoanProvision{
		{ProvisionID: uuid.NewString(), BranchID: suite.branchID, MinDays: 1, MaxDays: 30, Rate: decimal.NewFromInt(10)},
		{ProvisionID: uuid.NewString(), BranchID: suite.branchID, MinDays: 31, MaxDays: 90, Rate: decimal.NewFromInt(25)},
		{ProvisionID: uuid.NewString(), BranchID: suite.branchID, MinDays: 91, MaxDays: 0, Rate: decimal.NewFromInt(50)},
	}
}

func (suite *ReportingServiceTestSuite) TestLoanOutstanding_BucketsAndProvisions() {
	ctx := context.Background()

	suite.mockReportRepo.On("GetLoanOutstanding", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, suite.asOf).Return(suite.outstandingRows(), nil).Once()
	suite.mockLoanRepo.On("ListProvisionBands", ctx, suite.branchID).Return(suite.provisionBands(), nil).Once()

	rows, err := suite.service.LoanOutstanding(ctx, suite.manager, suite.branchID, suite.asOf)

	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal(domain.ArrearsSevere, rows[0].Bucket)
	suite.Equal(decimal.NewFromInt(50).String(), rows[0].ProvisionRate.String())
	suite.Equal("4500", rows[0].ProvisionValue.String())
	suite.Equal(domain.ArrearsCurrent, rows[1].Bucket)
	suite.True(rows[1].ProvisionValue.IsZero())
}

func (suite *ReportingServiceTestSuite) TestPAR_OnlyOverdueLoansAtRisk() {
	ctx := context.Background()
	rows := suite.outstandingRows()
	rows[0].DaysOverdue = 15

	suite.mockReportRepo.On("GetLoanOutstanding", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, suite.asOf).Return(rows, nil).Once()
	suite.mockLoanRepo.On("ListProvisionBands", ctx, suite.branchID).Return([]domain.LoanProvision{}, nil).Once()

	report, err := suite.service.PAR(ctx, suite.manager, suite.branchID, suite.asOf)

	suite.Require().NoError(err)
	suite.Equal(decimal.NewFromInt(15000).String(), report.TotalPortfolio.String())
	suite.Equal(decimal.NewFromInt(9000).String(), report.AtRisk.String())
	suite.Equal("60", report.PARRatio.String())
	suite.Equal(domain.ArrearsMinor, report.Loans[0].Bucket)
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_SubtotalsByClass() {
	ctx := context.Background()
	from := suite.asOf.AddDate(0, -1, 0)
	rows := []domain.TrialBalanceRow{
		{GLNo: "10101", GLName: "Cashier till", AccountType: domain.Assets, Balance: decimal.NewFromInt(-500)},
		{GLNo: "20101", GLName: "Customer deposits", AccountType: domain.Liabilities, Balance: decimal.NewFromInt(300)},
		{GLNo: "40101", GLName: "Fee income", AccountType: domain.Income, Balance: decimal.NewFromInt(200)},
	}

	suite.mockReportRepo.On("GetTrialBalanceData", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, from, suite.asOf).Return(rows, nil).Once()

	tb, err := suite.service.TrialBalance(ctx, suite.manager, suite.branchID, from, suite.asOf)

	suite.Require().NoError(err)
	suite.True(tb.Total.IsZero())
	suite.Equal(decimal.NewFromInt(-500).String(), tb.Subtotals["1"].String())
	suite.Equal(decimal.NewFromInt(300).String(), tb.Subtotals["2"].String())
	suite.Equal(decimal.NewFromInt(200).String(), tb.Subtotals["4"].String())
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_NetsIncomeAndExpenses() {
	ctx := context.Background()
	from := suite.asOf.AddDate(0, -1, 0)
	rows := []domain.TrialBalanceRow{
		{GLNo: "40101", AccountType: domain.Income, Balance: decimal.NewFromInt(200)},
		{GLNo: "50101", AccountType: domain.Expenses, Balance: decimal.NewFromInt(-50)},
		{GLNo: "10101", AccountType: domain.Assets, Balance: decimal.NewFromInt(-150)},
	}

	suite.mockReportRepo.On("GetTrialBalanceData", ctx, mock.AnythingOfType("domain.TenantScope"), suite.branchID, from, suite.asOf).Return(rows, nil).Once()

	report, err := suite.service.ProfitAndLoss(ctx, suite.manager, suite.branchID, from, suite.asOf)

	suite.Require().NoError(err)
	suite.Len(report.Income, 1)
	suite.Len(report.Expenses, 1)
	suite.Equal(decimal.NewFromInt(150).String(), report.NetIncome.String())
}

func (suite *ReportingServiceTestSuite) TestTillSheet_RunningTotals() {
	ctx := context.Background()
	filter := portsrepo.JournalFilter{BranchID: suite.branchID, From: suite.asOf, To: suite.asOf}
	rows := []domain.TillRow{
		{TrxNo: "DP0000001", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{TrxNo: "DP0000002", Debit: decimal.Zero, Credit: decimal.NewFromInt(250)},
	}

	suite.mockReportRepo.On("GetTillRows", ctx, mock.AnythingOfType("domain.TenantScope"), filter).Return(rows, nil).Once()

	sheet, err := suite.service.TillSheet(ctx, suite.manager, filter)

	suite.Require().NoError(err)
	suite.Equal(decimal.NewFromInt(100).String(), sheet.TotalDebit.String())
	suite.Equal(decimal.NewFromInt(250).String(), sheet.TotalCredit.String())
	suite.Equal(decimal.NewFromInt(-100).String(), sheet.Rows[0].Running.String())
	suite.Equal(decimal.NewFromInt(150).String(), sheet.Rows[1].Running.String())
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
