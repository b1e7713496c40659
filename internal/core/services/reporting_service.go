package services

import (
	"context"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	portsrepo "github.com/koboledger/kobo/internal/core/ports/repositories"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// reportingService derives the read-side reports from ledger and loan data.
// Everything here is a pure aggregation over repository reads.
type reportingService struct {
	reportRepo portsrepo.ReportingRepository
	loanRepo   portsrepo.LoanReader
	tenantSvc  portssvc.TenantSvcFacade
}

// NewReportingService creates the reporting facade.
func NewReportingService(reportRepo portsrepo.ReportingRepository, loanRepo portsrepo.LoanReader, tenantSvc portssvc.TenantSvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportRepo: reportRepo,
		loanRepo:   loanRepo,
		tenantSvc:  tenantSvc,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

func (s *reportingService) scoped(ctx context.Context, p domain.Principal, branchID string) (domain.TenantScope, error) {
	scope, err := s.tenantSvc.ScopeFor(ctx, p)
	if err != nil {
		return domain.TenantScope{}, err
	}
	if err := requireBranch(scope, branchID); err != nil {
		return domain.TenantScope{}, err
	}
	return scope, nil
}

// TrialBalance lists per-GL debit and credit aggregates with subtotals by
// account class. A balanced book totals to zero.
func (s *reportingService) TrialBalance(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) (*domain.TrialBalance, error) {
	scope, err := s.scoped(ctx, p, branchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.GetTrialBalanceData(ctx, scope, branchID, from, to)
	if err != nil {
		return nil, err
	}

	subtotals := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, row := range rows {
		digit := ""
		if row.GLNo != "" {
			digit = row.GLNo[:1]
		}
		subtotals[digit] = subtotals[digit].Add(row.Balance)
		total = total.Add(row.Balance)
	}
	return &domain.TrialBalance{Rows: rows, Subtotals: subtotals, Total: total}, nil
}

// ProfitAndLoss splits the trial balance into income and expense lines.
// Income balances are credits (positive), expenses debits (negative), so the
// net result is simply the sum of both classes.
func (s *reportingService) ProfitAndLoss(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) (*domain.PAndLReport, error) {
	tb, err := s.TrialBalance(ctx, p, branchID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.PAndLReport{NetIncome: decimal.Zero}
	for _, row := range tb.Rows {
		switch row.AccountType {
		case domain.Income:
			report.Income = append(report.Income, row)
			report.NetIncome = report.NetIncome.Add(row.Balance)
		case domain.Expenses:
			report.Expenses = append(report.Expenses, row)
			report.NetIncome = report.NetIncome.Add(row.Balance)
		}
	}
	return report, nil
}

// BalanceSheet lists the asset, liability and equity lines and carries the
// period's net income so the statement balances.
func (s *reportingService) BalanceSheet(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) (*domain.BalanceSheetReport, error) {
	tb, err := s.TrialBalance(ctx, p, branchID, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		NetIncome:        decimal.Zero,
	}
	for _, row := range tb.Rows {
		switch row.AccountType {
		case domain.Assets:
			report.Assets = append(report.Assets, row)
			// Asset balances are debit-normal, shown positive.
			report.TotalAssets = report.TotalAssets.Add(row.Balance.Neg())
		case domain.Liabilities:
			report.Liabilities = append(report.Liabilities, row)
			report.TotalLiabilities = report.TotalLiabilities.Add(row.Balance)
		case domain.Equity:
			report.Equity = append(report.Equity, row)
			report.TotalEquity = report.TotalEquity.Add(row.Balance)
		case domain.Income, domain.Expenses:
			report.NetIncome = report.NetIncome.Add(row.Balance)
		}
	}
	return report, nil
}

// TillSheet lists the journal legs matching the filter with running totals.
func (s *reportingService) TillSheet(ctx context.Context, p domain.Principal, filter portsrepo.JournalFilter) (*domain.TillSheet, error) {
	scope, err := s.scoped(ctx, p, filter.BranchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.GetTillRows(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	sheet := &domain.TillSheet{Rows: rows, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	running := decimal.Zero
	for i := range sheet.Rows {
		sheet.TotalDebit = sheet.TotalDebit.Add(sheet.Rows[i].Debit)
		sheet.TotalCredit = sheet.TotalCredit.Add(sheet.Rows[i].Credit)
		running = running.Add(sheet.Rows[i].Credit).Sub(sheet.Rows[i].Debit)
		sheet.Rows[i].Running = running
	}
	return sheet, nil
}

// LoanOutstanding lists live loans with exposure, arrears bucket and the
// applicable provision band.
func (s *reportingService) LoanOutstanding(ctx context.Context, p domain.Principal, branchID string, asOf time.Time) ([]domain.LoanOutstandingRow, error) {
	scope, err := s.scoped(ctx, p, branchID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.GetLoanOutstanding(ctx, scope, branchID, asOf)
	if err != nil {
		return nil, err
	}

	bands, err := s.loanRepo.ListProvisionBands(ctx, branchID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Bucket = domain.BucketForDays(rows[i].DaysOverdue)
		for _, band := range bands {
			if band.Covers(rows[i].DaysOverdue) {
				rows[i].ProvisionRate = band.Rate
				rows[i].ProvisionValue = rows[i].OutPrincipal.Mul(band.Rate).Div(hundred).Round(2)
				break
			}
		}
	}
	return rows, nil
}

// PAR summarises the portfolio at risk: the share of outstanding principal on
// loans with any overdue installment.
func (s *reportingService) PAR(ctx context.Context, p domain.Principal, branchID string, asOf time.Time) (*domain.PARReport, error) {
	rows, err := s.LoanOutstanding(ctx, p, branchID, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.PARReport{
		AsOf:           asOf,
		Loans:          rows,
		TotalPortfolio: decimal.Zero,
		AtRisk:         decimal.Zero,
		PARRatio:       decimal.Zero,
	}
	for _, row := range rows {
		report.TotalPortfolio = report.TotalPortfolio.Add(row.OutPrincipal)
		if row.DaysOverdue > 0 {
			report.AtRisk = report.AtRisk.Add(row.OutPrincipal)
		}
	}
	if report.TotalPortfolio.IsPositive() {
		report.PARRatio = report.AtRisk.Mul(hundred).Div(report.TotalPortfolio).Round(2)
	}
	return report, nil
}

// ExpectedRepayments lists the schedule installments falling due in a window.
func (s *reportingService) ExpectedRepayments(ctx context.Context, p domain.Principal, branchID string, from, to time.Time) ([]domain.ExpectedRepaymentRow, error) {
	scope, err := s.scoped(ctx, p, branchID)
	if err != nil {
		return nil, err
	}
	return s.loanRepo.ListDueInstallments(ctx, scope, []string{branchID}, from, to)
}
