package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is one dated line of a statement of account.
type StatementRow struct {
	PostingID   int64           `json:"postingID"`
	TrxNo       string          `json:"trxNo"`
	SesDate     time.Time       `json:"sesDate"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Running     decimal.Decimal `json:"running"`
}

// Statement is the statement of account for one (gl, ac) over a date range.
type Statement struct {
	GLNo    string          `json:"glNo"`
	AcNo    string          `json:"acNo"`
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Opening decimal.Decimal `json:"opening"`
	Rows    []StatementRow  `json:"rows"`
	Closing decimal.Decimal `json:"closing"`
}

// TrialBalanceRow is one per-GL aggregate line.
type TrialBalanceRow struct {
	GLNo        string          `json:"glNo"`
	GLName      string          `json:"glName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalance groups rows with subtotals by leading GL digit.
type TrialBalance struct {
	Rows      []TrialBalanceRow          `json:"rows"`
	Subtotals map[string]decimal.Decimal `json:"subtotals"` // keyed by leading digit
	Total     decimal.Decimal            `json:"total"`
}

// PAndLReport lists income and expense lines with the net result.
type PAndLReport struct {
	Income    []TrialBalanceRow `json:"income"`
	Expenses  []TrialBalanceRow `json:"expenses"`
	NetIncome decimal.Decimal   `json:"netIncome"`
}

// BalanceSheetReport lists asset, liability and equity lines; NetIncome is
// carried over from the P&L for the same period.
type BalanceSheetReport struct {
	Assets           []TrialBalanceRow `json:"assets"`
	Liabilities      []TrialBalanceRow `json:"liabilities"`
	Equity           []TrialBalanceRow `json:"equity"`
	TotalAssets      decimal.Decimal   `json:"totalAssets"`
	TotalLiabilities decimal.Decimal   `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal   `json:"totalEquity"`
	NetIncome        decimal.Decimal   `json:"netIncome"`
}

// TillRow is one line of a cashier till or journal listing.
type TillRow struct {
	PostingID   int64           `json:"postingID"`
	TrxNo       string          `json:"trxNo"`
	Code        TrxCode         `json:"code"`
	GLNo        string          `json:"glNo"`
	AcNo        string          `json:"acNo"`
	Description string          `json:"description"`
	SesDate     time.Time       `json:"sesDate"`
	AppDate     time.Time       `json:"appDate"`
	UserID      string          `json:"userID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Running     decimal.Decimal `json:"running"`
}

// TillSheet is a filtered journal listing with totals.
type TillSheet struct {
	Rows        []TillRow       `json:"rows"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// LoanOutstandingRow is one live loan with its exposure and arrears state.
type LoanOutstandingRow struct {
	BranchID       string          `json:"branchID"`
	GLNo           string          `json:"glNo"`
	AcNo           string          `json:"acNo"`
	Cycle          int             `json:"cycle"`
	CustomerName   string          `json:"customerName"`
	LoanAmount     decimal.Decimal `json:"loanAmount"`
	OutPrincipal   decimal.Decimal `json:"outPrincipal"`
	OutInterest    decimal.Decimal `json:"outInterest"`
	DaysOverdue    int             `json:"daysOverdue"`
	Bucket         ArrearsBucket   `json:"bucket"`
	ProvisionRate  decimal.Decimal `json:"provisionRate"`
	ProvisionValue decimal.Decimal `json:"provisionValue"`
}

// PARReport is the portfolio-at-risk summary.
type PARReport struct {
	AsOf           time.Time            `json:"asOf"`
	Loans          []LoanOutstandingRow `json:"loans"`
	TotalPortfolio decimal.Decimal      `json:"totalPortfolio"`
	AtRisk         decimal.Decimal      `json:"atRisk"`
	PARRatio       decimal.Decimal      `json:"parRatio"` // %
}

// ExpectedRepaymentRow is one schedule installment falling due in a window.
type ExpectedRepaymentRow struct {
	GLNo      string          `json:"glNo"`
	AcNo      string          `json:"acNo"`
	Cycle     int             `json:"cycle"`
	Period    int             `json:"period"`
	DueDate   time.Time       `json:"dueDate"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
}
