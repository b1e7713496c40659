package services

import "github.com/koboledger/kobo/internal/core/domain"

// Cashier till GL from the default chart, used when seeding the branch till
// customer.
const cashierTillGL = "10101"

// seedGL is one line of the default chart installed on branch creation.
type seedGL struct {
	GLNo   string
	GLName string
}

// defaultChart is the fixed GL list seeded for every new branch. Headers end
// in zero; the hierarchy links are derived in a second pass with
// domain.ParentGLNo.
var defaultChart = []seedGL{
	// 1xxxx assets
	{"10000", "ASSETS"},
	{"10100", "CASH AND BANK"},
	{"10101", "CASHIER TILL"},
	{"10102", "VAULT CASH"},
	{"10103", "PETTY CASH"},
	{"10110", "BANK BALANCES"},
	{"10111", "CURRENT ACCOUNT - BANK"},
	{"10112", "SAVINGS ACCOUNT - BANK"},
	{"10113", "PLACEMENTS WITH BANKS"},
	{"10200", "LOAN PORTFOLIO"},
	{"10201", "MICRO LOANS"},
	{"10202", "SME LOANS"},
	{"10203", "AGRICULTURAL LOANS"},
	{"10204", "ASSET FINANCE LOANS"},
	{"10205", "STAFF LOANS"},
	{"10210", "INTEREST RECEIVABLE"},
	{"10211", "LOAN INTEREST RECEIVABLE"},
	{"10212", "FIXED DEPOSIT INTEREST RECEIVABLE"},
	{"10300", "OTHER RECEIVABLES"},
	{"10301", "PREPAYMENTS"},
	{"10302", "SUNDRY DEBTORS"},
	{"10303", "INTER-BRANCH RECEIVABLE"},
	{"10400", "FIXED ASSETS"},
	{"10401", "FURNITURE AND FITTINGS"},
	{"10402", "OFFICE EQUIPMENT"},
	{"10403", "MOTOR VEHICLES"},
	{"10404", "COMPUTER HARDWARE"},
	{"10410", "ACCUMULATED DEPRECIATION"},
	{"10500", "MERCHANT FLOAT"},
	{"10501", "AGENCY FLOAT ACCOUNT"},
	// 2xxxx liabilities
	{"20000", "LIABILITIES"},
	{"20100", "CUSTOMER DEPOSITS"},
	{"20101", "REGULAR SAVINGS"},
	{"20102", "TARGET SAVINGS"},
	{"20103", "GROUP SAVINGS"},
	{"20104", "CURRENT ACCOUNTS"},
	{"20200", "FIXED DEPOSITS"},
	{"20201", "FIXED DEPOSIT - 3 MONTHS"},
	{"20202", "FIXED DEPOSIT - 6 MONTHS"},
	{"20203", "FIXED DEPOSIT - 12 MONTHS"},
	{"20300", "UNEARNED INCOME"},
	{"20301", "UNEARNED INTEREST INCOME"},
	{"20302", "DEFERRED FEE INCOME"},
	{"20400", "TAX PAYABLE"},
	{"20401", "VAT PAYABLE"},
	{"20402", "TDS PAYABLE"},
	{"20403", "WITHHOLDING TAX PAYABLE"},
	{"20500", "OTHER PAYABLES"},
	{"20501", "SUNDRY CREDITORS"},
	{"20502", "ACCRUED EXPENSES"},
	{"20503", "INTER-BRANCH PAYABLE"},
	{"20600", "BORROWINGS"},
	{"20601", "WHOLESALE FUNDING"},
	{"20602", "ON-LENDING FACILITIES"},
	// 3xxxx equity
	{"30000", "EQUITY"},
	{"30100", "SHARE CAPITAL"},
	{"30101", "ORDINARY SHARES"},
	{"30200", "RESERVES"},
	{"30201", "STATUTORY RESERVE"},
	{"30202", "RETAINED EARNINGS"},
	{"30203", "REGULATORY RISK RESERVE"},
	// 4xxxx income
	{"40000", "INCOME"},
	{"40100", "INTEREST INCOME"},
	{"40101", "INTEREST ON MICRO LOANS"},
	{"40102", "INTEREST ON SME LOANS"},
	{"40103", "INTEREST ON AGRICULTURAL LOANS"},
	{"40104", "INTEREST ON PLACEMENTS"},
	{"40200", "FEE INCOME"},
	{"40201", "LOAN APPLICATION FEES"},
	{"40202", "ACCOUNT MAINTENANCE FEES"},
	{"40203", "COMMISSION ON TURNOVER"},
	{"40204", "SMS NOTIFICATION FEES"},
	{"40300", "PENALTY INCOME"},
	{"40301", "LATE PAYMENT PENALTIES"},
	{"40302", "FD PREMATURE WITHDRAWAL PENALTIES"},
	{"40400", "OTHER INCOME"},
	{"40401", "RECOVERIES ON WRITTEN-OFF LOANS"},
	{"40402", "MERCHANT COMMISSION INCOME"},
	// 5xxxx expenses
	{"50000", "EXPENSES"},
	{"50100", "INTEREST EXPENSE"},
	{"50101", "INTEREST ON SAVINGS"},
	{"50102", "INTEREST ON FIXED DEPOSITS"},
	{"50103", "INTEREST ON BORROWINGS"},
	{"50200", "PERSONNEL EXPENSES"},
	{"50201", "SALARIES AND WAGES"},
	{"50202", "STAFF TRAINING"},
	{"50203", "PENSION CONTRIBUTIONS"},
	{"50300", "ADMINISTRATIVE EXPENSES"},
	{"50301", "RENT AND RATES"},
	{"50302", "UTILITIES"},
	{"50303", "STATIONERY AND PRINTING"},
	{"50304", "TRANSPORT AND TRAVEL"},
	{"50400", "PROVISIONS AND WRITE-OFFS"},
	{"50401", "LOAN LOSS PROVISION"},
	{"50402", "LOANS WRITTEN OFF"},
	{"50500", "DEPRECIATION"},
	{"50501", "DEPRECIATION CHARGE"},
}

// defaultLoanBindings wires the loan product GLs seeded above.
var defaultLoanBindings = domain.LoanBindings{
	InterestGLNo:       "40101",
	IntReceivableGLNo:  "10211",
	UnearnedIntIncGLNo: "20301",
	PenGLNo:            "40301",
	AppFeeIncGLNo:      "40201",
	LoanVATGLNo:        "20401",
	WriteOffGLNo:       "50402",
	WriteOffIntGLNo:    "40401",
}

// defaultFDBindings wires the fixed-deposit product GLs seeded above.
var defaultFDBindings = domain.FDBindings{
	FixedDepIntGLNo:     "50102",
	FDIntReceivableGLNo: "10212",
	FDUnearnedIntGLNo:   "20301",
	FixedDepPenIncGLNo:  "40302",
	TDSPayableGLNo:      "20402",
}

// isLoanProductGL marks the seeded GLs that represent loan products and so
// carry the loan bindings.
func isLoanProductGL(glNo string) bool {
	switch glNo {
	case "10201", "10202", "10203", "10204", "10205":
		return true
	}
	return false
}

// isFDProductGL marks the seeded GLs that represent FD products.
func isFDProductGL(glNo string) bool {
	switch glNo {
	case "20201", "20202", "20203":
		return true
	}
	return false
}
