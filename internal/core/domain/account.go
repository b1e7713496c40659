package domain

import "strings"

// AccountType classifies a general-ledger account.
type AccountType string

const (
	Assets      AccountType = "ASSETS"
	Liabilities AccountType = "LIABILITIES"
	Equity      AccountType = "EQUITY"
	Income      AccountType = "INCOME"
	Expenses    AccountType = "EXPENSES"
)

// AccountTypeForGL derives the account type from the leading digit of a GL
// code: 1 assets, 2 liabilities, 3 equity, 4 income, 5 expenses.
func AccountTypeForGL(glNo string) AccountType {
	if glNo == "" {
		return ""
	}
	switch glNo[0] {
	case '1':
		return Assets
	case '2':
		return Liabilities
	case '3':
		return Equity
	case '4':
		return Income
	case '5':
		return Expenses
	}
	return ""
}

// DoubleEntryType restricts which side of an entry a GL may take.
type DoubleEntryType string

const (
	DebitCredit DoubleEntryType = "DEBIT_CREDIT"
	CreditOnly  DoubleEntryType = "CREDIT_ONLY"
	DebitOnly   DoubleEntryType = "DEBIT_ONLY"
)

// LoanBindings holds the GL numbers a loan product account must carry before
// any loan under it can be disbursed.
type LoanBindings struct {
	InterestGLNo       string `json:"interestGLNo"`       // interest income
	IntReceivableGLNo  string `json:"intReceivableGLNo"`  // interest receivable
	UnearnedIntIncGLNo string `json:"unearnedIntIncGLNo"` // unearned interest income
	PenGLNo            string `json:"penGLNo"`            // penalty income
	AppFeeIncGLNo      string `json:"appFeeIncGLNo"`      // application fee income
	LoanVATGLNo        string `json:"loanVATGLNo"`        // VAT payable
	WriteOffGLNo       string `json:"writeOffGLNo"`       // write-off expense
	WriteOffIntGLNo    string `json:"writeOffIntGLNo"`    // written-off interest contra
}

// MissingForDisbursement lists the binding slots a disbursement requires that
// are still empty. Fee and VAT slots are only required when used.
func (b LoanBindings) MissingForDisbursement(withFee, withVAT bool) []string {
	var missing []string
	if b.InterestGLNo == "" {
		missing = append(missing, "interest_gl")
	}
	if b.IntReceivableGLNo == "" {
		missing = append(missing, "int_receivable_gl")
	}
	if b.UnearnedIntIncGLNo == "" {
		missing = append(missing, "unearned_int_inc_gl")
	}
	if withFee && b.AppFeeIncGLNo == "" {
		missing = append(missing, "app_fee_inc_gl")
	}
	if withVAT && b.LoanVATGLNo == "" {
		missing = append(missing, "loan_vat_gl")
	}
	return missing
}

// FDBindings holds the GL numbers a fixed-deposit product account carries.
type FDBindings struct {
	FixedDepIntGLNo     string `json:"fixedDepIntGLNo"`     // FD interest expense
	FDIntReceivableGLNo string `json:"fdIntReceivableGLNo"` // interest receivable
	FDUnearnedIntGLNo   string `json:"fdUnearnedIntGLNo"`   // unearned interest income
	FixedDepPenIncGLNo  string `json:"fixedDepPenIncGLNo"`  // premature penalty income
	TDSPayableGLNo      string `json:"tdsPayableGLNo"`      // tax deducted at source
}

// Account is one line of the chart of accounts, scoped to a branch.
// (branch, gl_no) and (branch, gl_name) are unique.
type Account struct {
	AccountID       string          `json:"accountID"`
	BranchID        string          `json:"branchID"`
	GLNo            string          `json:"glNo"` // 5-char code
	GLName          string          `json:"glName"`
	AccountType     AccountType     `json:"accountType"`
	Currency        string          `json:"currency"`
	DoubleEntryType DoubleEntryType `json:"doubleEntryType"`
	HeaderGLNo      string          `json:"headerGLNo"` // parent in hierarchy, empty at top level
	Loan            LoanBindings    `json:"loan"`
	FD              FDBindings      `json:"fd"`
	AuditFields
}

// IsHeader reports whether the GL is a hierarchy header (code ends in 0).
func (a Account) IsHeader() bool {
	return strings.HasSuffix(a.GLNo, "0")
}

// ParentGLNo derives the parent of a 5-digit GL code by zeroing the longest
// non-zero suffix: 10111 -> 10110 -> 10100 -> 10000. Codes ending in 0000
// have no parent.
func ParentGLNo(glNo string) string {
	if len(glNo) != 5 {
		return ""
	}
	if strings.HasSuffix(glNo, "0000") {
		return ""
	}
	b := []byte(glNo)
	for i := len(b) - 1; i > 0; i-- {
		if b[i] != '0' {
			b[i] = '0'
			return string(b)
		}
	}
	return ""
}
