package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the loan approval flag: F pending and modifiable,
// T approved, R rejected (terminal).
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "F"
	ApprovalApproved ApprovalStatus = "T"
	ApprovalRejected ApprovalStatus = "R"
)

// DisbStatus is the disbursement flag: F not disbursed, T disbursed.
type DisbStatus string

const (
	NotDisbursed DisbStatus = "F"
	Disbursed    DisbStatus = "T"
)

// InterestMethod selects the amortisation formula.
type InterestMethod string

const (
	// MethodFlat is straight-line principal: equal principal per period,
	// interest on the opening balance of each period.
	MethodFlat InterestMethod = "FLAT"
	// MethodEMI is the equal-installment annuity formula.
	MethodEMI InterestMethod = "EMI"
)

// PaymentFreq is the installment cadence.
type PaymentFreq string

const (
	FreqWeekly    PaymentFreq = "W"
	FreqMonthly   PaymentFreq = "M"
	FreqQuarterly PaymentFreq = "Q"
)

// Loan is one loan instance, keyed by (branch, gl_no, ac_no, cycle). Cycle
// auto-increments per customer account.
type Loan struct {
	LoanID           string          `json:"loanID"`
	BranchID         string          `json:"branchID"`
	GLNo             string          `json:"glNo"`
	AcNo             string          `json:"acNo"`
	Cycle            int             `json:"cycle"`
	LoanAmount       decimal.Decimal `json:"loanAmount"`
	InterestRate     decimal.Decimal `json:"interestRate"` // annual %
	NumInstall       int             `json:"numInstall"`
	PaymentFreq      PaymentFreq     `json:"paymentFreq"`
	InterestMethod   InterestMethod  `json:"interestMethod"`
	AppliDate        time.Time       `json:"appliDate"`
	ApprovalDate     *time.Time      `json:"approvalDate"`
	DisbursementDate *time.Time      `json:"disbursementDate"`
	LoanOfficer      string          `json:"loanOfficer"`
	BusinessSector   string          `json:"businessSector"`
	ApprovalStatus   ApprovalStatus  `json:"approvalStatus"`
	DisbStatus       DisbStatus      `json:"disbStatus"`
	// TotalLoan and TotalInterest are derived caches, recomputed as the sum
	// of all LoanHist rows for the loan.
	TotalLoan     decimal.Decimal `json:"totalLoan"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	CustGLNo      string          `json:"custGLNo"` // cashier GL used at disbursement
	AuditFields
}

// IsModifiable reports whether the loan still admits parameter changes.
func (l Loan) IsModifiable() bool {
	return l.ApprovalStatus == ApprovalPending && l.DisbStatus == NotDisbursed
}

// IsLive reports whether the loan is disbursed and not fully repaid.
func (l Loan) IsLive() bool {
	return l.ApprovalStatus == ApprovalApproved && l.DisbStatus == Disbursed && l.TotalLoan.GreaterThan(decimal.Zero)
}

// HistType distinguishes loan history rows.
type HistType string

const (
	HistExpected HistType = "LD" // expected installment from the schedule
	HistPayment  HistType = "LP" // repayment allocation (negative amounts)
	HistWriteOff HistType = "LW" // write-off allocation (negative amounts)
)

// LoanHist is one amortisation or allocation row, keyed by
// (gl_no, ac_no, cycle, period, trx_type).
type LoanHist struct {
	BranchID  string          `json:"branchID"`
	GLNo      string          `json:"glNo"`
	AcNo      string          `json:"acNo"`
	Cycle     int             `json:"cycle"`
	Period    int             `json:"period"`
	TrxType   HistType        `json:"trxType"`
	TrxDate   time.Time       `json:"trxDate"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Penalty   decimal.Decimal `json:"penalty"`
	TrxNo     string          `json:"trxNo"`
}

// ArrearsBucket classifies days overdue.
type ArrearsBucket string

const (
	ArrearsCurrent  ArrearsBucket = "CURRENT"  // 0 days
	ArrearsMinor    ArrearsBucket = "MINOR"    // 1-30
	ArrearsModerate ArrearsBucket = "MODERATE" // 31-90
	ArrearsSevere   ArrearsBucket = "SEVERE"   // >90
)

// BucketForDays maps a days-overdue count to its arrears bucket.
func BucketForDays(days int) ArrearsBucket {
	switch {
	case days <= 0:
		return ArrearsCurrent
	case days <= 30:
		return ArrearsMinor
	case days <= 90:
		return ArrearsModerate
	default:
		return ArrearsSevere
	}
}

// LoanProvision is one provisioning band applied to overdue loans.
type LoanProvision struct {
	ProvisionID string          `json:"provisionID"`
	BranchID    string          `json:"branchID"`
	MinDays     int             `json:"minDays"`
	MaxDays     int             `json:"maxDays"` // 0 means unbounded
	Rate        decimal.Decimal `json:"rate"`    // %
	AuditFields
}

// Covers reports whether the band applies to the given days overdue.
func (p LoanProvision) Covers(days int) bool {
	if days < p.MinDays {
		return false
	}
	return p.MaxDays == 0 || days <= p.MaxDays
}
