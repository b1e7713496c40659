package dto

import (
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyLoanRequest opens a loan application against a customer account.
type ApplyLoanRequest struct {
	GLNo           string                `json:"glNo" binding:"required,glno"`
	AcNo           string                `json:"acNo" binding:"required"`
	LoanAmount     decimal.Decimal       `json:"loanAmount" binding:"required"`
	InterestRate   decimal.Decimal       `json:"interestRate" binding:"required"`
	NumInstall     int                   `json:"numInstall" binding:"required,min=1"`
	PaymentFreq    domain.PaymentFreq    `json:"paymentFreq" binding:"required"`
	InterestMethod domain.InterestMethod `json:"interestMethod" binding:"required"`
	AppliDate      time.Time             `json:"appliDate" binding:"required"`
	LoanOfficer    string                `json:"loanOfficer"`
	BusinessSector string                `json:"businessSector"`
}

// ModifyLoanRequest changes the parameters of a pending application.
// Nil means unchanged.
type ModifyLoanRequest struct {
	LoanAmount     *decimal.Decimal       `json:"loanAmount"`
	InterestRate   *decimal.Decimal       `json:"interestRate"`
	NumInstall     *int                   `json:"numInstall"`
	PaymentFreq    *domain.PaymentFreq    `json:"paymentFreq"`
	InterestMethod *domain.InterestMethod `json:"interestMethod"`
	LoanOfficer    *string                `json:"loanOfficer"`
	BusinessSector *string                `json:"businessSector"`
}

// ApproveLoanRequest approves a pending application.
type ApproveLoanRequest struct {
	ApprovalDate time.Time `json:"approvalDate" binding:"required"`
}

// DisburseLoanRequest disburses an approved loan through a cashier till.
type DisburseLoanRequest struct {
	CashierGLNo string          `json:"cashierGLNo" binding:"required,glno"`
	CashierAcNo string          `json:"cashierAcNo" binding:"required"`
	Fee         decimal.Decimal `json:"fee"`
	VAT         decimal.Decimal `json:"vat"`
	Date        time.Time       `json:"date" binding:"required"`
}

// RepayLoanRequest records a repayment with the caller's split.
type RepayLoanRequest struct {
	CashierGLNo string          `json:"cashierGLNo" binding:"required,glno"`
	CashierAcNo string          `json:"cashierAcNo" binding:"required"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Penalty     decimal.Decimal `json:"penalty"`
	AppDate     time.Time       `json:"appDate" binding:"required"`
}

// WriteOffLoanRequest writes off the remaining exposure of a live loan.
type WriteOffLoanRequest struct {
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Penalty   decimal.Decimal `json:"penalty"`
}

// LoanKey addresses one loan instance.
type LoanKey struct {
	GLNo  string `json:"glNo"`
	AcNo  string `json:"acNo"`
	Cycle int    `json:"cycle"`
}

// ScheduleRow is one amortisation installment in API responses.
type ScheduleRow struct {
	Period    int             `json:"period"`
	DueDate   time.Time       `json:"dueDate"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
	Remaining decimal.Decimal `json:"remaining"`
}
