package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrxCode labels the transaction class of a posting group and prefixes its
// transaction number.
type TrxCode string

const (
	CodeDeposit            TrxCode = "DP"
	CodeWithdrawal         TrxCode = "WD"
	CodeLoanDisbursement   TrxCode = "LD"
	CodeLoanRepayment      TrxCode = "LP"
	CodeLoanWriteOff       TrxCode = "LW"
	CodeGeneralJournal     TrxCode = "GL"
	CodeFixedDeposit       TrxCode = "FD"
	CodeFixedDepositWdl    TrxCode = "FDW"
	CodeFixedDepositInt    TrxCode = "FDI"
	CodeInterestCalc       TrxCode = "IN"
	CodeUpload             TrxCode = "UP"
	CodeMerchantDeposit    TrxCode = "MDP"
	CodeMerchantWithdrawal TrxCode = "MWD"
)

// EntryStatus is the soft-reversal flag on a posting leg.
type EntryStatus string

const (
	EntryActive   EntryStatus = "A"
	EntryReversed EntryStatus = "H"
)

// LegType is the per-leg movement marker carried on memtrans rows.
type LegType string

const (
	LegDebit   LegType = "D"
	LegCredit  LegType = "C"
	LegLoan    LegType = "L"
	LegNominal LegType = "N"
)

// Leg is one side of a posting as submitted to the ledger engine. Amount is
// signed from the perspective of the account: positive credits it, negative
// debits it.
type Leg struct {
	GLNo         string          `json:"glNo"`
	AcNo         string          `json:"acNo"`
	Amount       decimal.Decimal `json:"amount"`
	Type         LegType         `json:"type"`
	AccountType  AccountType     `json:"accountType"`
	Description  string          `json:"description"`
	AppDate      time.Time       `json:"appDate"`
	CustBranchID string          `json:"custBranchID"` // counterparty branch; empty means owning branch
	Cycle        int             `json:"cycle"`        // loan/FD cycle, zero when not applicable
}

// Posting is one persisted memtrans leg. Rows are append-only; the only
// permitted mutation is flipping Status from A to H as part of a group
// reversal.
type Posting struct {
	PostingID    int64           `json:"postingID"`
	TrxNo        string          `json:"trxNo"`
	BranchID     string          `json:"branchID"`
	CustBranchID string          `json:"custBranchID"`
	GLNo         string          `json:"glNo"`
	AcNo         string          `json:"acNo"`
	Amount       decimal.Decimal `json:"amount"`
	Type         LegType         `json:"type"`
	AccountType  AccountType     `json:"accountType"`
	Code         TrxCode         `json:"code"`
	Description  string          `json:"description"`
	SesDate      time.Time       `json:"sesDate"`
	AppDate      time.Time       `json:"appDate"`
	SysDate      time.Time       `json:"sysDate"`
	Status       EntryStatus     `json:"status"`
	UserID       string          `json:"userID"`
	Cycle        int             `json:"cycle"`
}

// SumLegs returns the signed sum of a set of legs.
func SumLegs(legs []Leg) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range legs {
		sum = sum.Add(l.Amount)
	}
	return sum
}
