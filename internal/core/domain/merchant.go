package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant is a float-account abstraction: every merchant action becomes a
// balanced pair of ledger legs plus a MerchantTransaction audit row.
type Merchant struct {
	MerchantID             string          `json:"merchantID"`
	BranchID               string          `json:"branchID"`
	Name                   string          `json:"name"`
	Phone                  string          `json:"phone"`
	FloatGLNo              string          `json:"floatGLNo"`
	FloatAcNo              string          `json:"floatAcNo"`
	SingleTransactionLimit decimal.Decimal `json:"singleTransactionLimit"`
	DailyTransactionLimit  decimal.Decimal `json:"dailyTransactionLimit"`
	IsActive               bool            `json:"isActive"`
	AuditFields
}

// MerchantTrxStatus is the audit-row status.
type MerchantTrxStatus string

const (
	MerchantTrxCompleted MerchantTrxStatus = "COMPLETED"
	MerchantTrxReversed  MerchantTrxStatus = "REVERSED"
)

// MerchantTransaction is the audit row written alongside each merchant
// posting group.
type MerchantTransaction struct {
	ID         string            `json:"id"`
	MerchantID string            `json:"merchantID"`
	BranchID   string            `json:"branchID"`
	TrxNo      string            `json:"trxNo"`
	Code       TrxCode           `json:"code"` // MDP or MWD
	Amount     decimal.Decimal   `json:"amount"`
	Status     MerchantTrxStatus `json:"status"`
	TrxDate    time.Time         `json:"trxDate"`
	AuditFields
}
