package domain

import "github.com/shopspring/decimal"

// CustomerLabel classifies the product an account number belongs to.
type CustomerLabel string

const (
	LabelSavings  CustomerLabel = "S"
	LabelLoan     CustomerLabel = "L"
	LabelCashier  CustomerLabel = "C"
	LabelMerchant CustomerLabel = "M"
	LabelFixedDep CustomerLabel = "F"
)

// Customer is a party holding an account, identified by the
// (branch, gl_no, ac_no) triple. Balance is a denormalised cache; the ledger
// is always authoritative.
type Customer struct {
	CustomerID  string          `json:"customerID"`
	BranchID    string          `json:"branchID"`
	GLNo        string          `json:"glNo"`
	AcNo        string          `json:"acNo"` // numeric, zero-padded, allocated max+1 per (branch, gl)
	Label       CustomerLabel   `json:"label"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	NotifySMS   bool            `json:"notifySMS"`
	NotifyEmail bool            `json:"notifyEmail"`
	Balance     decimal.Decimal `json:"balance"`
	AuditFields
}
