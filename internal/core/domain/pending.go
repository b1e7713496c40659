package domain

import "time"

// PendingStatus is the maker-checker state of a staged transaction.
type PendingStatus string

const (
	PendingAwaiting PendingStatus = "PENDING"
	PendingApproved PendingStatus = "APPROVED"
	PendingRejected PendingStatus = "REJECTED"
)

// PendingTransaction stages a posting submitted by an account officer until a
// manager approves it. TrxNo is allocated at staging time and is unique
// across the staging and posted space, so approval is idempotent.
type PendingTransaction struct {
	PendingID string        `json:"pendingID"`
	BranchID  string        `json:"branchID"`
	TrxNo     string        `json:"trxNo"`
	Code      TrxCode       `json:"code"`
	Legs      []Leg         `json:"legs"`
	Status    PendingStatus `json:"status"`
	Reason    string        `json:"reason"` // rejection reason
	MakerID   string        `json:"makerID"`
	CheckerID string        `json:"checkerID"`
	DecidedAt *time.Time    `json:"decidedAt"`
	AuditFields
}
