package domain

import "time"

// SessionStatus gates every write against a branch.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// Plan is the subscription tier controlling feature availability.
type Plan string

const (
	PlanStarter      Plan = "STARTER"
	PlanBasic        Plan = "BASIC"
	PlanPremium      Plan = "PREMIUM"
	PlanProfessional Plan = "PROFESSIONAL"
	PlanUltimate     Plan = "ULTIMATE"
	PlanEnterprise   Plan = "ENTERPRISE"
)

// AllowsFixedDeposits reports whether the plan enables the FD product.
func (p Plan) AllowsFixedDeposits() bool {
	switch p {
	case PlanPremium, PlanProfessional, PlanUltimate, PlanEnterprise:
		return true
	}
	return false
}

// AllowsMerchants reports whether the plan enables merchant float accounts.
func (p Plan) AllowsMerchants() bool {
	switch p {
	case PlanProfessional, PlanUltimate, PlanEnterprise:
		return true
	}
	return false
}

// Branch is the primary tenant. Administrative attributes live in the vendor
// database; the live session state is mirrored in the client database so that
// postings can lock it in the same transaction (see BranchSession).
type Branch struct {
	BranchID   string    `json:"branchID"`
	CompanyID  string    `json:"companyID"`
	BranchCode string    `json:"branchCode"` // 4-digit, unique
	Name       string    `json:"name"`
	Plan       Plan      `json:"plan"`
	HeadOffice bool      `json:"headOffice"`
	ExpireDate time.Time `json:"expireDate"`
	AuditFields
}

// Licensed reports whether the branch licence covers the given date.
func (b Branch) Licensed(on time.Time) bool {
	return !on.After(b.ExpireDate)
}

// BranchSession is the per-branch write gate, stored in the client database
// and locked FOR UPDATE by every posting transaction.
type BranchSession struct {
	BranchID      string        `json:"branchID"`
	SessionDate   time.Time     `json:"sessionDate"`
	SessionStatus SessionStatus `json:"sessionStatus"`
	AuditFields
}

// IsOpen reports whether writes are currently admitted.
func (s BranchSession) IsOpen() bool {
	return s.SessionStatus == SessionOpen
}
