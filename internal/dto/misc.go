package dto

import (
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LoginRequest authenticates a branch user.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token and the resolved principal.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Principal domain.Principal `json:"principal"`
}

// CreateMerchantRequest registers a merchant float under a branch. Zero
// limits disable the matching check.
type CreateMerchantRequest struct {
	Name                   string          `json:"name" binding:"required"`
	Phone                  string          `json:"phone"`
	FloatGLNo              string          `json:"floatGLNo" binding:"required,glno"`
	FloatAcNo              string          `json:"floatAcNo" binding:"required"`
	SingleTransactionLimit decimal.Decimal `json:"singleTransactionLimit"`
	DailyTransactionLimit  decimal.Decimal `json:"dailyTransactionLimit"`
}

// MerchantTxnRequest moves value between a merchant float and a customer.
type MerchantTxnRequest struct {
	MerchantID  string          `json:"merchantID" binding:"required"`
	CustGLNo    string          `json:"custGLNo" binding:"required,glno"`
	CustAcNo    string          `json:"custAcNo" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// SubmitPendingRequest stages a posting for approval.
type SubmitPendingRequest struct {
	Code domain.TrxCode      `json:"code" binding:"required"`
	Legs []JournalLegRequest `json:"legs" binding:"required,min=2,dive"`
}

// RejectPendingRequest rejects a staged posting with a reason.
type RejectPendingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdvanceSessionRequest moves a branch to the next business date.
type AdvanceSessionRequest struct {
	NextDate time.Time `json:"nextDate" binding:"required"`
	// RunBatches triggers end-of-session processing (FD accrual, maturity
	// marking) before the date moves.
	RunBatches bool `json:"runBatches"`
}

// CreateBranchRequest registers a branch under a company (vendor admin).
type CreateBranchRequest struct {
	CompanyID   string      `json:"companyID" binding:"required"`
	BranchCode  string      `json:"branchCode" binding:"required,len=4,numeric"`
	Name        string      `json:"name" binding:"required"`
	Plan        domain.Plan `json:"plan" binding:"required"`
	HeadOffice  bool        `json:"headOffice"`
	ExpireDate  time.Time   `json:"expireDate" binding:"required"`
	SessionDate time.Time   `json:"sessionDate" binding:"required"`
}

// CreateCompanyRequest registers a tenant group (vendor admin).
type CreateCompanyRequest struct {
	Name       string    `json:"name" binding:"required"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	ExpireDate time.Time `json:"expireDate" binding:"required"`
}
