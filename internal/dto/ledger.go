package dto

import (
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLegRequest is one leg of a general-journal posting. Amount is
// signed: positive credits the account, negative debits it.
type JournalLegRequest struct {
	GLNo         string          `json:"glNo" binding:"required,glno"`
	AcNo         string          `json:"acNo" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Type         domain.LegType  `json:"type"`
	Description  string          `json:"description" binding:"required"`
	AppDate      time.Time       `json:"appDate" binding:"required"`
	CustBranchID string          `json:"custBranchID"`
	Cycle        int             `json:"cycle"`
}

// PostJournalRequest posts a balanced multi-leg journal (code GL).
type PostJournalRequest struct {
	Legs []JournalLegRequest `json:"legs" binding:"required,min=2,dive"`
}

// PostingResponse returns the allocated transaction number.
type PostingResponse struct {
	TrxNo string `json:"trxNo"`
}

// CashTxnRequest is a deposit into or withdrawal from a customer account via
// a cashier till.
type CashTxnRequest struct {
	GLNo        string          `json:"glNo" binding:"required,glno"`
	AcNo        string          `json:"acNo" binding:"required"`
	CashierGLNo string          `json:"cashierGLNo" binding:"required,glno"`
	CashierAcNo string          `json:"cashierAcNo" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	AppDate     time.Time       `json:"appDate" binding:"required"`
}

// StatementRequest bounds a statement of account.
type StatementRequest struct {
	GLNo string    `form:"glNo" binding:"required,glno"`
	AcNo string    `form:"acNo" binding:"required"`
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}
