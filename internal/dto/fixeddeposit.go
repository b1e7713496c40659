package dto

import (
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFDProductRequest registers a deposit product with its policy knobs.
type CreateFDProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	MinLockInDays int             `json:"minLockInDays" binding:"min=0"`
	PenaltyRate   decimal.Decimal `json:"penaltyRate"`
	TDSRate       decimal.Decimal `json:"tdsRate"`
	SeniorExtra   decimal.Decimal `json:"seniorExtra"`
}

// OpenFDRequest opens a fixed deposit funded from a customer account.
type OpenFDRequest struct {
	FixedGLNo         string                   `json:"fixedGLNo" binding:"required,glno"`
	CustGLNo          string                   `json:"custGLNo" binding:"required,glno"`
	CustAcNo          string                   `json:"custAcNo" binding:"required"`
	ProductID         string                   `json:"productID"`
	Principal         decimal.Decimal          `json:"principal" binding:"required"`
	Rate              decimal.Decimal          `json:"rate" binding:"required"`
	TenureMonths      int                      `json:"tenureMonths" binding:"required,min=1"`
	StartDate         time.Time                `json:"startDate" binding:"required"`
	InterestType      domain.InterestType      `json:"interestType" binding:"required"`
	CompoundFrequency domain.CompoundFrequency `json:"compoundFrequency"`
	InterestOption    string                   `json:"interestOption"`
	TDSApplicable     bool                     `json:"tdsApplicable"`
	TDSRate           decimal.Decimal          `json:"tdsRate"`
	SeniorCitizen     bool                     `json:"seniorCitizen"`
	SeniorExtraRate   decimal.Decimal          `json:"seniorExtraRate"`
	NomineeName       string                   `json:"nomineeName"`
	NomineeRelation   string                   `json:"nomineeRelation"`
}

// PrematureFDRequest closes a deposit before maturity.
type PrematureFDRequest struct {
	AsOf        time.Time       `json:"asOf" binding:"required"`
	PenaltyRate decimal.Decimal `json:"penaltyRate"`
}

// RenewFDRequest rolls a matured deposit into a new instance.
type RenewFDRequest struct {
	RenewalType     domain.RenewalType `json:"renewalType" binding:"required"`
	CustomPrincipal decimal.Decimal    `json:"customPrincipal"`
	TenureMonths    int                `json:"tenureMonths" binding:"required,min=1"`
	Rate            decimal.Decimal    `json:"rate" binding:"required"`
}

// LienRequest marks a lien on a deposit.
type LienRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference" binding:"required"`
}
