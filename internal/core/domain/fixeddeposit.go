package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InterestType selects the FD interest formula.
type InterestType string

const (
	InterestSimple   InterestType = "SIMPLE"
	InterestCompound InterestType = "COMPOUND"
)

// CompoundFrequency is the number of compoundings per year.
type CompoundFrequency string

const (
	CompoundMonthly    CompoundFrequency = "MONTHLY"
	CompoundQuarterly  CompoundFrequency = "QUARTERLY"
	CompoundHalfYearly CompoundFrequency = "HALF_YEARLY"
	CompoundYearly     CompoundFrequency = "YEARLY"
)

// PerYear returns the compounding count for the frequency.
func (f CompoundFrequency) PerYear() int {
	switch f {
	case CompoundMonthly:
		return 12
	case CompoundQuarterly:
		return 4
	case CompoundHalfYearly:
		return 2
	default:
		return 1
	}
}

// FDStatus is the fixed-deposit lifecycle state.
type FDStatus string

const (
	FDActive          FDStatus = "ACTIVE"
	FDMatured         FDStatus = "MATURED"
	FDClosed          FDStatus = "CLOSED"
	FDPrematureClosed FDStatus = "PREMATURE_CLOSED"
	FDRenewed         FDStatus = "RENEWED"
)

// RenewalType selects the principal of the renewed deposit.
type RenewalType string

const (
	RenewPrincipalOnly   RenewalType = "PRINCIPAL_ONLY"
	RenewWithInterest    RenewalType = "PRINCIPAL_AND_INTEREST"
	RenewCustomPrincipal RenewalType = "CUSTOM"
)

// FDProduct carries the policy knobs shared by deposits opened under it.
type FDProduct struct {
	ProductID     string          `json:"productID"`
	BranchID      string          `json:"branchID"`
	Name          string          `json:"name"`
	MinLockInDays int             `json:"minLockInDays"`
	PenaltyRate   decimal.Decimal `json:"penaltyRate"` // % of gross interest on premature closure
	TDSRate       decimal.Decimal `json:"tdsRate"`     // %
	SeniorExtra   decimal.Decimal `json:"seniorExtra"` // extra annual % for senior citizens
	AuditFields
}

// FixedDeposit is one deposit instance, keyed by
// (branch, fixed_gl_no, fixed_ac_no, cycle).
type FixedDeposit struct {
	FDID              string            `json:"fdID"`
	BranchID          string            `json:"branchID"`
	FixedGLNo         string            `json:"fixedGLNo"`
	FixedAcNo         string            `json:"fixedAcNo"`
	Cycle             int               `json:"cycle"`
	ProductID         string            `json:"productID"`
	Principal         decimal.Decimal   `json:"principal"`
	Rate              decimal.Decimal   `json:"rate"` // annual %
	TenureMonths      int               `json:"tenureMonths"`
	StartDate         time.Time         `json:"startDate"`
	MaturityDate      time.Time         `json:"maturityDate"`
	InterestType      InterestType      `json:"interestType"`
	CompoundFrequency CompoundFrequency `json:"compoundFrequency"`
	InterestOption    string            `json:"interestOption"` // payout frequency or "END"
	Status            FDStatus          `json:"status"`
	InterestAmount    decimal.Decimal   `json:"interestAmount"`
	MaturityAmount    decimal.Decimal   `json:"maturityAmount"`
	TDSApplicable     bool              `json:"tdsApplicable"`
	TDSRate           decimal.Decimal   `json:"tdsRate"`
	SeniorCitizen     bool              `json:"seniorCitizen"`
	SeniorExtraRate   decimal.Decimal   `json:"seniorExtraRate"`
	NomineeName       string            `json:"nomineeName"`
	NomineeRelation   string            `json:"nomineeRelation"`
	LienMarked        bool              `json:"lienMarked"`
	LienAmount        decimal.Decimal   `json:"lienAmount"`
	LienReference     string            `json:"lienReference"`
	CertificateNo     string            `json:"certificateNo"`
	// Customer funding account the principal was drawn from.
	CustGLNo string `json:"custGLNo"`
	CustAcNo string `json:"custAcNo"`
	AuditFields
}

// EffectiveRate is the annual rate including any senior-citizen extra.
func (fd FixedDeposit) EffectiveRate() decimal.Decimal {
	if fd.SeniorCitizen {
		return fd.Rate.Add(fd.SeniorExtraRate)
	}
	return fd.Rate
}

// Withdrawable is the principal available after any lien hold.
func (fd FixedDeposit) Withdrawable() decimal.Decimal {
	if !fd.LienMarked {
		return fd.Principal
	}
	return fd.Principal.Sub(fd.LienAmount)
}

// CertificateNumber builds the deterministic certificate number for a deposit
// once issued: FDC{branch_code}{YYYYMMDDHHMMSS}{id}.
func CertificateNumber(branchCode string, issuedAt time.Time, seq int64) string {
	return fmt.Sprintf("FDC%s%s%d", branchCode, issuedAt.Format("20060102150405"), seq)
}

// FDInterestAccrual is one daily accrual record, unique on (fd, accrual_date).
type FDInterestAccrual struct {
	AccrualID         string          `json:"accrualID"`
	FDID              string          `json:"fdID"`
	AccrualDate       time.Time       `json:"accrualDate"`
	AccruedAmount     decimal.Decimal `json:"accruedAmount"`
	CumulativeAccrued decimal.Decimal `json:"cumulativeAccrued"`
	IsPaid            bool            `json:"isPaid"`
}

// FDRenewalHistory records one renewal hand-over between deposit instances.
type FDRenewalHistory struct {
	RenewalID   string          `json:"renewalID"`
	BranchID    string          `json:"branchID"`
	OldFDID     string          `json:"oldFDID"`
	NewFDID     string          `json:"newFDID"`
	RenewalType RenewalType     `json:"renewalType"`
	Principal   decimal.Decimal `json:"principal"`
	RenewedAt   time.Time       `json:"renewedAt"`
}
