// Package fdmath implements fixed-deposit interest arithmetic. Pure
// functions, half-up rounding to 2 decimals on every monetary result.
package fdmath

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	daysPerMonth = decimal.NewFromInt(30)
)

// SimpleInterest computes I = P * r * t with r the annual rate in percent and
// t the tenure in months.
func SimpleInterest(principal, annualRatePct, tenureMonths decimal.Decimal) decimal.Decimal {
	r := annualRatePct.Div(hundred)
	t := tenureMonths.Div(twelve)
	return principal.Mul(r).Mul(t).Round(2)
}

// CompoundAmount computes A = P * (1 + r/n)^(n*t) with n compoundings per
// year and t the tenure in months. The exponent n*t may be fractional (for
// premature closures), so the power is evaluated in float64 and only the
// final monetary amount is rounded.
func CompoundAmount(principal, annualRatePct, tenureMonths decimal.Decimal, perYear int) decimal.Decimal {
	r, _ := annualRatePct.Div(hundred).Float64()
	t, _ := tenureMonths.Div(twelve).Float64()
	n := float64(perYear)
	factor := math.Pow(1+r/n, n*t)
	return principal.Mul(decimal.NewFromFloat(factor)).Round(2)
}

// CompoundInterest is CompoundAmount minus the principal.
func CompoundInterest(principal, annualRatePct, tenureMonths decimal.Decimal, perYear int) decimal.Decimal {
	return CompoundAmount(principal, annualRatePct, tenureMonths, perYear).Sub(principal)
}

// MonthsHeld converts a day count to fractional months on the 30-day
// convention used throughout the loan and FD engines.
func MonthsHeld(from, to time.Time) decimal.Decimal {
	days := int64(to.Sub(from).Hours() / 24)
	return decimal.NewFromInt(days).Div(daysPerMonth)
}

// DaysHeld counts whole days between two dates.
func DaysHeld(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// TDS computes the tax deducted at source on an interest amount.
func TDS(interest, tdsRatePct decimal.Decimal) decimal.Decimal {
	return interest.Mul(tdsRatePct).Div(hundred).Round(2)
}

// PrematurePenalty computes the penalty taken from gross interest on an
// early closure.
func PrematurePenalty(grossInterest, penaltyRatePct decimal.Decimal) decimal.Decimal {
	return grossInterest.Mul(penaltyRatePct).Div(hundred).Round(2)
}

// DailyAccrual is the simple per-day interest used by the end-of-session
// accrual batch: P * r / 365.
func DailyAccrual(principal, annualRatePct decimal.Decimal) decimal.Decimal {
	r := annualRatePct.Div(hundred)
	return principal.Mul(r).Div(decimal.NewFromInt(365)).Round(2)
}
