// Package amort generates loan amortisation schedules. It is pure: no
// persistence, no clock, so the math is unit-testable in isolation.
package amort

import (
	"fmt"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Installment is one row of a generated schedule.
type Installment struct {
	Period    int
	DueDate   time.Time
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
	Remaining decimal.Decimal // principal outstanding after this installment
}

var one = decimal.NewFromInt(1)

func periodsPerYear(freq domain.PaymentFreq) int64 {
	switch freq {
	case domain.FreqWeekly:
		return 52
	case domain.FreqQuarterly:
		return 4
	default:
		return 12
	}
}

func stepDays(freq domain.PaymentFreq) int {
	switch freq {
	case domain.FreqWeekly:
		return 7
	case domain.FreqQuarterly:
		return 90
	default:
		return 30
	}
}

// Schedule generates n installments for the given principal and annual rate
// (percent), starting from the disbursement date. All monetary values are
// rounded half-up to 2 decimals; the final row absorbs the rounding residual
// so the principal column sums to the principal exactly.
func Schedule(principal, annualRatePct decimal.Decimal, n int, freq domain.PaymentFreq, method domain.InterestMethod, disbursed time.Time) ([]Installment, error) {
	if n <= 0 {
		return nil, fmt.Errorf("installment count must be positive, got %d", n)
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("principal must be positive, got %s", principal)
	}
	if annualRatePct.IsNegative() {
		return nil, fmt.Errorf("rate must not be negative, got %s", annualRatePct)
	}

	r := annualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(periodsPerYear(freq)))
	step := stepDays(freq)

	switch method {
	case domain.MethodFlat, "":
		return flatSchedule(principal, r, n, step, disbursed), nil
	case domain.MethodEMI:
		return emiSchedule(principal, r, n, step, disbursed), nil
	default:
		return nil, fmt.Errorf("unknown interest calculation method %q", method)
	}
}

// flatSchedule: equal principal per period, interest on the opening balance.
func flatSchedule(principal, r decimal.Decimal, n, step int, disbursed time.Time) []Installment {
	base := principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	remaining := principal
	rows := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		interest := remaining.Mul(r).Round(2)
		pi := base
		if i == n {
			pi = remaining // absorb rounding residual
		}
		remaining = remaining.Sub(pi)
		rows = append(rows, Installment{
			Period:    i,
			DueDate:   disbursed.AddDate(0, 0, step*i),
			Principal: pi,
			Interest:  interest,
			Total:     pi.Add(interest),
			Remaining: remaining,
		})
	}
	return rows
}

// emiSchedule: equal installment annuity. installment = P*r/(1-(1+r)^-N).
func emiSchedule(principal, r decimal.Decimal, n, step int, disbursed time.Time) []Installment {
	var installment decimal.Decimal
	if r.IsZero() {
		installment = principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	} else {
		pow := one.Add(r).Pow(decimal.NewFromInt(int64(n)))
		installment = principal.Mul(r).Mul(pow).Div(pow.Sub(one)).Round(2)
	}

	remaining := principal
	rows := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		interest := remaining.Mul(r).Round(2)
		pi := installment.Sub(interest)
		if i == n {
			pi = remaining // absorb rounding residual
		}
		remaining = remaining.Sub(pi)
		rows = append(rows, Installment{
			Period:    i,
			DueDate:   disbursed.AddDate(0, 0, step*i),
			Principal: pi,
			Interest:  interest,
			Total:     pi.Add(interest),
			Remaining: remaining,
		})
	}
	return rows
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(rows []Installment) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Interest)
	}
	return sum
}

// TotalPrincipal sums the principal column of a schedule.
func TotalPrincipal(rows []Installment) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.Principal)
	}
	return sum
}
