package fdmath_test

import (
	"testing"
	"time"

	"github.com/koboledger/kobo/internal/core/services/fdmath"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSimpleInterest(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    string
		want      string
	}{
		{"one year", "100000", "10", "12", "10000"},
		{"half year", "100000", "10", "6", "5000"},
		{"fractional months", "500000", "10", "3.0666666666666667", "12777.78"},
		{"zero rate", "100000", "0", "12", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fdmath.SimpleInterest(d(tt.principal), d(tt.rate), d(tt.months))
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCompoundAmount_QuarterlyYear(t *testing.T) {
	// 500,000 at 10% compounded quarterly for 12 months:
	// 500000 * (1.025)^4 = 551,906.45.
	got := fdmath.CompoundAmount(d("500000"), d("10"), d("12"), 4)
	assert.True(t, d("551906.45").Equal(got), "got %s", got)
}

func TestCompoundInterest_MonthlyBeatsYearly(t *testing.T) {
	monthly := fdmath.CompoundInterest(d("100000"), d("12"), d("12"), 12)
	yearly := fdmath.CompoundInterest(d("100000"), d("12"), d("12"), 1)
	assert.True(t, monthly.GreaterThan(yearly))
	assert.True(t, d("12000").Equal(yearly), "got %s", yearly)
}

func TestCompoundInterest_FractionalTenure(t *testing.T) {
	// Premature closure after 92 days: t = 92/30 months. The exponent is
	// fractional, the result still rounds to 2 decimals.
	months := fdmath.MonthsHeld(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
	)
	got := fdmath.CompoundInterest(d("500000"), d("10"), months, 4)
	assert.True(t, got.GreaterThan(decimal.Zero))
	assert.True(t, got.LessThan(d("13000"))) // well under a full year's interest
	assert.True(t, got.Equal(got.Round(2)))
}

func TestDaysAndMonthsHeld(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 92, fdmath.DaysHeld(from, to))
	assert.True(t, d("92").Div(d("30")).Equal(fdmath.MonthsHeld(from, to)))
}

func TestTDSAndPenalty(t *testing.T) {
	assert.True(t, d("1000").Equal(fdmath.TDS(d("10000"), d("10"))))
	assert.True(t, d("125.50").Equal(fdmath.PrematurePenalty(d("12550"), d("1"))))
}

func TestDailyAccrual(t *testing.T) {
	// 365,000 at 10%: exactly 100 per day.
	got := fdmath.DailyAccrual(d("365000"), d("10"))
	assert.True(t, d("100").Equal(got), "got %s", got)
}
