package amort_test

import (
	"testing"
	"time"

	"github.com/koboledger/kobo/internal/core/domain"
	"github.com/koboledger/kobo/internal/core/services/amort"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestFlatSchedule_MonthlyDecliningInterest(t *testing.T) {
	// 100,000 at 24% over 10 monthly installments, straight-line principal.
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows, err := amort.Schedule(d("100000"), d("24"), 10, domain.FreqMonthly, domain.MethodFlat, start)
	require.NoError(t, err)
	require.Len(t, rows, 10)

	for i, row := range rows {
		assert.Equal(t, i+1, row.Period)
		assert.True(t, d("10000").Equal(row.Principal), "period %d principal", i+1)
	}
	// Interest on the opening balance at 2% per period: 2000, 1800, ..., 200.
	assert.True(t, d("2000").Equal(rows[0].Interest))
	assert.True(t, d("1800").Equal(rows[1].Interest))
	assert.True(t, d("200").Equal(rows[9].Interest))
	assert.True(t, d("11000").Equal(amort.TotalInterest(rows)))
	assert.True(t, d("100000").Equal(amort.TotalPrincipal(rows)))
	assert.True(t, rows[9].Remaining.IsZero())
}

func TestFlatSchedule_FinalRowAbsorbsResidual(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows, err := amort.Schedule(d("100000"), d("18"), 7, domain.FreqMonthly, domain.MethodFlat, start)
	require.NoError(t, err)

	// 100000/7 does not divide evenly; the last row must still close to zero.
	assert.True(t, d("100000").Equal(amort.TotalPrincipal(rows)))
	assert.True(t, rows[len(rows)-1].Remaining.IsZero())
}

func TestEMISchedule_InstallmentsEqual(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows, err := amort.Schedule(d("100000"), d("24"), 12, domain.FreqMonthly, domain.MethodEMI, start)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	// Every installment except possibly the last equals the annuity amount.
	first := rows[0].Total
	for _, row := range rows[:len(rows)-1] {
		assert.True(t, first.Equal(row.Total), "period %d", row.Period)
	}
	assert.True(t, d("100000").Equal(amort.TotalPrincipal(rows)))
	assert.True(t, rows[len(rows)-1].Remaining.IsZero())

	// EMI for P=100000, r=2%, N=12 is 9455.96.
	assert.True(t, d("9455.96").Equal(first), "got %s", first)
}

func TestSchedule_DueDateStepping(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	weekly, err := amort.Schedule(d("5000"), d("12"), 4, domain.FreqWeekly, domain.MethodFlat, start)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 7), weekly[0].DueDate)
	assert.Equal(t, start.AddDate(0, 0, 28), weekly[3].DueDate)

	quarterly, err := amort.Schedule(d("5000"), d("12"), 2, domain.FreqQuarterly, domain.MethodFlat, start)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 90), quarterly[0].DueDate)
	assert.Equal(t, start.AddDate(0, 0, 180), quarterly[1].DueDate)
}

func TestSchedule_RejectsBadInputs(t *testing.T) {
	start := time.Now()
	_, err := amort.Schedule(d("1000"), d("10"), 0, domain.FreqMonthly, domain.MethodFlat, start)
	assert.Error(t, err)

	_, err = amort.Schedule(d("0"), d("10"), 5, domain.FreqMonthly, domain.MethodFlat, start)
	assert.Error(t, err)

	_, err = amort.Schedule(d("1000"), d("-1"), 5, domain.FreqMonthly, domain.MethodFlat, start)
	assert.Error(t, err)

	_, err = amort.Schedule(d("1000"), d("10"), 5, domain.FreqMonthly, "BOGUS", start)
	assert.Error(t, err)
}

func TestEMISchedule_ZeroRate(t *testing.T) {
	start := time.Now()
	rows, err := amort.Schedule(d("1200"), d("0"), 12, domain.FreqMonthly, domain.MethodEMI, start)
	require.NoError(t, err)
	assert.True(t, amort.TotalInterest(rows).IsZero())
	assert.True(t, d("1200").Equal(amort.TotalPrincipal(rows)))
}
