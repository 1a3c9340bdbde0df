package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

// annuity is an independent float64 rendition of the repayment formula
// used to cross check the decimal implementation.
func annuity(principal, annualRate float64, termMonths int) float64 {
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / float64(termMonths)
	}
	f := math.Pow(1+r, float64(termMonths))
	return principal * r * f / (f - 1)
}

func TestComputeAmortizationAgainstFormula(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{10000, 8.00, 12},
		{50000, 15.00, 24},
		{1000, 8.00, 1},
		{250000, 12.50, 60},
		{7500, 5.25, 6},
	}
	for _, tc := range cases {
		got := ComputeAmortization(
			decimal.NewFromFloat(tc.principal),
			decimal.NewFromFloat(tc.rate),
			tc.term,
		)
		want := annuity(tc.principal, tc.rate, tc.term)
		gotF, _ := got.MonthlyPayment.Float64()
		if math.Abs(gotF-want) > 0.01 {
			t.Errorf("principal=%v rate=%v term=%d: monthly=%v want ~%.4f",
				tc.principal, tc.rate, tc.term, got.MonthlyPayment, want)
		}
	}
}

func TestComputeAmortizationZeroRate(t *testing.T) {
	got := ComputeAmortization(decimal.NewFromInt(12000), decimal.Zero, 12)
	if !got.MonthlyPayment.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("monthly = %v, want 1000", got.MonthlyPayment)
	}
	if !got.TotalInterest.IsZero() {
		t.Errorf("total interest = %v, want 0", got.TotalInterest)
	}
	if !got.TotalAmount.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("total = %v, want 12000", got.TotalAmount)
	}
}

func TestComputeAmortizationProperties(t *testing.T) {
	principal := decimal.NewFromInt(30000)
	got := ComputeAmortization(principal, DefaultInterestRate, 36)

	if got.TotalAmount.LessThan(principal) {
		t.Errorf("total %v less than principal %v", got.TotalAmount, principal)
	}
	expectedTotal := got.MonthlyPayment.Mul(decimal.NewFromInt(36))
	if !got.TotalAmount.Equal(expectedTotal.Round(2)) {
		t.Errorf("total %v != monthly*term %v", got.TotalAmount, expectedTotal)
	}
	if !got.TotalInterest.Equal(got.TotalAmount.Sub(principal).Round(2)) {
		t.Errorf("interest %v inconsistent with total %v", got.TotalInterest, got.TotalAmount)
	}
}
