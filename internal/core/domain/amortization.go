package domain

import "github.com/shopspring/decimal"

// AmortizationResult is a repayment schedule summary computed from the
// effective principal, the annual interest rate and the term in months.
type AmortizationResult struct {
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ComputeAmortization applies the standard annuity formula
// P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate. A zero rate
// degrades to straight principal division. Results are rounded half up
// to two decimal places at the edges only.
func ComputeAmortization(principal, annualRate decimal.Decimal, termMonths int) AmortizationResult {
	term := decimal.NewFromInt(int64(termMonths))

	if annualRate.IsZero() {
		monthly := principal.Div(term).Round(2)
		total := monthly.Mul(term).Round(2)
		return AmortizationResult{
			MonthlyPayment: monthly,
			TotalAmount:    total,
			TotalInterest:  total.Sub(principal).Round(2),
		}
	}

	monthlyRate := annualRate.Div(hundred).Div(twelve)
	factor := monthlyRate.Add(decimal.NewFromInt(1)).Pow(term)
	monthly := principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))

	monthlyRounded := monthly.Round(2)
	total := monthlyRounded.Mul(term).Round(2)
	return AmortizationResult{
		MonthlyPayment: monthlyRounded,
		TotalAmount:    total,
		TotalInterest:  total.Sub(principal).Round(2),
	}
}
