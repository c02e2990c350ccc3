package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/shopspring/decimal"
)

// Schedule is the output of the fixed-payment amortization calculator.
type Schedule struct {
	Installments    []models.Installment `json:"installments"`
	PeriodicPayment float64              `json:"periodic_payment"`
	TotalInterest   float64              `json:"total_interest"`
}

// ScheduleParams are the loan parameters the portal's credit form collects.
type ScheduleParams struct {
	Principal         float64                 `json:"principal"`
	AnnualRatePercent float64                 `json:"annual_rate_percent"`
	PeriodCount       int                     `json:"period_count"`
	Frequency         models.PaymentFrequency `json:"frequency"`
	StartDate         time.Time               `json:"start_date"`
}

// ComputeSchedule builds a declining-balance schedule with a fixed periodic
// payment (standard annuity formula). The annual rate is divided by 12, 24 or
// 52 according to frequency; due dates for Quincenal/Semanal use fixed 15/7
// day offsets. Both are documented approximations, not calendar-exact math.
//
// Monetary outputs are rounded to 2 decimals only at emission. The final
// installment absorbs the residual balance left by floating-point drift so
// the schedule sums to exactly principal plus total interest.
func ComputeSchedule(p ScheduleParams) (*Schedule, error) {
	if p.Principal <= 0 {
		return nil, fmt.Errorf("%w: principal must be positive", models.ErrValidation)
	}
	if p.PeriodCount <= 0 {
		return nil, fmt.Errorf("%w: term must be at least one period", models.ErrValidation)
	}
	if p.AnnualRatePercent < 0 {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", models.ErrValidation)
	}
	if !p.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown payment frequency %q", models.ErrValidation, p.Frequency)
	}

	periodRate := (p.AnnualRatePercent / 100) / float64(p.Frequency.PeriodsPerYear())
	n := p.PeriodCount

	principal := decimal.NewFromFloat(p.Principal)
	rate := decimal.NewFromFloat(periodRate)

	var payment decimal.Decimal
	if periodRate == 0 {
		// Pure capital amortization; also guards the annuity division below.
		payment = principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	} else {
		factor := math.Pow(1+periodRate, float64(n))
		payment = decimal.NewFromFloat(p.Principal * periodRate * factor / (factor - 1)).Round(2)
	}

	installments := make([]models.Installment, 0, n)
	remaining := principal
	totalInterest := decimal.Zero

	for period := 1; period <= n; period++ {
		interest := remaining.Mul(rate)
		principalPart := payment.Sub(interest)
		remaining = remaining.Sub(principalPart)

		amount := payment
		if period == n {
			// Fold the residual balance into the last payment.
			amount = principalPart.Add(interest).Add(remaining)
			remaining = decimal.Zero
		}
		totalInterest = totalInterest.Add(interest)

		installments = append(installments, models.Installment{
			InstallmentNumber: period,
			DueDate:           dueDate(p.StartDate, p.Frequency, period),
			Amount:            amount.Round(2).InexactFloat64(),
			InterestAmount:    interest.Round(2).InexactFloat64(),
			PrincipalAmount:   amount.Sub(interest).Round(2).InexactFloat64(),
			Status:            models.InstallmentPorVencer,
		})
	}

	return &Schedule{
		Installments:    installments,
		PeriodicPayment: payment.InexactFloat64(),
		TotalInterest:   totalInterest.Round(2).InexactFloat64(),
	}, nil
}

func dueDate(start time.Time, f models.PaymentFrequency, period int) time.Time {
	switch f {
	case models.FrequencyQuincenal:
		return start.AddDate(0, 0, 15*period)
	case models.FrequencySemanal:
		return start.AddDate(0, 0, 7*period)
	default:
		return start.AddDate(0, period, 0)
	}
}
