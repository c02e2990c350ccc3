package ledger

import (
	"fmt"
	"math"

	"github.com/alexisbanda/invercorp-backend/models"
)

// Flat promotional rates by term tier. These are total rates for the whole
// term, not annualized; the 24-month tier is the reference product
// (5000 over 24 months accrues 1000 of interest).
var simulatorRateTiers = []struct {
	maxMonths int
	rate      float64
}{
	{6, 0.10},
	{12, 0.15},
	{18, 0.18},
	{24, 0.20},
}

const simulatorMaxMonths = 24

// SimulationResult is the output of the short-term promotional simulator.
// Unlike the amortization schedule, principal and interest are split evenly
// per period (flat interest, no declining balance). The two calculators are
// distinct products and must not be merged.
type SimulationResult struct {
	Amount         float64 `json:"amount"`
	TermMonths     int     `json:"term_months"`
	FlatRate       float64 `json:"flat_rate"`
	TotalInterest  float64 `json:"total_interest"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
}

func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// SimulateSimpleInterest quotes a flat-rate credit for the marketing
// simulator: totalInterest = amount * tierRate, divided evenly per month.
func SimulateSimpleInterest(amount float64, termMonths int) (*SimulationResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	if termMonths <= 0 || termMonths > simulatorMaxMonths {
		return nil, fmt.Errorf("%w: term must be between 1 and %d months", models.ErrValidation, simulatorMaxMonths)
	}

	rate := simulatorRateTiers[len(simulatorRateTiers)-1].rate
	for _, tier := range simulatorRateTiers {
		if termMonths <= tier.maxMonths {
			rate = tier.rate
			break
		}
	}

	totalInterest := amount * rate
	totalPayment := amount + totalInterest

	return &SimulationResult{
		Amount:         amount,
		TermMonths:     termMonths,
		FlatRate:       rate,
		TotalInterest:  roundTo2Decimals(totalInterest),
		MonthlyPayment: roundTo2Decimals(totalPayment / float64(termMonths)),
		TotalPayment:   roundTo2Decimals(totalPayment),
	}, nil
}
