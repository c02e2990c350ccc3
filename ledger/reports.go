package ledger

import (
	"sort"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
)

// Reporting folds over ledgers to produce dashboard aggregates. Everything in
// this file is read-only and cacheable.

type PortfolioTotals struct {
	LoanCount        int     `json:"loan_count"`
	ActiveLoanCount  int     `json:"active_loan_count"`
	PortfolioAmount  float64 `json:"portfolio_amount"`
	OutstandingTotal float64 `json:"outstanding_total"`
	OverdueTotal     float64 `json:"overdue_total"`
}

// ComputePortfolioTotals sums non-PAGADO installment amounts (outstanding)
// and the past-due subset of those (overdue) across all loans.
func ComputePortfolioTotals(loans []*models.Loan, now time.Time) PortfolioTotals {
	var t PortfolioTotals
	t.LoanCount = len(loans)
	for _, loan := range loans {
		if loan.Status == models.LoanActivo {
			t.ActiveLoanCount++
		}
		t.PortfolioAmount = roundTo2Decimals(t.PortfolioAmount + loan.LoanAmount)
		for _, inst := range loan.Installments {
			if inst.Resolved() {
				continue
			}
			t.OutstandingTotal = roundTo2Decimals(t.OutstandingTotal + inst.Amount)
			if inst.DueDate.Before(now) {
				t.OverdueTotal = roundTo2Decimals(t.OverdueTotal + inst.Amount)
			}
		}
	}
	return t
}

type AgingBuckets struct {
	Days1To30  float64 `json:"days_1_30"`
	Days31To60 float64 `json:"days_31_60"`
	Days61To90 float64 `json:"days_61_90"`
	Over90     float64 `json:"over_90"`
}

// ComputeAgingBuckets groups overdue non-PAGADO installment amounts by days
// past due counted from now.
func ComputeAgingBuckets(loans []*models.Loan, now time.Time) AgingBuckets {
	var b AgingBuckets
	for _, loan := range loans {
		for _, inst := range loan.Installments {
			if inst.Resolved() || !inst.DueDate.Before(now) {
				continue
			}
			days := int(now.Sub(inst.DueDate).Hours() / 24)
			switch {
			case days <= 30:
				b.Days1To30 = roundTo2Decimals(b.Days1To30 + inst.Amount)
			case days <= 60:
				b.Days31To60 = roundTo2Decimals(b.Days31To60 + inst.Amount)
			case days <= 90:
				b.Days61To90 = roundTo2Decimals(b.Days61To90 + inst.Amount)
			default:
				b.Over90 = roundTo2Decimals(b.Over90 + inst.Amount)
			}
		}
	}
	return b
}

type AdvisorStats struct {
	AdvisorID     string  `json:"advisor_id"`
	ActiveLoans   int     `json:"active_loans"`
	Finalized     int     `json:"finalized"`
	Effectiveness float64 `json:"effectiveness"`
}

// ComputeAdvisorEffectiveness reports finalized / (active + finalized) * 100
// per advisor, guarding the empty denominator to 0. Loans without an advisor
// are skipped.
func ComputeAdvisorEffectiveness(loans []*models.Loan) []AdvisorStats {
	byAdvisor := make(map[string]*AdvisorStats)
	for _, loan := range loans {
		if loan.AdvisorID == "" {
			continue
		}
		stats, ok := byAdvisor[loan.AdvisorID]
		if !ok {
			stats = &AdvisorStats{AdvisorID: loan.AdvisorID}
			byAdvisor[loan.AdvisorID] = stats
		}
		switch loan.Status {
		case models.LoanCompletado:
			stats.Finalized++
		case models.LoanActivo:
			stats.ActiveLoans++
		}
	}

	out := make([]AdvisorStats, 0, len(byAdvisor))
	for _, stats := range byAdvisor {
		total := stats.ActiveLoans + stats.Finalized
		if total > 0 {
			stats.Effectiveness = roundTo2Decimals(float64(stats.Finalized) / float64(total) * 100)
		}
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdvisorID < out[j].AdvisorID })
	return out
}

type SavingsTotals struct {
	PlanCount       int     `json:"plan_count"`
	ActivePlanCount int     `json:"active_plan_count"`
	TotalSaldo      float64 `json:"total_saldo"`
	TotalMeta       float64 `json:"total_meta"`
}

func ComputeSavingsTotals(plans []*models.ProgrammedSaving) SavingsTotals {
	var t SavingsTotals
	t.PlanCount = len(plans)
	for _, plan := range plans {
		if plan.EstadoPlan == models.PlanActivo {
			t.ActivePlanCount++
		}
		t.TotalSaldo = roundTo2Decimals(t.TotalSaldo + plan.SaldoActual)
		t.TotalMeta = roundTo2Decimals(t.TotalMeta + plan.MontoMeta)
	}
	return t
}

// Dashboard is the admin portfolio view served by the reports endpoints.
type Dashboard struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Portfolio   PortfolioTotals `json:"portfolio"`
	Aging       AgingBuckets    `json:"aging"`
	Advisors    []AdvisorStats  `json:"advisors"`
	Savings     SavingsTotals   `json:"savings"`
}

func BuildDashboard(loans []*models.Loan, plans []*models.ProgrammedSaving, now time.Time) Dashboard {
	return Dashboard{
		GeneratedAt: now,
		Portfolio:   ComputePortfolioTotals(loans, now),
		Aging:       ComputeAgingBuckets(loans, now),
		Advisors:    ComputeAdvisorEffectiveness(loans),
		Savings:     ComputeSavingsTotals(plans),
	}
}
