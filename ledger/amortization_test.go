package ledger

import (
	"testing"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scheduleStart = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestComputeSchedule_StandardAnnuity(t *testing.T) {
	schedule, err := ComputeSchedule(ScheduleParams{
		Principal:         1000,
		AnnualRatePercent: 12,
		PeriodCount:       12,
		Frequency:         models.FrequencyMensual,
		StartDate:         scheduleStart,
	})
	require.NoError(t, err)
	require.Len(t, schedule.Installments, 12)

	assert.InDelta(t, 88.85, schedule.PeriodicPayment, 0.005)
	assert.InDelta(t, 10.00, schedule.Installments[0].InterestAmount, 0.005)

	// Interest declines every period on the falling balance.
	for i := 1; i < 12; i++ {
		assert.Less(t, schedule.Installments[i].InterestAmount, schedule.Installments[i-1].InterestAmount)
	}

	// The schedule sums to exactly principal plus total interest.
	var total float64
	for _, inst := range schedule.Installments {
		total += inst.Amount
	}
	assert.InDelta(t, 1000+schedule.TotalInterest, total, 0.011)
}

func TestComputeSchedule_SumMatchesPrincipalPlusInterest(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		freq      models.PaymentFrequency
	}{
		{"small weekly", 350.50, 18, 8, models.FrequencySemanal},
		{"quincenal", 2500, 22.5, 24, models.FrequencyQuincenal},
		{"long monthly", 15000, 9.9, 48, models.FrequencyMensual},
		{"single period", 800, 15, 1, models.FrequencyMensual},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schedule, err := ComputeSchedule(ScheduleParams{
				Principal:         tc.principal,
				AnnualRatePercent: tc.rate,
				PeriodCount:       tc.term,
				Frequency:         tc.freq,
				StartDate:         scheduleStart,
			})
			require.NoError(t, err)
			require.Len(t, schedule.Installments, tc.term)

			var total float64
			for _, inst := range schedule.Installments {
				total += inst.Amount
			}
			assert.InDelta(t, tc.principal+schedule.TotalInterest, total, 0.011)
		})
	}
}

func TestComputeSchedule_ZeroRate(t *testing.T) {
	schedule, err := ComputeSchedule(ScheduleParams{
		Principal:         1000,
		AnnualRatePercent: 0,
		PeriodCount:       12,
		Frequency:         models.FrequencyMensual,
		StartDate:         scheduleStart,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, schedule.TotalInterest)
	var total float64
	for i, inst := range schedule.Installments {
		assert.Equal(t, 0.0, inst.InterestAmount)
		if i < len(schedule.Installments)-1 {
			assert.InDelta(t, 1000.0/12, inst.Amount, 0.005)
		}
		total += inst.Amount
	}
	// The final installment absorbs the residual cents.
	assert.InDelta(t, 1000, total, 0.005)
}

func TestComputeSchedule_DueDates(t *testing.T) {
	monthly, err := ComputeSchedule(ScheduleParams{
		Principal: 1200, AnnualRatePercent: 10, PeriodCount: 3,
		Frequency: models.FrequencyMensual, StartDate: scheduleStart,
	})
	require.NoError(t, err)
	assert.Equal(t, scheduleStart.AddDate(0, 1, 0), monthly.Installments[0].DueDate)
	assert.Equal(t, scheduleStart.AddDate(0, 3, 0), monthly.Installments[2].DueDate)

	weekly, err := ComputeSchedule(ScheduleParams{
		Principal: 1200, AnnualRatePercent: 10, PeriodCount: 4,
		Frequency: models.FrequencySemanal, StartDate: scheduleStart,
	})
	require.NoError(t, err)
	assert.Equal(t, scheduleStart.AddDate(0, 0, 7), weekly.Installments[0].DueDate)
	assert.Equal(t, scheduleStart.AddDate(0, 0, 28), weekly.Installments[3].DueDate)

	quincenal, err := ComputeSchedule(ScheduleParams{
		Principal: 1200, AnnualRatePercent: 10, PeriodCount: 2,
		Frequency: models.FrequencyQuincenal, StartDate: scheduleStart,
	})
	require.NoError(t, err)
	assert.Equal(t, scheduleStart.AddDate(0, 0, 15), quincenal.Installments[0].DueDate)
	assert.Equal(t, scheduleStart.AddDate(0, 0, 30), quincenal.Installments[1].DueDate)
}

func TestComputeSchedule_InvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		params ScheduleParams
	}{
		{"zero principal", ScheduleParams{Principal: 0, PeriodCount: 12, Frequency: models.FrequencyMensual}},
		{"zero term", ScheduleParams{Principal: 1000, PeriodCount: 0, Frequency: models.FrequencyMensual}},
		{"negative rate", ScheduleParams{Principal: 1000, AnnualRatePercent: -1, PeriodCount: 12, Frequency: models.FrequencyMensual}},
		{"unknown frequency", ScheduleParams{Principal: 1000, PeriodCount: 12, Frequency: "Diario"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeSchedule(tc.params)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestSimulateSimpleInterest_ReferenceProduct(t *testing.T) {
	result, err := SimulateSimpleInterest(5000, 24)
	require.NoError(t, err)

	assert.Equal(t, 0.20, result.FlatRate)
	assert.Equal(t, 1000.0, result.TotalInterest)
	assert.Equal(t, 250.0, result.MonthlyPayment)
	assert.Equal(t, 6000.0, result.TotalPayment)
}

func TestSimulateSimpleInterest_TierSelection(t *testing.T) {
	cases := []struct {
		months int
		rate   float64
	}{
		{3, 0.10}, {6, 0.10}, {7, 0.15}, {12, 0.15}, {18, 0.18}, {19, 0.20}, {24, 0.20},
	}
	for _, tc := range cases {
		result, err := SimulateSimpleInterest(1000, tc.months)
		require.NoError(t, err)
		assert.Equal(t, tc.rate, result.FlatRate, "months=%d", tc.months)
	}
}

func TestSimulateSimpleInterest_InvalidInput(t *testing.T) {
	_, err := SimulateSimpleInterest(0, 12)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = SimulateSimpleInterest(1000, 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = SimulateSimpleInterest(1000, 25)
	assert.ErrorIs(t, err, models.ErrValidation)
}
