package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/alexisbanda/invercorp-backend/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSavingsLedger(t *testing.T) (*SavingsPlanLedger, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	sl := NewSavingsPlanLedger(mem, logrus.New())
	sl.Now = func() time.Time { return testNow }
	return sl, mem
}

func createTestPlan(t *testing.T, sl *SavingsPlanLedger) *models.ProgrammedSaving {
	t.Helper()
	plan, err := sl.CreatePlan(context.Background(), testClient, testClient.UID, PlanParams{
		Nombre:    "Ahorro navideño",
		MontoMeta: 1200,
	})
	require.NoError(t, err)
	return plan
}

// assertBalanceInvariant recomputes the balance from confirmed deposits and
// processed withdrawals and checks it against the stored SaldoActual.
func assertBalanceInvariant(t *testing.T, mem *store.MemoryStore, plan *models.ProgrammedSaving) {
	t.Helper()
	stored, err := mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)

	deps, err := mem.ListDeposits(context.Background(), plan.ID)
	require.NoError(t, err)
	wds, err := mem.ListWithdrawals(context.Background(), plan.ID)
	require.NoError(t, err)

	var expected float64
	for _, dep := range deps {
		if dep.EstadoDeposito.Is(models.DepositConfirmado) {
			expected += dep.MontoDeposito
		}
	}
	for _, wd := range wds {
		if wd.EstadoRetiro.Is(models.WithdrawalProcesado) {
			expected -= wd.MontoRetiro
		}
	}
	assert.InDelta(t, expected, stored.SaldoActual, 0.005)
}

func TestCreatePlan_SequentialCartolas(t *testing.T) {
	sl, _ := newTestSavingsLedger(t)

	first := createTestPlan(t, sl)
	second := createTestPlan(t, sl)
	assert.Equal(t, 1, first.NumeroCartola)
	assert.Equal(t, 2, second.NumeroCartola)
	assert.Equal(t, models.PlanActivo, first.EstadoPlan)
	assert.Equal(t, 0.0, first.SaldoActual)

	// A different client starts its own sequence.
	other, err := sl.CreatePlan(context.Background(), testAdmin, "client-2", PlanParams{MontoMeta: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, other.NumeroCartola)
}

func TestCreatePlan_Validation(t *testing.T) {
	sl, _ := newTestSavingsLedger(t)

	_, err := sl.CreatePlan(context.Background(), testClient, "", PlanParams{MontoMeta: 100})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = sl.CreatePlan(context.Background(), testClient, testClient.UID, PlanParams{MontoMeta: 0})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestConfirmDeposit_AppliesBalance(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	dep, err := sl.AddDeposit(context.Background(), testClient, plan.ID, 100, "ventanilla", "")
	require.NoError(t, err)
	assert.Equal(t, models.DepositEnVerificacion, dep.EstadoDeposito)

	// Reporting alone never moves the balance.
	stored, err := mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.SaldoActual)

	updated, err := sl.ConfirmDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.SaldoActual)

	confirmed, err := mem.GetDeposit(context.Background(), dep.DepositID)
	require.NoError(t, err)
	assert.Equal(t, models.DepositConfirmado, confirmed.EstadoDeposito)
	assert.Equal(t, testAdmin.UID, confirmed.AdminVerificadorID)
	require.NotNil(t, confirmed.FechaVerificacion)

	assertBalanceInvariant(t, mem, plan)
}

func TestConfirmDeposit_Idempotent(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	dep, err := sl.AddDeposit(context.Background(), testClient, plan.ID, 100, "", "")
	require.NoError(t, err)

	_, err = sl.ConfirmDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID)
	require.NoError(t, err)
	updated, err := sl.ConfirmDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, updated.SaldoActual)
	assertBalanceInvariant(t, mem, plan)
}

func TestRejectDeposit_NoBalanceChange(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	dep, err := sl.AddDeposit(context.Background(), testClient, plan.ID, 75, "", "")
	require.NoError(t, err)

	_, err = sl.RejectDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	rejected, err := sl.RejectDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID, "sin comprobante")
	require.NoError(t, err)
	assert.Equal(t, models.DepositRechazado, rejected.EstadoDeposito)
	assert.Equal(t, "sin comprobante", rejected.NotaRechazo)

	stored, err := mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.SaldoActual)

	// Both decisions are terminal and one-way.
	_, err = sl.ConfirmDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAddManualDeposit_ConfirmsImmediately(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	dep, err := sl.AddManualDeposit(context.Background(), testAdmin, plan.ID, 250, "efectivo en oficina")
	require.NoError(t, err)
	assert.Equal(t, models.DepositConfirmado, dep.EstadoDeposito)
	assert.Equal(t, testAdmin.UID, dep.AdminVerificadorID)

	stored, err := mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stored.SaldoActual)
	assertBalanceInvariant(t, mem, plan)
}

func TestDeleteDeposit_ReversesConfirmedBalance(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	_, err := sl.AddManualDeposit(context.Background(), testAdmin, plan.ID, 40, "")
	require.NoError(t, err)
	dep, err := sl.AddDeposit(context.Background(), testClient, plan.ID, 100, "", "")
	require.NoError(t, err)
	_, err = sl.ConfirmDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID)
	require.NoError(t, err)

	require.NoError(t, sl.DeleteDeposit(context.Background(), testAdmin, plan.ID, dep.DepositID))

	stored, err := mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, stored.SaldoActual)
	assertBalanceInvariant(t, mem, plan)

	// The unconfirmed path has no balance effect.
	pending, err := sl.AddDeposit(context.Background(), testClient, plan.ID, 999, "", "")
	require.NoError(t, err)
	require.NoError(t, sl.DeleteDeposit(context.Background(), testAdmin, plan.ID, pending.DepositID))
	stored, err = mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, stored.SaldoActual)
}

func TestRequestWithdrawal_InsufficientFunds(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	_, err := sl.AddManualDeposit(context.Background(), testAdmin, plan.ID, 300, "")
	require.NoError(t, err)

	_, err = sl.RequestWithdrawal(context.Background(), testClient, plan.ID, 500, "emergencia")
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := mem.GetPlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.SaldoActual)
}

func TestProcessWithdrawal_DecrementsBalance(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	_, err := sl.AddManualDeposit(context.Background(), testAdmin, plan.ID, 300, "")
	require.NoError(t, err)
	wd, err := sl.RequestWithdrawal(context.Background(), testClient, plan.ID, 120, "")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalSolicitado, wd.EstadoRetiro)

	updated, err := sl.ProcessWithdrawal(context.Background(), testAdmin, plan.ID, wd.WithdrawalID)
	require.NoError(t, err)
	assert.Equal(t, 180.0, updated.SaldoActual)

	// Processing twice is a no-op.
	updated, err = sl.ProcessWithdrawal(context.Background(), testAdmin, plan.ID, wd.WithdrawalID)
	require.NoError(t, err)
	assert.Equal(t, 180.0, updated.SaldoActual)
	assertBalanceInvariant(t, mem, plan)
}

func TestProcessWithdrawal_GuardReRunsAtProcessing(t *testing.T) {
	sl, _ := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	_, err := sl.AddManualDeposit(context.Background(), testAdmin, plan.ID, 300, "")
	require.NoError(t, err)
	wd, err := sl.RequestWithdrawal(context.Background(), testClient, plan.ID, 200, "")
	require.NoError(t, err)

	// Another payout drains the plan before this one is processed.
	_, err = sl.RegisterManualWithdrawal(context.Background(), testAdmin, plan.ID, 250, "")
	require.NoError(t, err)

	_, err = sl.ProcessWithdrawal(context.Background(), testAdmin, plan.ID, wd.WithdrawalID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBalanceInvariant_MixedSequence(t *testing.T) {
	sl, mem := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)
	ctx := context.Background()

	d1, err := sl.AddDeposit(ctx, testClient, plan.ID, 100, "", "")
	require.NoError(t, err)
	d2, err := sl.AddDeposit(ctx, testClient, plan.ID, 55.55, "", "")
	require.NoError(t, err)
	d3, err := sl.AddDeposit(ctx, testClient, plan.ID, 20, "", "")
	require.NoError(t, err)

	_, err = sl.ConfirmDeposit(ctx, testAdmin, plan.ID, d1.DepositID)
	require.NoError(t, err)
	_, err = sl.ConfirmDeposit(ctx, testAdmin, plan.ID, d2.DepositID)
	require.NoError(t, err)
	_, err = sl.RejectDeposit(ctx, testAdmin, plan.ID, d3.DepositID, "duplicado")
	require.NoError(t, err)
	_, err = sl.AddManualDeposit(ctx, testAdmin, plan.ID, 44.45, "")
	require.NoError(t, err)

	wd, err := sl.RequestWithdrawal(ctx, testClient, plan.ID, 60, "")
	require.NoError(t, err)
	_, err = sl.ProcessWithdrawal(ctx, testAdmin, plan.ID, wd.WithdrawalID)
	require.NoError(t, err)

	require.NoError(t, sl.DeleteDeposit(ctx, testAdmin, plan.ID, d2.DepositID))

	stored, err := mem.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100+44.45-60, stored.SaldoActual, 0.005)
	assertBalanceInvariant(t, mem, plan)
}

func TestUpdatePlanStatus(t *testing.T) {
	sl, _ := newTestSavingsLedger(t)
	plan := createTestPlan(t, sl)

	updated, err := sl.UpdatePlanStatus(context.Background(), testAdmin, plan.ID, models.PlanPausado)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPausado, updated.EstadoPlan)

	_, err = sl.UpdatePlanStatus(context.Background(), testAdmin, plan.ID, "Congelado")
	assert.ErrorIs(t, err, models.ErrValidation)
}
