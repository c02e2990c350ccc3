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

var (
	testAdmin  = models.Identity{UID: "admin-1", Email: "admin@invercorp.ec"}
	testClient = models.Identity{UID: "client-1", Email: "cliente@example.com"}
	testNow    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newTestInstallmentLedger(t *testing.T) (*InstallmentLedger, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	il := NewInstallmentLedger(mem, logrus.New())
	il.Now = func() time.Time { return testNow }
	return il, mem
}

func createTestLoan(t *testing.T, il *InstallmentLedger, term int) *models.Loan {
	t.Helper()
	loan, err := il.CreateLoan(context.Background(), testAdmin, CreateLoanParams{
		ClientID:         testClient.UID,
		AdvisorID:        "advisor-1",
		LoanAmount:       1200,
		InterestRate:     12,
		TermValue:        term,
		PaymentFrequency: models.FrequencyMensual,
		DisbursementDate: testNow,
	})
	require.NoError(t, err)
	return loan
}

func assertContiguousNumbering(t *testing.T, loan *models.Loan) {
	t.Helper()
	for idx, inst := range loan.Installments {
		assert.Equal(t, idx+1, inst.InstallmentNumber)
	}
}

func TestCreateLoan_SchedulePersisted(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 12)

	assert.Equal(t, models.LoanActivo, loan.Status)
	assert.Len(t, loan.Installments, 12)
	assertContiguousNumbering(t, loan)
	require.Len(t, loan.StatusHistory, 1)
	assert.Equal(t, testAdmin.UID, loan.StatusHistory[0].ChangedBy)
}

func TestReportPayment_MovesToVerification(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	updated, err := il.ReportPayment(context.Background(), testClient, loan.ID, 1, "transferencia #123", "https://blob/receipt.jpg")
	require.NoError(t, err)

	inst := updated.FindInstallment(1)
	require.NotNil(t, inst)
	assert.Equal(t, models.InstallmentEnVerificacion, inst.Status)
	assert.Equal(t, "transferencia #123", inst.PaymentReportNotes)
	assert.Equal(t, "https://blob/receipt.jpg", inst.ReceiptURL)
	require.NotNil(t, inst.PaymentReportDate)
	assert.Equal(t, testNow, *inst.PaymentReportDate)
}

func TestReportPayment_ReReportOverwrites(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	_, err := il.ReportPayment(context.Background(), testClient, loan.ID, 1, "primer intento", "")
	require.NoError(t, err)
	updated, err := il.ReportPayment(context.Background(), testClient, loan.ID, 1, "segundo intento", "")
	require.NoError(t, err)

	assert.Equal(t, "segundo intento", updated.FindInstallment(1).PaymentReportNotes)
}

func TestReportPayment_Failures(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	_, err := il.ReportPayment(context.Background(), testClient, loan.ID, 99, "notas", "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, _, err = il.Approve(context.Background(), testAdmin, loan.ID, 1)
	require.NoError(t, err)
	_, err = il.ReportPayment(context.Background(), testClient, loan.ID, 1, "ya pagada", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestApprove_PreservesExistingReportDate(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	_, err := il.ReportPayment(context.Background(), testClient, loan.ID, 1, "pago", "")
	require.NoError(t, err)
	updated, completed, err := il.Approve(context.Background(), testAdmin, loan.ID, 1)
	require.NoError(t, err)

	assert.False(t, completed)
	inst := updated.FindInstallment(1)
	assert.Equal(t, models.InstallmentPagado, inst.Status)
	require.NotNil(t, inst.PaymentDate)
	assert.Equal(t, testNow, *inst.PaymentDate)
}

func TestApprove_LastInstallmentCompletesLoan(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	for number := 1; number <= 2; number++ {
		updated, completed, err := il.Approve(context.Background(), testAdmin, loan.ID, number)
		require.NoError(t, err)
		assert.False(t, completed)
		assert.Equal(t, models.LoanActivo, updated.Status)
	}

	updated, completed, err := il.Approve(context.Background(), testAdmin, loan.ID, 3)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, models.LoanCompletado, updated.Status)

	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	assert.Equal(t, models.LoanCompletado, last.Status)
	assert.Equal(t, testAdmin.UID, last.ChangedBy)
}

func TestReject_ReopenTargetDependsOnDueDate(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	// Installment 1 due 2024-07-01: not yet due at testNow.
	_, err := il.ReportPayment(context.Background(), testClient, loan.ID, 1, "pago", "url")
	require.NoError(t, err)
	updated, err := il.Reject(context.Background(), testAdmin, loan.ID, 1, "comprobante ilegible")
	require.NoError(t, err)

	inst := updated.FindInstallment(1)
	assert.Equal(t, models.InstallmentPorVencer, inst.Status)
	assert.Equal(t, "comprobante ilegible", inst.AdminNotes)
	assert.Nil(t, inst.PaymentReportDate)
	assert.Empty(t, inst.PaymentReportNotes)
	assert.Empty(t, inst.ReceiptURL)

	// Push the clock past the due date: the reopen target flips to VENCIDO.
	_, err = il.ReportPayment(context.Background(), testClient, loan.ID, 1, "pago otra vez", "")
	require.NoError(t, err)
	il.Now = func() time.Time { return testNow.AddDate(0, 2, 0) }
	updated, err = il.Reject(context.Background(), testAdmin, loan.ID, 1, "monto incorrecto")
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentVencido, updated.FindInstallment(1).Status)
}

func TestReject_RequiresReason(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	_, err := il.Reject(context.Background(), testAdmin, loan.ID, 1, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestInsertRemove_KeepContiguousNumbering(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 4)

	updated, err := il.InsertInstallment(context.Background(), testAdmin, loan.ID, models.Installment{
		InstallmentNumber: 2,
		DueDate:           testNow.AddDate(0, 1, 15),
		Amount:            50,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Installments, 5)
	assertContiguousNumbering(t, updated)
	assert.Equal(t, 50.0, updated.FindInstallment(2).Amount)

	updated, err = il.RemoveInstallment(context.Background(), testAdmin, loan.ID, 3)
	require.NoError(t, err)
	assert.Len(t, updated.Installments, 4)
	assertContiguousNumbering(t, updated)

	updated, err = il.RemoveInstallment(context.Background(), testAdmin, loan.ID, 1)
	require.NoError(t, err)
	assert.Len(t, updated.Installments, 3)
	assertContiguousNumbering(t, updated)

	// Every manual correction leaves a status-history trace.
	assert.Len(t, updated.StatusHistory, 4)
}

func TestInsertInstallment_Validation(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	_, err := il.InsertInstallment(context.Background(), testAdmin, loan.ID, models.Installment{InstallmentNumber: 1, Amount: 0})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = il.InsertInstallment(context.Background(), testAdmin, loan.ID, models.Installment{InstallmentNumber: 9, Amount: 10})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateInstallment_PartialPatch(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	newAmount := 123.45
	updated, err := il.UpdateInstallment(context.Background(), testAdmin, loan.ID, 2, InstallmentUpdate{Amount: &newAmount})
	require.NoError(t, err)

	inst := updated.FindInstallment(2)
	assert.Equal(t, 123.45, inst.Amount)
	// Untouched fields survive the patch.
	assert.Equal(t, models.InstallmentPorVencer, inst.Status)
}

func TestRefreshOverdue_DerivesVencido(t *testing.T) {
	il, _ := newTestInstallmentLedger(t)
	loan := createTestLoan(t, il, 3)

	il.Now = func() time.Time { return testNow.AddDate(0, 2, 10) }
	updated, err := il.RefreshOverdue(context.Background(), loan.ID)
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentVencido, updated.FindInstallment(1).Status)
	assert.Equal(t, models.InstallmentVencido, updated.FindInstallment(2).Status)
	assert.Equal(t, models.InstallmentPorVencer, updated.FindInstallment(3).Status)
}

func TestEffectiveInstallmentStatus(t *testing.T) {
	inst := models.Installment{Status: models.InstallmentPorVencer, DueDate: testNow.AddDate(0, 0, -1)}
	assert.Equal(t, models.InstallmentVencido, EffectiveInstallmentStatus(inst, testNow))

	inst.DueDate = testNow.AddDate(0, 0, 1)
	assert.Equal(t, models.InstallmentPorVencer, EffectiveInstallmentStatus(inst, testNow))

	// Reported and paid installments are never re-derived.
	inst = models.Installment{Status: models.InstallmentEnVerificacion, DueDate: testNow.AddDate(0, 0, -30)}
	assert.Equal(t, models.InstallmentEnVerificacion, EffectiveInstallmentStatus(inst, testNow))
}
