package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/alexisbanda/invercorp-backend/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstallmentLedger owns the lifecycle of a loan's installment schedule:
// client payment reports, admin approval/rejection and administrative
// schedule corrections. Mutations rewrite the loan document wholesale, so
// concurrent admin edits to the same loan are last-write-wins.
type InstallmentLedger struct {
	store store.LoanStore
	log   *logrus.Logger

	// Now is swapped out by tests that need a fixed clock.
	Now func() time.Time
}

func NewInstallmentLedger(s store.LoanStore, l *logrus.Logger) *InstallmentLedger {
	return &InstallmentLedger{store: s, log: l, Now: time.Now}
}

// CreateLoanParams are the parameters collected by the credit form.
type CreateLoanParams struct {
	ClientID         string                  `json:"client_id"`
	AdvisorID        string                  `json:"advisor_id"`
	LoanAmount       float64                 `json:"loan_amount"`
	InterestRate     float64                 `json:"interest_rate"`
	TermValue        int                     `json:"term_value"`
	PaymentFrequency models.PaymentFrequency `json:"payment_frequency"`
	DisbursementDate time.Time               `json:"disbursement_date"`
}

// CreateLoan computes the amortization schedule and persists the loan with
// exactly TermValue installments numbered 1..N.
func (il *InstallmentLedger) CreateLoan(ctx context.Context, by models.Identity, p CreateLoanParams) (*models.Loan, error) {
	if p.ClientID == "" {
		return nil, fmt.Errorf("%w: client id is required", models.ErrValidation)
	}
	schedule, err := ComputeSchedule(ScheduleParams{
		Principal:         p.LoanAmount,
		AnnualRatePercent: p.InterestRate,
		PeriodCount:       p.TermValue,
		Frequency:         p.PaymentFrequency,
		StartDate:         p.DisbursementDate,
	})
	if err != nil {
		return nil, err
	}

	now := il.Now()
	loan := &models.Loan{
		ID:               primitive.NewObjectID(),
		ClientID:         p.ClientID,
		AdvisorID:        p.AdvisorID,
		LoanAmount:       p.LoanAmount,
		InterestRate:     p.InterestRate,
		TermValue:        p.TermValue,
		PaymentFrequency: p.PaymentFrequency,
		DisbursementDate: p.DisbursementDate,
		Status:           models.LoanActivo,
		Installments:     schedule.Installments,
		UpdatedBy:        by.Actor(),
		UpdatedAt:        now,
		CreatedAt:        now,
	}
	loan.StatusHistory = append(loan.StatusHistory, historyEntry(models.LoanActivo, "Crédito desembolsado", by, now))

	if err := il.store.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}
	il.log.WithFields(logrus.Fields{"loan_id": loan.ID.Hex(), "client_id": p.ClientID}).Info("loan created")
	return loan, nil
}

// ReportPayment is the client-facing transition POR VENCER/VENCIDO (or a
// re-report while EN VERIFICACIÓN) into EN VERIFICACIÓN. Re-reporting simply
// overwrites the previous report; resolution is admin-gated, so no lock
// against double-reporting is needed.
func (il *InstallmentLedger) ReportPayment(ctx context.Context, by models.Identity, loanID primitive.ObjectID, number int, notes, receiptURL string) (*models.Loan, error) {
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	inst := loan.FindInstallment(number)
	if inst == nil {
		return nil, fmt.Errorf("%w: installment %d of loan %s", models.ErrNotFound, number, loanID.Hex())
	}
	if inst.Resolved() {
		return nil, fmt.Errorf("%w: installment %d is already paid", models.ErrValidation, number)
	}

	now := il.Now()
	inst.Status = models.InstallmentEnVerificacion
	inst.PaymentReportDate = &now
	inst.PaymentReportNotes = notes
	if receiptURL != "" {
		inst.ReceiptURL = receiptURL
	}
	inst.AdminNotes = ""

	loan.UpdatedBy = by.Actor()
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, err
	}
	il.log.WithFields(logrus.Fields{"loan_id": loanID.Hex(), "installment": number}).Info("payment reported")
	return loan, nil
}

// Approve marks an installment PAGADO. The canonical path is from EN
// VERIFICACIÓN, but approval from other states is tolerated as a manual
// correction. An existing payment date is preserved; otherwise the approval
// time is stamped. When the last pending installment is approved the loan
// itself transitions to COMPLETADO, which callers use to notify the client.
func (il *InstallmentLedger) Approve(ctx context.Context, by models.Identity, loanID primitive.ObjectID, number int) (*models.Loan, bool, error) {
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, false, err
	}
	inst := loan.FindInstallment(number)
	if inst == nil {
		return nil, false, fmt.Errorf("%w: installment %d of loan %s", models.ErrNotFound, number, loanID.Hex())
	}

	now := il.Now()
	inst.Status = models.InstallmentPagado
	if inst.PaymentDate == nil {
		if inst.PaymentReportDate != nil {
			inst.PaymentDate = inst.PaymentReportDate
		} else {
			inst.PaymentDate = &now
		}
	}

	completed := true
	for idx := range loan.Installments {
		if !loan.Installments[idx].Resolved() {
			completed = false
			break
		}
	}
	if completed && loan.Status != models.LoanCompletado {
		loan.Status = models.LoanCompletado
		loan.StatusHistory = append(loan.StatusHistory, historyEntry(models.LoanCompletado, "Todas las cuotas pagadas", by, now))
	}

	loan.UpdatedBy = by.Actor()
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, false, err
	}
	il.log.WithFields(logrus.Fields{"loan_id": loanID.Hex(), "installment": number, "loan_completed": completed}).Info("installment approved")
	return loan, completed, nil
}

// Reject reopens a reported installment. The reopen target depends on the
// wall clock at rejection time: VENCIDO when the due date already passed,
// POR VENCER otherwise. Report fields are cleared and the reason lands in
// the admin notes.
func (il *InstallmentLedger) Reject(ctx context.Context, by models.Identity, loanID primitive.ObjectID, number int, reason string) (*models.Loan, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", models.ErrValidation)
	}
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	inst := loan.FindInstallment(number)
	if inst == nil {
		return nil, fmt.Errorf("%w: installment %d of loan %s", models.ErrNotFound, number, loanID.Hex())
	}

	now := il.Now()
	if inst.DueDate.Before(now) {
		inst.Status = models.InstallmentVencido
	} else {
		inst.Status = models.InstallmentPorVencer
	}
	inst.PaymentReportDate = nil
	inst.PaymentReportNotes = ""
	inst.ReceiptURL = ""
	inst.AdminNotes = reason

	loan.UpdatedBy = by.Actor()
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, err
	}
	il.log.WithFields(logrus.Fields{"loan_id": loanID.Hex(), "installment": number}).Info("payment report rejected")
	return loan, nil
}

// InsertInstallment is an administrative schedule correction. Numbers at or
// above the new position shift up by one so the sequence stays contiguous.
func (il *InstallmentLedger) InsertInstallment(ctx context.Context, by models.Identity, loanID primitive.ObjectID, inst models.Installment) (*models.Loan, error) {
	if inst.Amount <= 0 {
		return nil, fmt.Errorf("%w: installment amount must be positive", models.ErrValidation)
	}
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if inst.InstallmentNumber < 1 || inst.InstallmentNumber > len(loan.Installments)+1 {
		return nil, fmt.Errorf("%w: installment number %d out of range", models.ErrValidation, inst.InstallmentNumber)
	}
	if inst.Status == "" {
		inst.Status = models.InstallmentPorVencer
	}

	for idx := range loan.Installments {
		if loan.Installments[idx].InstallmentNumber >= inst.InstallmentNumber {
			loan.Installments[idx].InstallmentNumber++
		}
	}
	loan.Installments = append(loan.Installments, inst)
	sortInstallments(loan)

	now := il.Now()
	loan.StatusHistory = append(loan.StatusHistory, historyEntry(loan.Status,
		fmt.Sprintf("Corrección manual: cuota %d insertada", inst.InstallmentNumber), by, now))
	loan.UpdatedBy = by.Actor()
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// InstallmentUpdate carries the fields an admin may correct on an existing
// installment. Nil fields are left untouched.
type InstallmentUpdate struct {
	DueDate    *time.Time                `json:"due_date,omitempty"`
	Amount     *float64                  `json:"amount,omitempty"`
	Status     *models.InstallmentStatus `json:"status,omitempty"`
	AdminNotes *string                   `json:"admin_notes,omitempty"`
}

func (il *InstallmentLedger) UpdateInstallment(ctx context.Context, by models.Identity, loanID primitive.ObjectID, number int, upd InstallmentUpdate) (*models.Loan, error) {
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	inst := loan.FindInstallment(number)
	if inst == nil {
		return nil, fmt.Errorf("%w: installment %d of loan %s", models.ErrNotFound, number, loanID.Hex())
	}
	if upd.Amount != nil {
		if *upd.Amount <= 0 {
			return nil, fmt.Errorf("%w: installment amount must be positive", models.ErrValidation)
		}
		inst.Amount = *upd.Amount
	}
	if upd.DueDate != nil {
		inst.DueDate = *upd.DueDate
	}
	if upd.Status != nil {
		inst.Status = *upd.Status
	}
	if upd.AdminNotes != nil {
		inst.AdminNotes = *upd.AdminNotes
	}

	now := il.Now()
	loan.StatusHistory = append(loan.StatusHistory, historyEntry(loan.Status,
		fmt.Sprintf("Corrección manual: cuota %d actualizada", number), by, now))
	loan.UpdatedBy = by.Actor()
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// RemoveInstallment deletes an installment and shifts the following numbers
// down by one.
func (il *InstallmentLedger) RemoveInstallment(ctx context.Context, by models.Identity, loanID primitive.ObjectID, number int) (*models.Loan, error) {
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	found := false
	kept := loan.Installments[:0]
	for _, inst := range loan.Installments {
		if inst.InstallmentNumber == number {
			found = true
			continue
		}
		if found && inst.InstallmentNumber > number {
			inst.InstallmentNumber--
		}
		kept = append(kept, inst)
	}
	if !found {
		return nil, fmt.Errorf("%w: installment %d of loan %s", models.ErrNotFound, number, loanID.Hex())
	}
	loan.Installments = kept
	sortInstallments(loan)

	now := il.Now()
	loan.StatusHistory = append(loan.StatusHistory, historyEntry(loan.Status,
		fmt.Sprintf("Corrección manual: cuota %d eliminada", number), by, now))
	loan.UpdatedBy = by.Actor()
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// RefreshOverdue derives VENCIDO for pending installments whose due date has
// passed and persists the result when anything changed.
func (il *InstallmentLedger) RefreshOverdue(ctx context.Context, loanID primitive.ObjectID) (*models.Loan, error) {
	loan, err := il.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	now := il.Now()
	changed := false
	for idx := range loan.Installments {
		inst := &loan.Installments[idx]
		effective := EffectiveInstallmentStatus(*inst, now)
		if effective != inst.Status {
			inst.Status = effective
			changed = true
		}
	}
	if !changed {
		return loan, nil
	}
	loan.UpdatedAt = now
	if err := il.store.ReplaceLoan(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// EffectiveInstallmentStatus resolves on-time vs overdue for a pending
// installment without touching storage.
func EffectiveInstallmentStatus(inst models.Installment, now time.Time) models.InstallmentStatus {
	if inst.Status.Is(models.InstallmentPorVencer) && inst.DueDate.Before(now) {
		return models.InstallmentVencido
	}
	return inst.Status
}

func sortInstallments(loan *models.Loan) {
	sort.Slice(loan.Installments, func(i, j int) bool {
		return loan.Installments[i].InstallmentNumber < loan.Installments[j].InstallmentNumber
	})
}

func historyEntry(status models.LoanStatus, notes string, by models.Identity, at time.Time) models.StatusHistoryEntry {
	return models.StatusHistoryEntry{
		EntryID:   uuid.NewString(),
		Status:    status,
		Notes:     notes,
		ChangedBy: by.Actor(),
		ChangedAt: at,
	}
}
