package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/alexisbanda/invercorp-backend/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavingsPlanLedger owns programmed-savings balance mutation. SaldoActual is
// denormalized, so every write to it happens inside the same store
// transaction as the deposit/withdrawal status flip it accounts for.
type SavingsPlanLedger struct {
	store store.SavingsStore
	log   *logrus.Logger

	Now func() time.Time
}

func NewSavingsPlanLedger(s store.SavingsStore, l *logrus.Logger) *SavingsPlanLedger {
	return &SavingsPlanLedger{store: s, log: l, Now: time.Now}
}

// PlanParams are the parameters of a new programmed-savings plan.
type PlanParams struct {
	Nombre    string  `json:"nombre"`
	MontoMeta float64 `json:"monto_meta"`
}

// CreatePlan assigns the next cartola number for the client from a dedicated
// counter inside the creation transaction, so two concurrent creations for
// the same client cannot collide.
func (sl *SavingsPlanLedger) CreatePlan(ctx context.Context, by models.Identity, clienteID string, p PlanParams) (*models.ProgrammedSaving, error) {
	if clienteID == "" {
		return nil, fmt.Errorf("%w: client id is required", models.ErrValidation)
	}
	if p.MontoMeta <= 0 {
		return nil, fmt.Errorf("%w: savings goal must be positive", models.ErrValidation)
	}

	var plan *models.ProgrammedSaving
	err := sl.store.InTx(ctx, func(ctx context.Context) error {
		cartola, err := sl.store.NextCartola(ctx, clienteID)
		if err != nil {
			return err
		}
		now := sl.Now()
		plan = &models.ProgrammedSaving{
			ID:            primitive.NewObjectID(),
			NumeroCartola: cartola,
			ClienteID:     clienteID,
			Nombre:        p.Nombre,
			MontoMeta:     p.MontoMeta,
			SaldoActual:   0,
			EstadoPlan:    models.PlanActivo,
			UpdatedBy:     by.Actor(),
			UpdatedAt:     now,
			CreatedAt:     now,
		}
		return sl.store.CreatePlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	sl.log.WithFields(logrus.Fields{"plan_id": plan.ID.Hex(), "cartola": plan.NumeroCartola}).Info("savings plan created")
	return plan, nil
}

// AddDeposit registers a client-submitted deposit awaiting verification. The
// balance is untouched until an admin confirms it.
func (sl *SavingsPlanLedger) AddDeposit(ctx context.Context, by models.Identity, planID primitive.ObjectID, amount float64, notes, receiptURL string) (*models.Deposit, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", models.ErrValidation)
	}
	plan, err := sl.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	dep := &models.Deposit{
		DepositID:      uuid.NewString(),
		PlanID:         plan.ID,
		ClienteID:      plan.ClienteID,
		MontoDeposito:  amount,
		EstadoDeposito: models.DepositEnVerificacion,
		Notas:          notes,
		ReceiptURL:     receiptURL,
		CreatedAt:      sl.Now(),
	}
	if err := sl.store.CreateDeposit(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

// ConfirmDeposit flips a deposit to Confirmado and applies its amount to the
// plan balance; both writes commit in one transaction or not at all.
// Confirming an already-Confirmado deposit is a no-op.
func (sl *SavingsPlanLedger) ConfirmDeposit(ctx context.Context, admin models.Identity, planID primitive.ObjectID, depositID string) (*models.ProgrammedSaving, error) {
	var plan *models.ProgrammedSaving
	err := sl.store.InTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = sl.store.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		dep, err := sl.store.GetDeposit(ctx, depositID)
		if err != nil {
			return err
		}
		if dep.PlanID != planID {
			return fmt.Errorf("%w: deposit %s does not belong to plan %s", models.ErrNotFound, depositID, planID.Hex())
		}
		if dep.EstadoDeposito.Is(models.DepositConfirmado) {
			return nil
		}
		if dep.EstadoDeposito.Is(models.DepositRechazado) {
			return fmt.Errorf("%w: deposit %s was already rejected", models.ErrValidation, depositID)
		}

		now := sl.Now()
		dep.EstadoDeposito = models.DepositConfirmado
		dep.AdminVerificadorID = admin.Actor()
		dep.FechaVerificacion = &now

		plan.SaldoActual = roundTo2Decimals(plan.SaldoActual + dep.MontoDeposito)
		plan.UpdatedBy = admin.Actor()
		plan.UpdatedAt = now

		if err := sl.store.UpdateDeposit(ctx, dep); err != nil {
			return err
		}
		return sl.store.ReplacePlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	sl.log.WithFields(logrus.Fields{"plan_id": planID.Hex(), "deposit_id": depositID}).Info("deposit confirmed")
	return plan, nil
}

// RejectDeposit records a mandatory rejection note; the balance is never
// touched. Only the deposit document changes, so no multi-document
// transaction is needed.
func (sl *SavingsPlanLedger) RejectDeposit(ctx context.Context, admin models.Identity, planID primitive.ObjectID, depositID, reason string) (*models.Deposit, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", models.ErrValidation)
	}
	dep, err := sl.store.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if dep.PlanID != planID {
		return nil, fmt.Errorf("%w: deposit %s does not belong to plan %s", models.ErrNotFound, depositID, planID.Hex())
	}
	if dep.EstadoDeposito.Is(models.DepositConfirmado) {
		return nil, fmt.Errorf("%w: deposit %s is already confirmed", models.ErrValidation, depositID)
	}

	now := sl.Now()
	dep.EstadoDeposito = models.DepositRechazado
	dep.NotaRechazo = reason
	dep.AdminVerificadorID = admin.Actor()
	dep.FechaVerificacion = &now
	if err := sl.store.UpdateDeposit(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

// AddManualDeposit is the admin over-the-counter entry: creation and
// confirmation collapsed into a single transaction, since an admin-entered
// deposit is trusted at entry time.
func (sl *SavingsPlanLedger) AddManualDeposit(ctx context.Context, admin models.Identity, planID primitive.ObjectID, amount float64, notes string) (*models.Deposit, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", models.ErrValidation)
	}
	var dep *models.Deposit
	err := sl.store.InTx(ctx, func(ctx context.Context) error {
		plan, err := sl.store.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		now := sl.Now()
		dep = &models.Deposit{
			DepositID:          uuid.NewString(),
			PlanID:             plan.ID,
			ClienteID:          plan.ClienteID,
			MontoDeposito:      amount,
			EstadoDeposito:     models.DepositConfirmado,
			Notas:              notes,
			AdminVerificadorID: admin.Actor(),
			FechaVerificacion:  &now,
			CreatedAt:          now,
		}
		if err := sl.store.CreateDeposit(ctx, dep); err != nil {
			return err
		}
		plan.SaldoActual = roundTo2Decimals(plan.SaldoActual + amount)
		plan.UpdatedBy = admin.Actor()
		plan.UpdatedAt = now
		return sl.store.ReplacePlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return dep, nil
}

// DeleteDeposit is the explicit compensating operation: deleting a Confirmado
// deposit reverses its balance contribution in the same transaction as the
// removal. Deleting an unconfirmed deposit has no balance effect.
func (sl *SavingsPlanLedger) DeleteDeposit(ctx context.Context, admin models.Identity, planID primitive.ObjectID, depositID string) error {
	return sl.store.InTx(ctx, func(ctx context.Context) error {
		dep, err := sl.store.GetDeposit(ctx, depositID)
		if err != nil {
			return err
		}
		if dep.PlanID != planID {
			return fmt.Errorf("%w: deposit %s does not belong to plan %s", models.ErrNotFound, depositID, planID.Hex())
		}
		if dep.EstadoDeposito.Is(models.DepositConfirmado) {
			plan, err := sl.store.GetPlan(ctx, planID)
			if err != nil {
				return err
			}
			plan.SaldoActual = roundTo2Decimals(plan.SaldoActual - dep.MontoDeposito)
			plan.UpdatedBy = admin.Actor()
			plan.UpdatedAt = sl.Now()
			if err := sl.store.ReplacePlan(ctx, plan); err != nil {
				return err
			}
		}
		return sl.store.DeleteDeposit(ctx, depositID)
	})
}

// RequestWithdrawal registers a client withdrawal request. Requests above the
// current balance are refused outright rather than left for processing to
// fail.
func (sl *SavingsPlanLedger) RequestWithdrawal(ctx context.Context, by models.Identity, planID primitive.ObjectID, amount float64, notes string) (*models.Withdrawal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", models.ErrValidation)
	}
	plan, err := sl.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if amount > plan.SaldoActual {
		return nil, fmt.Errorf("%w: insufficient funds, balance is %.2f", models.ErrValidation, plan.SaldoActual)
	}

	wd := &models.Withdrawal{
		WithdrawalID: uuid.NewString(),
		PlanID:       plan.ID,
		ClienteID:    plan.ClienteID,
		MontoRetiro:  amount,
		EstadoRetiro: models.WithdrawalSolicitado,
		Notas:        notes,
		CreatedAt:    sl.Now(),
	}
	if err := sl.store.CreateWithdrawal(ctx, wd); err != nil {
		return nil, err
	}
	return wd, nil
}

// ProcessWithdrawal decrements the balance and flips the withdrawal to
// Procesado in one transaction. The insufficient-funds guard re-runs here
// because the balance may have dropped since the request. Processing an
// already-Procesado withdrawal is a no-op.
func (sl *SavingsPlanLedger) ProcessWithdrawal(ctx context.Context, admin models.Identity, planID primitive.ObjectID, withdrawalID string) (*models.ProgrammedSaving, error) {
	var plan *models.ProgrammedSaving
	err := sl.store.InTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = sl.store.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		wd, err := sl.store.GetWithdrawal(ctx, withdrawalID)
		if err != nil {
			return err
		}
		if wd.PlanID != planID {
			return fmt.Errorf("%w: withdrawal %s does not belong to plan %s", models.ErrNotFound, withdrawalID, planID.Hex())
		}
		if wd.EstadoRetiro.Is(models.WithdrawalProcesado) {
			return nil
		}
		if wd.EstadoRetiro.Is(models.WithdrawalRechazado) {
			return fmt.Errorf("%w: withdrawal %s was already rejected", models.ErrValidation, withdrawalID)
		}
		if wd.MontoRetiro > plan.SaldoActual {
			return fmt.Errorf("%w: insufficient funds, balance is %.2f", models.ErrValidation, plan.SaldoActual)
		}

		now := sl.Now()
		wd.EstadoRetiro = models.WithdrawalProcesado
		wd.AdminVerificadorID = admin.Actor()
		wd.FechaProceso = &now

		plan.SaldoActual = roundTo2Decimals(plan.SaldoActual - wd.MontoRetiro)
		plan.UpdatedBy = admin.Actor()
		plan.UpdatedAt = now

		if err := sl.store.UpdateWithdrawal(ctx, wd); err != nil {
			return err
		}
		return sl.store.ReplacePlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	sl.log.WithFields(logrus.Fields{"plan_id": planID.Hex(), "withdrawal_id": withdrawalID}).Info("withdrawal processed")
	return plan, nil
}

// RejectWithdrawal refuses a pending withdrawal request with a mandatory
// reason; the balance is untouched.
func (sl *SavingsPlanLedger) RejectWithdrawal(ctx context.Context, admin models.Identity, planID primitive.ObjectID, withdrawalID, reason string) (*models.Withdrawal, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", models.ErrValidation)
	}
	wd, err := sl.store.GetWithdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if wd.PlanID != planID {
		return nil, fmt.Errorf("%w: withdrawal %s does not belong to plan %s", models.ErrNotFound, withdrawalID, planID.Hex())
	}
	if wd.EstadoRetiro.Is(models.WithdrawalProcesado) {
		return nil, fmt.Errorf("%w: withdrawal %s is already processed", models.ErrValidation, withdrawalID)
	}

	now := sl.Now()
	wd.EstadoRetiro = models.WithdrawalRechazado
	wd.NotaRechazo = reason
	wd.AdminVerificadorID = admin.Actor()
	wd.FechaProceso = &now
	if err := sl.store.UpdateWithdrawal(ctx, wd); err != nil {
		return nil, err
	}
	return wd, nil
}

// RegisterManualWithdrawal is the admin over-the-counter payout: request and
// processing collapsed into one transaction.
func (sl *SavingsPlanLedger) RegisterManualWithdrawal(ctx context.Context, admin models.Identity, planID primitive.ObjectID, amount float64, notes string) (*models.Withdrawal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", models.ErrValidation)
	}
	var wd *models.Withdrawal
	err := sl.store.InTx(ctx, func(ctx context.Context) error {
		plan, err := sl.store.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		if amount > plan.SaldoActual {
			return fmt.Errorf("%w: insufficient funds, balance is %.2f", models.ErrValidation, plan.SaldoActual)
		}
		now := sl.Now()
		wd = &models.Withdrawal{
			WithdrawalID:       uuid.NewString(),
			PlanID:             plan.ID,
			ClienteID:          plan.ClienteID,
			MontoRetiro:        amount,
			EstadoRetiro:       models.WithdrawalProcesado,
			Notas:              notes,
			AdminVerificadorID: admin.Actor(),
			FechaProceso:       &now,
			CreatedAt:          now,
		}
		if err := sl.store.CreateWithdrawal(ctx, wd); err != nil {
			return err
		}
		plan.SaldoActual = roundTo2Decimals(plan.SaldoActual - amount)
		plan.UpdatedBy = admin.Actor()
		plan.UpdatedAt = now
		return sl.store.ReplacePlan(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return wd, nil
}

// UpdatePlanStatus sets the plan lifecycle state (Activo, Pausado,
// Completado, Cancelado).
func (sl *SavingsPlanLedger) UpdatePlanStatus(ctx context.Context, by models.Identity, planID primitive.ObjectID, status models.PlanStatus) (*models.ProgrammedSaving, error) {
	switch status {
	case models.PlanActivo, models.PlanPausado, models.PlanCompletado, models.PlanCancelado:
	default:
		return nil, fmt.Errorf("%w: unknown plan status %q", models.ErrValidation, status)
	}
	plan, err := sl.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.EstadoPlan = status
	plan.UpdatedBy = by.Actor()
	plan.UpdatedAt = sl.Now()
	if err := sl.store.ReplacePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
