package store

import (
	"context"

	"github.com/alexisbanda/invercorp-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoanStore persists loans as whole documents. Installment mutations rewrite
// the loan document; concurrent admin edits are last-write-wins by contract.
type LoanStore interface {
	CreateLoan(ctx context.Context, loan *models.Loan) error
	GetLoan(ctx context.Context, id primitive.ObjectID) (*models.Loan, error)
	ReplaceLoan(ctx context.Context, loan *models.Loan) error
	ListLoans(ctx context.Context) ([]*models.Loan, error)
	ListLoansByClient(ctx context.Context, clientID string) ([]*models.Loan, error)
}

// SavingsStore persists plans, deposits and withdrawals. InTx is the atomic
// read-modify-write primitive: everything executed inside fn commits together
// or not at all. Implementations retry transient conflicts a bounded number
// of times before giving up with models.ErrConflict.
type SavingsStore interface {
	// NextCartola atomically advances the per-client plan counter. Call it
	// inside the same InTx as the plan insert so numbering stays sequential
	// under concurrent creations.
	NextCartola(ctx context.Context, clienteID string) (int, error)
	CreatePlan(ctx context.Context, plan *models.ProgrammedSaving) error
	GetPlan(ctx context.Context, id primitive.ObjectID) (*models.ProgrammedSaving, error)
	ReplacePlan(ctx context.Context, plan *models.ProgrammedSaving) error
	ListPlansByClient(ctx context.Context, clienteID string) ([]*models.ProgrammedSaving, error)
	ListPlans(ctx context.Context) ([]*models.ProgrammedSaving, error)

	CreateDeposit(ctx context.Context, dep *models.Deposit) error
	GetDeposit(ctx context.Context, depositID string) (*models.Deposit, error)
	UpdateDeposit(ctx context.Context, dep *models.Deposit) error
	DeleteDeposit(ctx context.Context, depositID string) error
	ListDeposits(ctx context.Context, planID primitive.ObjectID) ([]*models.Deposit, error)

	CreateWithdrawal(ctx context.Context, wd *models.Withdrawal) error
	GetWithdrawal(ctx context.Context, withdrawalID string) (*models.Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, wd *models.Withdrawal) error
	ListWithdrawals(ctx context.Context, planID primitive.ObjectID) ([]*models.Withdrawal, error)

	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore resolves portal users for identity stamping and notifications.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByAuthUID(ctx context.Context, uid string) (*models.User, error)
}
