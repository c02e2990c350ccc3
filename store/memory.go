package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbanda/invercorp-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory implementation of LoanStore, SavingsStore and
// UserStore used by tests and local development. Documents are copied on the
// way in and out so callers never alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	loans       map[primitive.ObjectID]*models.Loan
	plans       map[primitive.ObjectID]*models.ProgrammedSaving
	deposits    map[string]*models.Deposit
	withdrawals map[string]*models.Withdrawal
	counters    map[string]int
	users       map[primitive.ObjectID]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		loans:       make(map[primitive.ObjectID]*models.Loan),
		plans:       make(map[primitive.ObjectID]*models.ProgrammedSaving),
		deposits:    make(map[string]*models.Deposit),
		withdrawals: make(map[string]*models.Withdrawal),
		counters:    make(map[string]int),
		users:       make(map[primitive.ObjectID]*models.User),
	}
}

// InTx serializes transactional sections against each other. Individual
// operations stay atomic under the document mutex, so fn observes a stable
// view for the read-modify-write cycles the ledgers run.
func (m *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func copyLoan(l *models.Loan) *models.Loan {
	dup := *l
	dup.Installments = append([]models.Installment(nil), l.Installments...)
	dup.StatusHistory = append([]models.StatusHistoryEntry(nil), l.StatusHistory...)
	return &dup
}

func (m *MemoryStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan.ID == primitive.NilObjectID {
		loan.ID = primitive.NewObjectID()
	}
	m.loans[loan.ID] = copyLoan(loan)
	return nil
}

func (m *MemoryStore) GetLoan(ctx context.Context, id primitive.ObjectID) (*models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loan, ok := m.loans[id]
	if !ok {
		return nil, fmt.Errorf("%w: loan %s", models.ErrNotFound, id.Hex())
	}
	return copyLoan(loan), nil
}

func (m *MemoryStore) ReplaceLoan(ctx context.Context, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return fmt.Errorf("%w: loan %s", models.ErrNotFound, loan.ID.Hex())
	}
	m.loans[loan.ID] = copyLoan(loan)
	return nil
}

func (m *MemoryStore) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Loan, 0, len(m.loans))
	for _, loan := range m.loans {
		out = append(out, copyLoan(loan))
	}
	return out, nil
}

func (m *MemoryStore) ListLoansByClient(ctx context.Context, clientID string) ([]*models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Loan
	for _, loan := range m.loans {
		if loan.ClientID == clientID {
			out = append(out, copyLoan(loan))
		}
	}
	return out, nil
}

func (m *MemoryStore) NextCartola(ctx context.Context, clienteID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[clienteID]++
	return m.counters[clienteID], nil
}

func copyPlan(p *models.ProgrammedSaving) *models.ProgrammedSaving {
	dup := *p
	return &dup
}

func (m *MemoryStore) CreatePlan(ctx context.Context, plan *models.ProgrammedSaving) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	m.plans[plan.ID] = copyPlan(plan)
	return nil
}

func (m *MemoryStore) GetPlan(ctx context.Context, id primitive.ObjectID) (*models.ProgrammedSaving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: plan %s", models.ErrNotFound, id.Hex())
	}
	return copyPlan(plan), nil
}

func (m *MemoryStore) ReplacePlan(ctx context.Context, plan *models.ProgrammedSaving) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[plan.ID]; !ok {
		return fmt.Errorf("%w: plan %s", models.ErrNotFound, plan.ID.Hex())
	}
	m.plans[plan.ID] = copyPlan(plan)
	return nil
}

func (m *MemoryStore) ListPlansByClient(ctx context.Context, clienteID string) ([]*models.ProgrammedSaving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.ProgrammedSaving
	for _, plan := range m.plans {
		if plan.ClienteID == clienteID {
			out = append(out, copyPlan(plan))
		}
	}
	return out, nil
}

func (m *MemoryStore) ListPlans(ctx context.Context) ([]*models.ProgrammedSaving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.ProgrammedSaving, 0, len(m.plans))
	for _, plan := range m.plans {
		out = append(out, copyPlan(plan))
	}
	return out, nil
}

func (m *MemoryStore) CreateDeposit(ctx context.Context, dep *models.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dup := *dep
	m.deposits[dep.DepositID] = &dup
	return nil
}

func (m *MemoryStore) GetDeposit(ctx context.Context, depositID string) (*models.Deposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dep, ok := m.deposits[depositID]
	if !ok {
		return nil, fmt.Errorf("%w: deposit %s", models.ErrNotFound, depositID)
	}
	dup := *dep
	return &dup, nil
}

func (m *MemoryStore) UpdateDeposit(ctx context.Context, dep *models.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deposits[dep.DepositID]; !ok {
		return fmt.Errorf("%w: deposit %s", models.ErrNotFound, dep.DepositID)
	}
	dup := *dep
	m.deposits[dep.DepositID] = &dup
	return nil
}

func (m *MemoryStore) DeleteDeposit(ctx context.Context, depositID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deposits[depositID]; !ok {
		return fmt.Errorf("%w: deposit %s", models.ErrNotFound, depositID)
	}
	delete(m.deposits, depositID)
	return nil
}

func (m *MemoryStore) ListDeposits(ctx context.Context, planID primitive.ObjectID) ([]*models.Deposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Deposit
	for _, dep := range m.deposits {
		if dep.PlanID == planID {
			dup := *dep
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateWithdrawal(ctx context.Context, wd *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dup := *wd
	m.withdrawals[wd.WithdrawalID] = &dup
	return nil
}

func (m *MemoryStore) GetWithdrawal(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wd, ok := m.withdrawals[withdrawalID]
	if !ok {
		return nil, fmt.Errorf("%w: withdrawal %s", models.ErrNotFound, withdrawalID)
	}
	dup := *wd
	return &dup, nil
}

func (m *MemoryStore) UpdateWithdrawal(ctx context.Context, wd *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.withdrawals[wd.WithdrawalID]; !ok {
		return fmt.Errorf("%w: withdrawal %s", models.ErrNotFound, wd.WithdrawalID)
	}
	dup := *wd
	m.withdrawals[wd.WithdrawalID] = &dup
	return nil
}

func (m *MemoryStore) ListWithdrawals(ctx context.Context, planID primitive.ObjectID) ([]*models.Withdrawal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Withdrawal
	for _, wd := range m.withdrawals {
		if wd.PlanID == planID {
			dup := *wd
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	dup := *user
	m.users[user.ID] = &dup
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			dup := *user
			return &dup, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, email)
}

func (m *MemoryStore) GetUserByAuthUID(ctx context.Context, uid string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.AuthUID == uid {
			dup := *user
			return &dup, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, uid)
}
