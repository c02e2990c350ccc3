package store

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryStore_NotFoundSentinels(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, err := m.GetLoan(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = m.GetPlan(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = m.GetDeposit(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = m.GetWithdrawal(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = m.GetUserByEmail(ctx, "nope@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, m.DeleteDeposit(ctx, "nope"), models.ErrNotFound)
}

func TestMemoryStore_LoanCopyOnReadAndWrite(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	loan := &models.Loan{
		ClientID: "c1",
		Installments: []models.Installment{
			{InstallmentNumber: 1, Amount: 100, Status: models.InstallmentPorVencer},
		},
	}
	require.NoError(t, m.CreateLoan(ctx, loan))

	// Mutating the caller's copy after the write must not leak into the store.
	loan.Installments[0].Status = models.InstallmentPagado
	got, err := m.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPorVencer, got.Installments[0].Status)

	// Mutating a read copy must not leak either.
	got.Installments[0].Amount = 999
	again, err := m.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Installments[0].Amount)
}

func TestMemoryStore_NextCartolaPerClient(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := m.NextCartola(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := m.NextCartola(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestMemoryStore_InTxSerializesCartolaAssignment(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	const workers = 16
	results := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.InTx(ctx, func(ctx context.Context) error {
				n, err := m.NextCartola(ctx, "c1")
				if err != nil {
					return err
				}
				results[i] = n
				return nil
			})
		}(i)
	}
	wg.Wait()

	sort.Ints(results)
	for i, n := range results {
		assert.Equal(t, i+1, n)
	}
}
