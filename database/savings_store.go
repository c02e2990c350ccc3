package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexisbanda/invercorp-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxTxAttempts bounds how often a contended balance transaction is retried
// before the caller sees models.ErrConflict.
const maxTxAttempts = 3

// SavingsStore is the Mongo-backed store.SavingsStore. Balance mutations run
// inside session transactions so the deposit/withdrawal status flip and the
// SaldoActual write commit together.
type SavingsStore struct {
	client      *mongo.Client
	plans       *mongo.Collection
	deposits    *mongo.Collection
	withdrawals *mongo.Collection
	counters    *mongo.Collection
}

func NewSavingsStore(plans, deposits, withdrawals, counters string) *SavingsStore {
	return &SavingsStore{
		client:      GetClient(),
		plans:       GetCollection(plans),
		deposits:    GetCollection(deposits),
		withdrawals: GetCollection(withdrawals),
		counters:    GetCollection(counters),
	}
}

func (s *SavingsStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", models.ErrRemote, err)
	}
	defer session.EndSession(ctx)

	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		_, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			return nil, fn(sc)
		})
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", models.ErrConflict, lastErr)
}

func isTransient(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}

// NextCartola reads-and-increments the per-client counter document. Run it
// inside the same InTx as the plan insert.
func (s *SavingsStore) NextCartola(ctx context.Context, clienteID string) (int, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": clienteID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("%w: next cartola: %v", models.ErrRemote, err)
	}
	return counter.Seq, nil
}

func (s *SavingsStore) CreatePlan(ctx context.Context, plan *models.ProgrammedSaving) error {
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	if _, err := s.plans.InsertOne(ctx, plan); err != nil {
		return fmt.Errorf("%w: insert plan: %v", models.ErrRemote, err)
	}
	return nil
}

func (s *SavingsStore) GetPlan(ctx context.Context, id primitive.ObjectID) (*models.ProgrammedSaving, error) {
	var plan models.ProgrammedSaving
	err := s.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: plan %s", models.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get plan: %v", models.ErrRemote, err)
	}
	return &plan, nil
}

func (s *SavingsStore) ReplacePlan(ctx context.Context, plan *models.ProgrammedSaving) error {
	res, err := s.plans.ReplaceOne(ctx, bson.M{"_id": plan.ID}, plan)
	if err != nil {
		return fmt.Errorf("%w: replace plan: %v", models.ErrRemote, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: plan %s", models.ErrNotFound, plan.ID.Hex())
	}
	return nil
}

func (s *SavingsStore) ListPlansByClient(ctx context.Context, clienteID string) ([]*models.ProgrammedSaving, error) {
	return s.listPlans(ctx, bson.M{"cliente_id": clienteID})
}

func (s *SavingsStore) ListPlans(ctx context.Context) ([]*models.ProgrammedSaving, error) {
	return s.listPlans(ctx, bson.M{})
}

func (s *SavingsStore) listPlans(ctx context.Context, filter bson.M) ([]*models.ProgrammedSaving, error) {
	cursor, err := s.plans.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list plans: %v", models.ErrRemote, err)
	}
	defer cursor.Close(ctx)

	var plans []*models.ProgrammedSaving
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("%w: decode plans: %v", models.ErrRemote, err)
	}
	return plans, nil
}

func (s *SavingsStore) CreateDeposit(ctx context.Context, dep *models.Deposit) error {
	if _, err := s.deposits.InsertOne(ctx, dep); err != nil {
		return fmt.Errorf("%w: insert deposit: %v", models.ErrRemote, err)
	}
	return nil
}

func (s *SavingsStore) GetDeposit(ctx context.Context, depositID string) (*models.Deposit, error) {
	var dep models.Deposit
	err := s.deposits.FindOne(ctx, bson.M{"deposit_id": depositID}).Decode(&dep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: deposit %s", models.ErrNotFound, depositID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get deposit: %v", models.ErrRemote, err)
	}
	return &dep, nil
}

func (s *SavingsStore) UpdateDeposit(ctx context.Context, dep *models.Deposit) error {
	res, err := s.deposits.ReplaceOne(ctx, bson.M{"deposit_id": dep.DepositID}, dep)
	if err != nil {
		return fmt.Errorf("%w: update deposit: %v", models.ErrRemote, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: deposit %s", models.ErrNotFound, dep.DepositID)
	}
	return nil
}

func (s *SavingsStore) DeleteDeposit(ctx context.Context, depositID string) error {
	res, err := s.deposits.DeleteOne(ctx, bson.M{"deposit_id": depositID})
	if err != nil {
		return fmt.Errorf("%w: delete deposit: %v", models.ErrRemote, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: deposit %s", models.ErrNotFound, depositID)
	}
	return nil
}

func (s *SavingsStore) ListDeposits(ctx context.Context, planID primitive.ObjectID) ([]*models.Deposit, error) {
	cursor, err := s.deposits.Find(ctx, bson.M{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("%w: list deposits: %v", models.ErrRemote, err)
	}
	defer cursor.Close(ctx)

	var deps []*models.Deposit
	if err := cursor.All(ctx, &deps); err != nil {
		return nil, fmt.Errorf("%w: decode deposits: %v", models.ErrRemote, err)
	}
	return deps, nil
}

func (s *SavingsStore) CreateWithdrawal(ctx context.Context, wd *models.Withdrawal) error {
	if _, err := s.withdrawals.InsertOne(ctx, wd); err != nil {
		return fmt.Errorf("%w: insert withdrawal: %v", models.ErrRemote, err)
	}
	return nil
}

func (s *SavingsStore) GetWithdrawal(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	var wd models.Withdrawal
	err := s.withdrawals.FindOne(ctx, bson.M{"withdrawal_id": withdrawalID}).Decode(&wd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: withdrawal %s", models.ErrNotFound, withdrawalID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get withdrawal: %v", models.ErrRemote, err)
	}
	return &wd, nil
}

func (s *SavingsStore) UpdateWithdrawal(ctx context.Context, wd *models.Withdrawal) error {
	res, err := s.withdrawals.ReplaceOne(ctx, bson.M{"withdrawal_id": wd.WithdrawalID}, wd)
	if err != nil {
		return fmt.Errorf("%w: update withdrawal: %v", models.ErrRemote, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: withdrawal %s", models.ErrNotFound, wd.WithdrawalID)
	}
	return nil
}

func (s *SavingsStore) ListWithdrawals(ctx context.Context, planID primitive.ObjectID) ([]*models.Withdrawal, error) {
	cursor, err := s.withdrawals.Find(ctx, bson.M{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("%w: list withdrawals: %v", models.ErrRemote, err)
	}
	defer cursor.Close(ctx)

	var wds []*models.Withdrawal
	if err := cursor.All(ctx, &wds); err != nil {
		return nil, fmt.Errorf("%w: decode withdrawals: %v", models.ErrRemote, err)
	}
	return wds, nil
}
