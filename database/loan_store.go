package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexisbanda/invercorp-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LoanStore is the Mongo-backed store.LoanStore. Loans are whole documents;
// installment edits replace the document, which keeps the last-write-wins
// semantics the portal accepts for administrative corrections.
type LoanStore struct {
	col *mongo.Collection
}

func NewLoanStore(collectionName string) *LoanStore {
	return &LoanStore{col: GetCollection(collectionName)}
}

func (s *LoanStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	if loan.ID == primitive.NilObjectID {
		loan.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, loan); err != nil {
		return fmt.Errorf("%w: insert loan: %v", models.ErrRemote, err)
	}
	return nil
}

func (s *LoanStore) GetLoan(ctx context.Context, id primitive.ObjectID) (*models.Loan, error) {
	var loan models.Loan
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&loan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: loan %s", models.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get loan: %v", models.ErrRemote, err)
	}
	return &loan, nil
}

func (s *LoanStore) ReplaceLoan(ctx context.Context, loan *models.Loan) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": loan.ID}, loan)
	if err != nil {
		return fmt.Errorf("%w: replace loan: %v", models.ErrRemote, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: loan %s", models.ErrNotFound, loan.ID.Hex())
	}
	return nil
}

func (s *LoanStore) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	return s.list(ctx, bson.M{})
}

func (s *LoanStore) ListLoansByClient(ctx context.Context, clientID string) ([]*models.Loan, error) {
	return s.list(ctx, bson.M{"client_id": clientID})
}

func (s *LoanStore) list(ctx context.Context, filter bson.M) ([]*models.Loan, error) {
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list loans: %v", models.ErrRemote, err)
	}
	defer cursor.Close(ctx)

	var loans []*models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, fmt.Errorf("%w: decode loans: %v", models.ErrRemote, err)
	}
	return loans, nil
}
