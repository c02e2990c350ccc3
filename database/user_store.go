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

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(collectionName string) *UserStore {
	return &UserStore{col: GetCollection(collectionName)}
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("%w: insert user: %v", models.ErrRemote, err)
	}
	return nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, email)
}

func (s *UserStore) GetUserByAuthUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"auth_uid": uid}, uid)
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, ref string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", models.ErrRemote, err)
	}
	return &user, nil
}
