package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleCliente UserRole = "cliente"
	RoleAsesor  UserRole = "asesor"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthUID     string             `json:"auth_uid" bson:"auth_uid"`
	Nombre      string             `json:"nombre" bson:"nombre"`
	Email       string             `json:"email" bson:"email"`
	PhoneNumber string             `json:"phone_number" bson:"phone_number"`
	Role        UserRole           `json:"role" bson:"role"`
	UpdatedAt   time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

func (u *User) GetID() *primitive.ObjectID {
	if u == nil {
		return nil
	}
	if u.ID == primitive.NilObjectID {
		return nil
	}
	return &u.ID
}

// Identity is the already-resolved acting principal. The auth provider lives
// outside this service; ledger calls only stamp whoever it says is acting.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (id Identity) Actor() string {
	if id.UID != "" {
		return id.UID
	}
	return id.Email
}
