package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanStatus string

const (
	PlanActivo     PlanStatus = "Activo"
	PlanPausado    PlanStatus = "Pausado"
	PlanCompletado PlanStatus = "Completado"
	PlanCancelado  PlanStatus = "Cancelado"
)

type DepositStatus string

const (
	DepositEnVerificacion DepositStatus = "En Verificación"
	DepositConfirmado     DepositStatus = "Confirmado"
	DepositRechazado      DepositStatus = "Rechazado"
)

func (s DepositStatus) Is(other DepositStatus) bool {
	return NormalizeStatus(string(s)) == NormalizeStatus(string(other))
}

type WithdrawalStatus string

const (
	WithdrawalSolicitado WithdrawalStatus = "Solicitado"
	WithdrawalProcesado  WithdrawalStatus = "Procesado"
	WithdrawalRechazado  WithdrawalStatus = "Rechazado"
)

func (s WithdrawalStatus) Is(other WithdrawalStatus) bool {
	return NormalizeStatus(string(s)) == NormalizeStatus(string(other))
}

// ProgrammedSaving is a client's programmed-savings plan. SaldoActual is
// denormalized for read performance: it must always equal the sum of
// Confirmado deposits minus Procesado withdrawals, which is why every balance
// write happens in the same transaction as the corresponding status flip.
type ProgrammedSaving struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	NumeroCartola int                `json:"numero_cartola" bson:"numero_cartola"`
	ClienteID     string             `json:"cliente_id" bson:"cliente_id"`
	Nombre        string             `json:"nombre,omitempty" bson:"nombre,omitempty"`
	MontoMeta     float64            `json:"monto_meta" bson:"monto_meta"`
	SaldoActual   float64            `json:"saldo_actual" bson:"saldo_actual"`
	EstadoPlan    PlanStatus         `json:"estado_plan" bson:"estado_plan"`
	UpdatedBy     string             `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	UpdatedAt     time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

type Deposit struct {
	DepositID           string        `json:"deposit_id" bson:"deposit_id"`
	PlanID              primitive.ObjectID `json:"plan_id" bson:"plan_id"`
	ClienteID           string        `json:"cliente_id" bson:"cliente_id"`
	MontoDeposito       float64       `json:"monto_deposito" bson:"monto_deposito"`
	EstadoDeposito      DepositStatus `json:"estado_deposito" bson:"estado_deposito"`
	Notas               string        `json:"notas,omitempty" bson:"notas,omitempty"`
	ReceiptURL          string        `json:"receipt_url,omitempty" bson:"receipt_url,omitempty"`
	AdminVerificadorID  string        `json:"admin_verificador_id,omitempty" bson:"admin_verificador_id,omitempty"`
	NotaRechazo         string        `json:"nota_rechazo,omitempty" bson:"nota_rechazo,omitempty"`
	FechaVerificacion   *time.Time    `json:"fecha_verificacion,omitempty" bson:"fecha_verificacion,omitempty"`
	CreatedAt           time.Time     `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

type Withdrawal struct {
	WithdrawalID       string             `json:"withdrawal_id" bson:"withdrawal_id"`
	PlanID             primitive.ObjectID `json:"plan_id" bson:"plan_id"`
	ClienteID          string             `json:"cliente_id" bson:"cliente_id"`
	MontoRetiro        float64            `json:"monto_retiro" bson:"monto_retiro"`
	EstadoRetiro       WithdrawalStatus   `json:"estado_retiro" bson:"estado_retiro"`
	Notas              string             `json:"notas,omitempty" bson:"notas,omitempty"`
	AdminVerificadorID string             `json:"admin_verificador_id,omitempty" bson:"admin_verificador_id,omitempty"`
	NotaRechazo        string             `json:"nota_rechazo,omitempty" bson:"nota_rechazo,omitempty"`
	FechaProceso       *time.Time         `json:"fecha_proceso,omitempty" bson:"fecha_proceso,omitempty"`
	CreatedAt          time.Time          `json:"created_at,omitempty" bson:"created_at,omitempty"`
}
