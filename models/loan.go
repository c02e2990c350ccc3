package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoanStatus string

const (
	LoanActivo     LoanStatus = "ACTIVO"
	LoanCompletado LoanStatus = "COMPLETADO"
	LoanCancelado  LoanStatus = "CANCELADO"
)

type InstallmentStatus string

const (
	InstallmentPorVencer      InstallmentStatus = "POR VENCER"
	InstallmentVencido        InstallmentStatus = "VENCIDO"
	InstallmentEnVerificacion InstallmentStatus = "EN VERIFICACIÓN"
	InstallmentPagado         InstallmentStatus = "PAGADO"
)

type PaymentFrequency string

const (
	FrequencyMensual   PaymentFrequency = "Mensual"
	FrequencyQuincenal PaymentFrequency = "Quincenal"
	FrequencySemanal   PaymentFrequency = "Semanal"
)

// PeriodsPerYear returns the divisor used to turn an annual rate into a
// per-period rate. These are approximations (24 quincenas, 52 weeks), not
// calendar-exact day counts.
func (f PaymentFrequency) PeriodsPerYear() int {
	switch f {
	case FrequencyQuincenal:
		return 24
	case FrequencySemanal:
		return 52
	default:
		return 12
	}
}

func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyMensual, FrequencyQuincenal, FrequencySemanal:
		return true
	}
	return false
}

// NormalizeStatus folds whitespace and case so that status comparisons survive
// the mixed casing found in older documents.
func NormalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (s InstallmentStatus) Is(other InstallmentStatus) bool {
	return NormalizeStatus(string(s)) == NormalizeStatus(string(other))
}

// StatusHistoryEntry is one append-only record of a loan status transition or
// administrative correction.
type StatusHistoryEntry struct {
	EntryID   string     `json:"entry_id" bson:"entry_id"`
	Status    LoanStatus `json:"status" bson:"status"`
	Notes     string     `json:"notes" bson:"notes"`
	ChangedBy string     `json:"changed_by" bson:"changed_by"`
	ChangedAt time.Time  `json:"changed_at" bson:"changed_at"`
}

// Installment is one scheduled payment obligation within a loan. The sequence
// is owned exclusively by its Loan and numbered contiguously from 1.
type Installment struct {
	InstallmentNumber  int               `json:"installment_number" bson:"installment_number"`
	DueDate            time.Time         `json:"due_date" bson:"due_date"`
	Amount             float64           `json:"amount" bson:"amount"`
	InterestAmount     float64           `json:"interest_amount,omitempty" bson:"interest_amount,omitempty"`
	PrincipalAmount    float64           `json:"principal_amount,omitempty" bson:"principal_amount,omitempty"`
	Status             InstallmentStatus `json:"status" bson:"status"`
	PaymentDate        *time.Time        `json:"payment_date,omitempty" bson:"payment_date,omitempty"`
	PaymentReportDate  *time.Time        `json:"payment_report_date,omitempty" bson:"payment_report_date,omitempty"`
	PaymentReportNotes string            `json:"payment_report_notes,omitempty" bson:"payment_report_notes,omitempty"`
	ReceiptURL         string            `json:"receipt_url,omitempty" bson:"receipt_url,omitempty"`
	AdminNotes         string            `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
}

// Resolved reports whether the installment has been paid.
func (i *Installment) Resolved() bool {
	return i.Status.Is(InstallmentPagado)
}

type Loan struct {
	ID               primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	ClientID         string               `json:"client_id" bson:"client_id"`
	AdvisorID        string               `json:"advisor_id,omitempty" bson:"advisor_id,omitempty"`
	LoanAmount       float64              `json:"loan_amount" bson:"loan_amount"`
	InterestRate     float64              `json:"interest_rate" bson:"interest_rate"`
	TermValue        int                  `json:"term_value" bson:"term_value"`
	PaymentFrequency PaymentFrequency     `json:"payment_frequency" bson:"payment_frequency"`
	DisbursementDate time.Time            `json:"disbursement_date" bson:"disbursement_date"`
	Status           LoanStatus           `json:"status" bson:"status"`
	StatusHistory    []StatusHistoryEntry `json:"status_history" bson:"status_history"`
	Installments     []Installment        `json:"installments" bson:"installments"`
	UpdatedBy        string               `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	UpdatedAt        time.Time            `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

func (l *Loan) GetID() *primitive.ObjectID {
	if l == nil {
		return nil
	}
	if l.ID == primitive.NilObjectID {
		return nil
	}
	return &l.ID
}

// FindInstallment returns the installment with the given 1-based number, or
// nil when absent.
func (l *Loan) FindInstallment(number int) *Installment {
	for idx := range l.Installments {
		if l.Installments[idx].InstallmentNumber == number {
			return &l.Installments[idx]
		}
	}
	return nil
}
