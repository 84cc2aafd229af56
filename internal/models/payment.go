package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Payment - Una cuota mensual del afiliado. Existe exactamente una fila por
// afiliado y por mes desde la fecha de alta; el índice único sobre
// (affiliate_id, due_date) lo garantiza a nivel base.
type Payment struct {
	ID          uint `gorm:"primaryKey"`
	AffiliateID uint `gorm:"uniqueIndex:idx_payments_affiliate_period;not null"`
	Affiliate   Affiliate

	// Fecha de vencimiento del período, normalizada al día configurado del mes
	DueDate time.Time       `gorm:"uniqueIndex:idx_payments_affiliate_period;index;not null"`
	Amount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status  PaymentStatus   `gorm:"size:10;not null;default:pending"`

	// Metadatos de pago: todos null mientras la cuota está pendiente
	PaymentDate       *time.Time
	TransactionID     *string `gorm:"size:100"`
	VerificationNotes *string `gorm:"size:500"`
	VerifiedBy        *uint
	VerificationDate  *time.Time
	ProofURL          *string `gorm:"size:255"`

	// Contador de versión para rechazar escrituras con datos viejos
	Version int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
