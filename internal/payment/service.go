package payment

import (
	"errors"
	"fmt"
	"log"
	"time"

	"asura-backend/internal/audit"
	"asura-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAffiliateNotFound = errors.New("afiliado no encontrado")
	ErrPaymentNotFound   = errors.New("cuota no encontrada")
	ErrAlreadyPaid       = errors.New("la cuota ya está marcada como pagada")
	ErrAlreadyPending    = errors.New("la cuota ya está pendiente")
	ErrVersionConflict   = errors.New("la cuota fue modificada por otra sesión")
	ErrDuplicatePeriod   = errors.New("ya existe una cuota para ese período")
)

// Service concentra todas las escrituras sobre el libro de cuotas. Se
// construye una sola vez en main y se comparte entre handlers y el cron.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Actor identifica quién ejecuta la operación, para el registro de auditoría.
type Actor struct {
	UserID   uint
	UserName string
}

// EnsureSchedule genera las cuotas que faltan entre la fecha de alta del
// afiliado y `through`. Es idempotente: los períodos que ya tienen fila se
// saltean, así que se puede llamar las veces que haga falta sin duplicar.
// Devuelve cuántas cuotas nuevas se crearon.
func (s *Service) EnsureSchedule(affiliateID uint, monthly decimal.Decimal, dueDay int, through time.Time) (int, error) {
	var aff models.Affiliate
	if err := s.db.First(&aff, affiliateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAffiliateNotFound
		}
		return 0, err
	}

	entries, err := GenerateSchedule(aff.JoinDate, monthly, dueDay, through)
	if err != nil {
		return 0, err
	}

	var existing []models.Payment
	if err := s.db.Select("due_date").Where("affiliate_id = ?", affiliateID).Find(&existing).Error; err != nil {
		return 0, err
	}

	// Los períodos se comparan por año-mes: el día de vencimiento puede haber
	// cambiado por configuración sin que eso duplique cuotas viejas.
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[periodKey(p.DueDate)] = true
	}

	created := 0
	for _, e := range entries {
		if taken[periodKey(e.DueDate)] {
			continue
		}
		p := models.Payment{
			AffiliateID: affiliateID,
			DueDate:     e.DueDate,
			Amount:      e.Amount,
			Status:      models.PaymentPending,
		}
		if err := s.db.Create(&p).Error; err != nil {
			return created, fmt.Errorf("no se pudo crear la cuota %s: %w", e.DueDate.Format("2006-01"), err)
		}
		created++
	}

	return created, nil
}

func periodKey(t time.Time) string {
	return t.Format("2006-01")
}

// CreateAdHoc crea una cuota suelta por fuera del generador. Es la vía de
// escape administrativa: normalmente las cuotas salen solo de EnsureSchedule.
func (s *Service) CreateAdHoc(affiliateID uint, dueDate time.Time, amount decimal.Decimal) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var aff models.Affiliate
	if err := s.db.First(&aff, affiliateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}

	var count int64
	s.db.Model(&models.Payment{}).
		Where("affiliate_id = ? AND due_date >= ? AND due_date < ?",
			affiliateID, monthStart(dueDate), monthStart(dueDate).AddDate(0, 1, 0)).
		Count(&count)
	if count > 0 {
		return nil, ErrDuplicatePeriod
	}

	p := models.Payment{
		AffiliateID: affiliateID,
		DueDate:     time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC),
		Amount:      amount,
		Status:      models.PaymentPending,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaidOptions - Metadatos opcionales del pago. TransactionID y Notes
// vienen del flujo de comprobante; Verifier queda registrado cuando un
// administrador confirma el pago.
type MarkPaidOptions struct {
	TransactionID string
	Notes         string
	ProofURL      string
	Verifier      *Actor
}

// MarkPaid pasa una cuota de pendiente a pagada y fija la fecha de pago.
// Si la cuota ya está pagada devuelve ErrAlreadyPaid: una doble confirmación
// desde dos sesiones se considera un error visible, no un no-op.
// La actualización es condicional sobre (status, version); una escritura con
// datos viejos devuelve ErrVersionConflict en lugar de pisar a la otra sesión.
func (s *Service) MarkPaid(paymentID uint, opts MarkPaidOptions, actor Actor) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.First(&p, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if p.Status == models.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	before := snapshot(&p)
	now := time.Now().UTC()

	updates := map[string]interface{}{
		"status":       models.PaymentPaid,
		"payment_date": now,
		"version":      p.Version + 1,
	}
	if opts.TransactionID != "" {
		updates["transaction_id"] = opts.TransactionID
	}
	if opts.Notes != "" {
		updates["verification_notes"] = opts.Notes
	}
	if opts.ProofURL != "" {
		updates["proof_url"] = opts.ProofURL
	}
	if opts.Verifier != nil {
		updates["verified_by"] = opts.Verifier.UserID
		updates["verification_date"] = now
	}

	res := s.db.Model(&models.Payment{}).
		Where("id = ? AND status = ? AND version = ?", p.ID, models.PaymentPending, p.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.explainStaleWrite(p.ID)
	}

	if err := s.db.First(&p, p.ID).Error; err != nil {
		return nil, err
	}

	s.writeAudit(actor, &p, models.AuditActionUpdate,
		fmt.Sprintf("Cuota %s marcada como pagada", p.DueDate.Format("2006-01")),
		before, snapshot(&p))

	return &p, nil
}

// MarkPending revierte una cuota pagada a pendiente y limpia todos los
// metadatos de pago. Es una corrección manual y siempre queda auditada.
func (s *Service) MarkPending(paymentID uint, actor Actor) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.First(&p, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if p.Status == models.PaymentPending {
		return nil, ErrAlreadyPending
	}

	before := snapshot(&p)

	res := s.db.Model(&models.Payment{}).
		Where("id = ? AND status = ? AND version = ?", p.ID, models.PaymentPaid, p.Version).
		Updates(map[string]interface{}{
			"status":             models.PaymentPending,
			"payment_date":       nil,
			"transaction_id":     nil,
			"verification_notes": nil,
			"verified_by":        nil,
			"verification_date":  nil,
			"proof_url":          nil,
			"version":            p.Version + 1,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.explainStaleWrite(p.ID)
	}

	// Releer sobre un struct nuevo: las columnas que quedaron en NULL no
	// pisan los punteros ya cargados y quedarían los valores viejos.
	var updated models.Payment
	if err := s.db.First(&updated, p.ID).Error; err != nil {
		return nil, err
	}

	s.writeAudit(actor, &updated, models.AuditActionUpdate,
		fmt.Sprintf("Cuota %s revertida a pendiente", updated.DueDate.Format("2006-01")),
		before, snapshot(&updated))

	return &updated, nil
}

// explainStaleWrite distingue por qué falló una actualización condicional.
func (s *Service) explainStaleWrite(paymentID uint) error {
	var cur models.Payment
	if err := s.db.First(&cur, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if cur.Status == models.PaymentPaid {
		return ErrAlreadyPaid
	}
	return ErrVersionConflict
}

func (s *Service) writeAudit(actor Actor, p *models.Payment, action models.AuditAction, desc string, before, after map[string]interface{}) {
	if err := audit.WriteLog(s.db, audit.LogOptions{
		UserID:      actor.UserID,
		UserName:    actor.UserName,
		EntityType:  "payment",
		EntityID:    p.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	}); err != nil {
		// La auditoría no corta la operación principal
		log.Printf("No se pudo escribir el registro de auditoría: %v", err)
	}
}

// snapshot arma el antes/después para auditoría sin arrastrar la relación
// Affiliate (evita JSON gigantes y ciclos).
func snapshot(p *models.Payment) map[string]interface{} {
	return map[string]interface{}{
		"id":                 p.ID,
		"affiliate_id":       p.AffiliateID,
		"due_date":           p.DueDate.Format("2006-01-02"),
		"amount":             p.Amount.String(),
		"status":             p.Status,
		"payment_date":       p.PaymentDate,
		"transaction_id":     p.TransactionID,
		"verification_notes": p.VerificationNotes,
		"verified_by":        p.VerifiedBy,
		"verification_date":  p.VerificationDate,
		"proof_url":          p.ProofURL,
		"version":            p.Version,
	}
}
