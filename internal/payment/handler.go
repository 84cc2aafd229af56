package payment

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"asura-backend/internal/auth"
	"asura-backend/internal/config"
	"asura-backend/internal/models"
	"asura-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentResponse struct {
	ID                uint    `json:"id"`
	AffiliateID       uint    `json:"affiliate_id"`
	DueDate           string  `json:"due_date"`
	Amount            string  `json:"amount"`
	Status            string  `json:"status"`
	Overdue           bool    `json:"overdue"`
	PaymentDate       *string `json:"payment_date"`
	TransactionID     *string `json:"transaction_id"`
	VerificationNotes *string `json:"verification_notes"`
	VerifiedBy        *uint   `json:"verified_by"`
	VerificationDate  *string `json:"verification_date"`
	ProofURL          *string `json:"proof_url"`
	Version           int     `json:"version"`
}

type MarkPaidRequest struct {
	TransactionID string `json:"transaction_id"`
	Notes         string `json:"notes"`
}

type CreatePaymentRequest struct {
	AffiliateID uint   `json:"affiliate_id"`
	DueDate     string `json:"due_date"` // "2025-03-01"
	Amount      string `json:"amount"`
}

func toResponse(p *models.Payment, today time.Time) PaymentResponse {
	r := PaymentResponse{
		ID:                p.ID,
		AffiliateID:       p.AffiliateID,
		DueDate:           p.DueDate.Format("2006-01-02"),
		Amount:            p.Amount.StringFixed(2),
		Status:            string(p.Status),
		Overdue:           Overdue(p.Status, p.DueDate, today),
		TransactionID:     p.TransactionID,
		VerificationNotes: p.VerificationNotes,
		VerifiedBy:        p.VerifiedBy,
		ProofURL:          p.ProofURL,
		Version:           p.Version,
	}
	if p.PaymentDate != nil {
		s := p.PaymentDate.Format(time.RFC3339)
		r.PaymentDate = &s
	}
	if p.VerificationDate != nil {
		s := p.VerificationDate.Format(time.RFC3339)
		r.VerificationDate = &s
	}
	return r
}

// mapServiceError traduce los errores del servicio a respuestas HTTP.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrAffiliateNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
	case errors.Is(err, ErrPaymentNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Cuota no encontrada")
	case errors.Is(err, ErrAlreadyPaid):
		return fiber.NewError(fiber.StatusConflict, "La cuota ya está marcada como pagada")
	case errors.Is(err, ErrAlreadyPending):
		return fiber.NewError(fiber.StatusConflict, "La cuota ya está pendiente")
	case errors.Is(err, ErrVersionConflict):
		return fiber.NewError(fiber.StatusConflict, "La cuota fue modificada por otra sesión, recargá e intentá de nuevo")
	case errors.Is(err, ErrDuplicatePeriod):
		return fiber.NewError(fiber.StatusConflict, "Ya existe una cuota para ese período")
	case errors.Is(err, ErrInvalidDateRange), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidDueDay):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo completar la operación")
	}
}

// getActor arma la identidad del usuario autenticado para la auditoría.
func getActor(c *fiber.Ctx, db *gorm.DB) (Actor, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return Actor{}, fiber.NewError(fiber.StatusForbidden, "No se pudo obtener el usuario")
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return Actor{}, fiber.NewError(fiber.StatusInternalServerError, "Usuario no encontrado")
	}

	return Actor{UserID: user.ID, UserName: user.Name}, nil
}

// GET /api/affiliates/:id/payments
// Libro de cuotas de un afiliado, ordenado por vencimiento.
func ListPaymentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		affiliateID, err := c.ParamsInt("id")
		if err != nil || affiliateID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var aff models.Affiliate
		if err := db.First(&aff, affiliateID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		if !auth.CanAccessAffiliate(c, aff.ID) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a las cuotas de otro afiliado")
		}

		var rows []models.Payment
		if err := db.Where("affiliate_id = ?", affiliateID).
			Order("due_date asc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las cuotas")
		}

		today := time.Now()
		resp := make([]PaymentResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i], today))
		}

		return c.JSON(resp)
	}
}

// POST /api/affiliates/:id/payments/generate
// Genera las cuotas que faltan desde la fecha de alta hasta el mes actual.
// Repetir la llamada no duplica: los períodos existentes se saltean.
func GenerateScheduleHandler(svc *Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		affiliateID, err := c.ParamsInt("id")
		if err != nil || affiliateID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		created, err := svc.EnsureSchedule(uint(affiliateID), cfg.MonthlyFee, cfg.DueDay, time.Now())
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"created": created,
		})
	}
}

// POST /api/payments
// Alta manual de una cuota suelta (vía de escape administrativa).
func CreatePaymentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if body.AffiliateID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "affiliate_id es obligatorio")
		}

		dueDate, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El formato de due_date debe ser 'YYYY-MM-DD'")
		}

		amount, err := decimal.NewFromString(body.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount no es un monto válido")
		}

		p, err := svc.CreateAdHoc(body.AffiliateID, dueDate, amount)
		if err != nil {
			return mapServiceError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(p, time.Now()))
	}
}

// PUT /api/payments/:id/paid
// Marca la cuota como pagada. Devuelve 409 si ya estaba pagada o si otra
// sesión la modificó en el medio.
func MarkPaidHandler(db *gorm.DB, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paymentID, err := c.ParamsInt("id")
		if err != nil || paymentID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body MarkPaidRequest
		// El body es opcional: un toggle manual no trae metadatos
		_ = c.BodyParser(&body)

		actor, aerr := getActor(c, db)
		if aerr != nil {
			return aerr
		}

		p, err := svc.MarkPaid(uint(paymentID), MarkPaidOptions{
			TransactionID: strings.TrimSpace(body.TransactionID),
			Notes:         strings.TrimSpace(body.Notes),
			Verifier:      &actor,
		}, actor)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(toResponse(p, time.Now()))
	}
}

// PUT /api/payments/:id/pending
// Corrección manual: revierte a pendiente y limpia los metadatos de pago.
func MarkPendingHandler(db *gorm.DB, svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paymentID, err := c.ParamsInt("id")
		if err != nil || paymentID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		actor, aerr := getActor(c, db)
		if aerr != nil {
			return aerr
		}

		p, err := svc.MarkPending(uint(paymentID), actor)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(toResponse(p, time.Now()))
	}
}

// POST /api/payments/:id/proof
// Sube el comprobante de pago (multipart: file + transaction_id), lo guarda
// en el almacenamiento y marca la cuota como pagada con la referencia.
func AttachProofHandler(db *gorm.DB, svc *Service, store *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paymentID, err := c.ParamsInt("id")
		if err != nil || paymentID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		// Se valida el dueño antes de tocar el almacenamiento: un afiliado
		// solo puede subir comprobantes de sus propias cuotas.
		var target models.Payment
		if err := db.First(&target, paymentID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cuota no encontrada")
		}
		if !auth.CanAccessAffiliate(c, target.AffiliateID) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a las cuotas de otro afiliado")
		}

		transactionID := strings.TrimSpace(c.FormValue("transaction_id"))
		if transactionID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "transaction_id es obligatorio")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Falta el archivo del comprobante")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo abrir el archivo")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer el archivo")
		}

		// Nombre único para no pisar comprobantes existentes
		ext := filepath.Ext(fileHeader.Filename)
		name := uuid.NewString() + ext

		proofURL, err := store.Save(storage.BucketProofs, name, data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el comprobante")
		}

		actor, aerr := getActor(c, db)
		if aerr != nil {
			return aerr
		}

		// El verificador queda registrado solo cuando confirma un
		// administrador; un comprobante autosubido queda sin verificar.
		var verifier *Actor
		if role, ok := c.Locals(auth.CtxUserRoleKey).(models.UserRole); ok && role == models.RoleAdmin {
			verifier = &actor
		}

		p, err := svc.MarkPaid(uint(paymentID), MarkPaidOptions{
			TransactionID: transactionID,
			Notes:         fmt.Sprintf("Comprobante subido: %s", fileHeader.Filename),
			ProofURL:      proofURL,
			Verifier:      verifier,
		}, actor)
		if err != nil {
			// El archivo ya quedó guardado; si la transición falla se limpia
			_ = store.Remove(proofURL)
			return mapServiceError(err)
		}

		return c.JSON(toResponse(p, time.Now()))
	}
}
