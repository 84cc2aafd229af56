package export

import (
	"fmt"

	"asura-backend/internal/arrears"
	"asura-backend/internal/auth"
	"asura-backend/internal/config"
	"asura-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func sendFile(c *fiber.Ctx, data []byte, contentType, filename string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// GET /api/affiliates/:id/statement.pdf
// Resumen de pagos del afiliado, con el total adeudado al pie.
func StatementPDFHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		if !auth.CanAccessAffiliate(c, aff.ID) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a los datos de otro afiliado")
		}

		var payments []models.Payment
		if err := db.Where("affiliate_id = ?", aff.ID).Order("due_date asc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron leer las cuotas")
		}

		data, err := StatementPDF(&aff, payments, cfg.PaymentAlias)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el PDF")
		}

		return sendFile(c, data, "application/pdf", fmt.Sprintf("resumen-pagos-%s.pdf", aff.MemberNumber()))
	}
}

// GET /api/arrears/report.pdf
func ControlPDFHandler(svc *arrears.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := svc.SummarizeOrganization()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el estado de deuda")
		}

		data, err := ControlPDF(org)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el PDF")
		}

		return sendFile(c, data, "application/pdf", "control-cuotas.pdf")
	}
}

// GET /api/arrears/report.xlsx
func ControlXLSXHandler(svc *arrears.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := svc.SummarizeOrganization()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el estado de deuda")
		}

		data, err := ControlXLSX(org)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo Excel")
		}

		return sendFile(c, data,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"control-cuotas.xlsx")
	}
}

// GET /api/payments/:id/receipt.pdf
// Solo las cuotas pagadas tienen recibo.
func ReceiptPDFHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Payment
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cuota no encontrada")
		}

		if !auth.CanAccessAffiliate(c, p.AffiliateID) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a las cuotas de otro afiliado")
		}

		if p.Status != models.PaymentPaid {
			return fiber.NewError(fiber.StatusConflict, "La cuota todavía no está pagada")
		}

		var aff models.Affiliate
		if err := db.First(&aff, p.AffiliateID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer la ficha del afiliado")
		}

		data, err := ReceiptPDF(&aff, &p, cfg.PublicBaseURL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el recibo")
		}

		return sendFile(c, data, "application/pdf", fmt.Sprintf("recibo-%d.pdf", p.ID))
	}
}

// GET /api/affiliates/:id/credential.pdf
func CredentialPDFHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		if !auth.CanAccessAffiliate(c, aff.ID) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a los datos de otro afiliado")
		}

		data, err := CredentialPDF(&aff, cfg.PublicBaseURL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar la credencial")
		}

		return sendFile(c, data, "application/pdf", fmt.Sprintf("credencial-%s.pdf", aff.MemberNumber()))
	}
}
