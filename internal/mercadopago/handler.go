package mercadopago

import (
	"encoding/base64"
	"errors"
	"fmt"

	"asura-backend/internal/auth"
	"asura-backend/internal/config"
	"asura-backend/internal/export"
	"asura-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CheckoutResponse struct {
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
	QRPNGBase64  string `json:"qr_png_base64"`
}

// POST /api/payments/:id/checkout
// Crea el link de pago de una cuota pendiente y devuelve además el QR del
// link, listo para mostrar en pantalla o imprimir.
func CreateCheckoutHandler(db *gorm.DB, client *Client, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !client.Enabled() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "La generación de links de pago está deshabilitada")
		}

		id := c.Params("id")

		var p models.Payment
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cuota no encontrada")
		}

		if !auth.CanAccessAffiliate(c, p.AffiliateID) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a las cuotas de otro afiliado")
		}

		if p.Status == models.PaymentPaid {
			return fiber.NewError(fiber.StatusConflict, "La cuota ya está pagada")
		}

		var aff models.Affiliate
		if err := db.First(&aff, p.AffiliateID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer la ficha del afiliado")
		}

		email := ""
		if aff.Email != nil {
			email = *aff.Email
		}

		pref, err := client.CreatePreference(PreferenceOptions{
			Title:             fmt.Sprintf("Cuota de Afiliación - %s", export.FormatPeriod(p.DueDate)),
			Amount:            p.Amount,
			PayerEmail:        email,
			PayerName:         aff.Name,
			ExternalReference: fmt.Sprintf("cuota-%d", p.ID),
			BackURL:           cfg.PublicBaseURL,
		})
		if err != nil {
			if errors.Is(err, ErrDisabled) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "La generación de links de pago está deshabilitada")
			}
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo crear el link de pago")
		}

		png, err := export.QRPNG(pref.InitPoint)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el QR del link")
		}

		return c.JSON(CheckoutResponse{
			PreferenceID: pref.ID,
			InitPoint:    pref.InitPoint,
			QRPNGBase64:  base64.StdEncoding.EncodeToString(png),
		})
	}
}
