package arrears

import (
	"errors"

	"asura-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/affiliates/:id/arrears
func SummarizeAffiliateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		affiliateID, err := c.ParamsInt("id")
		if err != nil || affiliateID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		if !auth.CanAccessAffiliate(c, uint(affiliateID)) {
			return fiber.NewError(fiber.StatusForbidden, "No tenés acceso a la deuda de otro afiliado")
		}

		summary, err := svc.SummarizeAffiliate(uint(affiliateID))
		if err != nil {
			if errors.Is(err, ErrAffiliateNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen de deuda")
		}

		return c.JSON(summary)
	}
}

// GET /api/arrears
// Control de cuotas de toda la organización.
func SummarizeOrganizationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := svc.SummarizeOrganization()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el control de cuotas")
		}

		return c.JSON(org)
	}
}
