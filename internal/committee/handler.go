package committee

import (
	"strings"

	"asura-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CommitteeMemberRequest struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	OrderIndex int    `json:"order_index"`
}

type CommitteeMemberResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Phone      string `json:"phone"`
	OrderIndex int    `json:"order_index"`
}

func toResponse(m *models.CommitteeMember) CommitteeMemberResponse {
	return CommitteeMemberResponse{
		ID:         m.ID,
		Name:       m.Name,
		Position:   m.Position,
		Phone:      m.Phone,
		OrderIndex: m.OrderIndex,
	}
}

// GET /api/committee
// Comisión directiva en el orden de los cargos.
func ListCommitteeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.CommitteeMember
		if err := db.Order("order_index asc, name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar la comisión directiva")
		}

		resp := make([]CommitteeMemberResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/committee
func CreateCommitteeMemberHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CommitteeMemberRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Position = strings.TrimSpace(body.Position)
		if body.Name == "" || body.Position == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre y cargo son obligatorios")
		}

		m := models.CommitteeMember{
			Name:       body.Name,
			Position:   body.Position,
			Phone:      strings.TrimSpace(body.Phone),
			OrderIndex: body.OrderIndex,
		}

		if err := db.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el integrante")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&m))
	}
}

// PUT /api/admin/committee/:id
func UpdateCommitteeMemberHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var m models.CommitteeMember
		if err := db.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Integrante no encontrado")
		}

		var body CommitteeMemberRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Position = strings.TrimSpace(body.Position)
		if body.Name == "" || body.Position == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre y cargo son obligatorios")
		}

		m.Name = body.Name
		m.Position = body.Position
		m.Phone = strings.TrimSpace(body.Phone)
		m.OrderIndex = body.OrderIndex

		if err := db.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el integrante")
		}

		return c.JSON(toResponse(&m))
	}
}

// DELETE /api/admin/committee/:id
func DeleteCommitteeMemberHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if err := db.Delete(&models.CommitteeMember{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el integrante")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
