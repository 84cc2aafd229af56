package activity

import (
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"asura-backend/internal/models"
	"asura-backend/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type ActivityRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=2000"`
	EventDate   string `json:"event_date" validate:"required"` // "2025-08-15"
	Location    string `json:"location" validate:"max=255"`
}

type ActivityResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	EventDate   string  `json:"event_date"`
	Location    string  `json:"location"`
	ImageURL    *string `json:"image_url"`
	CreatedAt   string  `json:"created_at"`
}

func toResponse(a *models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		EventDate:   a.EventDate.Format("2006-01-02"),
		Location:    a.Location,
		ImageURL:    a.ImageURL,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/activities
// Actividades ordenadas de la más próxima a la más vieja.
func ListActivitiesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Activity
		if err := db.Order("event_date desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las actividades")
		}

		resp := make([]ActivityResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/activities/:id
func GetActivityHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var act models.Activity
		if err := db.First(&act, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Actividad no encontrada")
		}

		return c.JSON(toResponse(&act))
	}
}

// POST /api/activities
func CreateActivityHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ActivityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos: "+err.Error())
		}

		eventDate, err := time.Parse("2006-01-02", body.EventDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El formato de event_date debe ser 'YYYY-MM-DD'")
		}

		act := models.Activity{
			Title:       strings.TrimSpace(body.Title),
			Description: body.Description,
			EventDate:   eventDate,
			Location:    strings.TrimSpace(body.Location),
		}

		if err := db.Create(&act).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la actividad")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&act))
	}
}

// PUT /api/activities/:id
func UpdateActivityHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var act models.Activity
		if err := db.First(&act, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Actividad no encontrada")
		}

		var body ActivityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos: "+err.Error())
		}

		eventDate, err := time.Parse("2006-01-02", body.EventDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El formato de event_date debe ser 'YYYY-MM-DD'")
		}

		act.Title = strings.TrimSpace(body.Title)
		act.Description = body.Description
		act.EventDate = eventDate
		act.Location = strings.TrimSpace(body.Location)

		if err := db.Save(&act).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la actividad")
		}

		return c.JSON(toResponse(&act))
	}
}

// DELETE /api/activities/:id
func DeleteActivityHandler(db *gorm.DB, store *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var act models.Activity
		if err := db.First(&act, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Actividad no encontrada")
		}

		if act.ImageURL != nil {
			if err := store.Remove(*act.ImageURL); err != nil {
				log.Printf("No se pudo eliminar la imagen de la actividad %d: %v", act.ID, err)
			}
		}

		if err := db.Delete(&act).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la actividad")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/activities/:id/image
func UploadImageHandler(db *gorm.DB, store *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var act models.Activity
		if err := db.First(&act, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Actividad no encontrada")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Falta el archivo de la imagen")
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

		ext := filepath.Ext(fileHeader.Filename)
		name := uuid.NewString() + ext

		imageURL, err := store.Save(storage.BucketActivityImages, name, data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la imagen")
		}

		if act.ImageURL != nil {
			if err := store.Remove(*act.ImageURL); err != nil {
				log.Printf("No se pudo eliminar la imagen anterior de la actividad %d: %v", act.ID, err)
			}
		}

		act.ImageURL = &imageURL
		if err := db.Save(&act).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la actividad")
		}

		return c.JSON(fiber.Map{"image_url": imageURL})
	}
}
