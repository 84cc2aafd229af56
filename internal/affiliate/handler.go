package affiliate

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"asura-backend/internal/config"
	"asura-backend/internal/models"
	"asura-backend/internal/payment"
	"asura-backend/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var validate = validator.New()

type AffiliateRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=150"`
	DocumentID string  `json:"document_id" validate:"required,min=6,max=20"`
	Phone      string  `json:"phone" validate:"max=30"`
	Address    string  `json:"address" validate:"max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	BirthDate  *string `json:"birth_date"` // "1980-05-20"
	JoinDate   string  `json:"join_date" validate:"required"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`

	MaritalStatus *string `json:"marital_status" validate:"omitempty,oneof=single married divorced widowed domestic_partnership"`
	ChildrenCount *int    `json:"children_count" validate:"omitempty,gte=0"`

	HasMobilePhone bool `json:"has_mobile_phone"`

	EmploymentType         *string `json:"employment_type" validate:"omitempty,oneof=formal informal unemployed retired temporary other"`
	EmploymentOtherDetails *string `json:"employment_other_details"`
	EmployerName           *string `json:"employer_name"`
	EmploymentYears        *int    `json:"employment_years" validate:"omitempty,gte=0"`
	EmploymentSector       *string `json:"employment_sector" validate:"omitempty,oneof=public private"`

	EducationLevel  *string `json:"education_level"`
	EducationStatus *string `json:"education_status" validate:"omitempty,oneof=completed incomplete in_progress"`

	HousingSituation    *string `json:"housing_situation" validate:"omitempty,oneof=owned rented borrowed homeless other"`
	HousingOtherDetails *string `json:"housing_other_details"`

	DoesCollection          bool     `json:"does_collection"`
	CollectionMaterials     []string `json:"collection_materials"`
	CollectionSaleLocation  *string  `json:"collection_sale_location"`
	CollectionFrequency     *string  `json:"collection_frequency"`
	CollectionMonthlyIncome *int     `json:"collection_monthly_income" validate:"omitempty,gte=0"`

	HasSocialBenefits     bool     `json:"has_social_benefits"`
	SocialBenefitsDetails []string `json:"social_benefits_details"`
}

type AffiliateResponse struct {
	ID            uint    `json:"id"`
	MemberNumber  string  `json:"member_number"`
	Name          string  `json:"name"`
	DocumentID    string  `json:"document_id"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	Email         *string `json:"email"`
	BirthDate     *string `json:"birth_date"`
	JoinDate      string  `json:"join_date"`
	PhotoURL      *string `json:"photo_url"`
	Active        bool    `json:"active"`
	InactiveSince *string `json:"inactive_since"`
	Notes         *string `json:"notes"`

	MaritalStatus *string `json:"marital_status"`
	ChildrenCount *int    `json:"children_count"`

	HasMobilePhone bool `json:"has_mobile_phone"`

	EmploymentType         *string `json:"employment_type"`
	EmploymentOtherDetails *string `json:"employment_other_details"`
	EmployerName           *string `json:"employer_name"`
	EmploymentYears        *int    `json:"employment_years"`
	EmploymentSector       *string `json:"employment_sector"`

	EducationLevel  *string `json:"education_level"`
	EducationStatus *string `json:"education_status"`

	HousingSituation    *string `json:"housing_situation"`
	HousingOtherDetails *string `json:"housing_other_details"`

	DoesCollection          bool     `json:"does_collection"`
	CollectionMaterials     []string `json:"collection_materials"`
	CollectionSaleLocation  *string  `json:"collection_sale_location"`
	CollectionFrequency     *string  `json:"collection_frequency"`
	CollectionMonthlyIncome *int     `json:"collection_monthly_income"`

	HasSocialBenefits     bool     `json:"has_social_benefits"`
	SocialBenefitsDetails []string `json:"social_benefits_details"`

	CreatedAt string `json:"created_at"`
}

func toResponse(a *models.Affiliate) AffiliateResponse {
	r := AffiliateResponse{
		ID:           a.ID,
		MemberNumber: a.MemberNumber(),
		Name:         a.Name,
		DocumentID:   a.DocumentID,
		Phone:        a.Phone,
		Address:      a.Address,
		Email:        a.Email,
		JoinDate:     a.JoinDate.Format("2006-01-02"),
		PhotoURL:     a.PhotoURL,
		Active:       a.Active,
		Notes:        a.Notes,

		ChildrenCount:  a.ChildrenCount,
		HasMobilePhone: a.HasMobilePhone,

		EmploymentOtherDetails: a.EmploymentOtherDetails,
		EmployerName:           a.EmployerName,
		EmploymentYears:        a.EmploymentYears,
		EmploymentSector:       a.EmploymentSector,

		EducationLevel:  a.EducationLevel,
		EducationStatus: a.EducationStatus,

		HousingSituation:    a.HousingSituation,
		HousingOtherDetails: a.HousingOtherDetails,

		DoesCollection:          a.DoesCollection,
		CollectionMaterials:     a.CollectionMaterials,
		CollectionSaleLocation:  a.CollectionSaleLocation,
		CollectionFrequency:     a.CollectionFrequency,
		CollectionMonthlyIncome: a.CollectionMonthlyIncome,

		HasSocialBenefits:     a.HasSocialBenefits,
		SocialBenefitsDetails: a.SocialBenefitsDetails,

		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if a.BirthDate != nil {
		s := a.BirthDate.Format("2006-01-02")
		r.BirthDate = &s
	}
	if a.InactiveSince != nil {
		s := a.InactiveSince.Format("2006-01-02")
		r.InactiveSince = &s
	}
	if a.MaritalStatus != nil {
		s := string(*a.MaritalStatus)
		r.MaritalStatus = &s
	}
	if a.EmploymentType != nil {
		s := string(*a.EmploymentType)
		r.EmploymentType = &s
	}
	return r
}

func applyRequest(a *models.Affiliate, body *AffiliateRequest) error {
	joinDate, err := time.Parse("2006-01-02", body.JoinDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "El formato de join_date debe ser 'YYYY-MM-DD'")
	}

	a.Name = strings.TrimSpace(body.Name)
	a.DocumentID = strings.TrimSpace(body.DocumentID)
	a.Phone = strings.TrimSpace(body.Phone)
	a.Address = strings.TrimSpace(body.Address)
	a.Email = body.Email
	a.JoinDate = joinDate
	a.Notes = body.Notes

	if body.BirthDate != nil && *body.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", *body.BirthDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El formato de birth_date debe ser 'YYYY-MM-DD'")
		}
		a.BirthDate = &bd
	} else {
		a.BirthDate = nil
	}

	if body.MaritalStatus != nil {
		ms := models.MaritalStatus(*body.MaritalStatus)
		a.MaritalStatus = &ms
	} else {
		a.MaritalStatus = nil
	}
	a.ChildrenCount = body.ChildrenCount
	a.HasMobilePhone = body.HasMobilePhone

	if body.EmploymentType != nil {
		et := models.EmploymentType(*body.EmploymentType)
		a.EmploymentType = &et
	} else {
		a.EmploymentType = nil
	}
	a.EmploymentOtherDetails = body.EmploymentOtherDetails
	a.EmployerName = body.EmployerName
	a.EmploymentYears = body.EmploymentYears
	a.EmploymentSector = body.EmploymentSector

	a.EducationLevel = body.EducationLevel
	a.EducationStatus = body.EducationStatus

	a.HousingSituation = body.HousingSituation
	a.HousingOtherDetails = body.HousingOtherDetails

	a.DoesCollection = body.DoesCollection
	a.CollectionMaterials = pq.StringArray(body.CollectionMaterials)
	a.CollectionSaleLocation = body.CollectionSaleLocation
	a.CollectionFrequency = body.CollectionFrequency
	a.CollectionMonthlyIncome = body.CollectionMonthlyIncome

	a.HasSocialBenefits = body.HasSocialBenefits
	a.SocialBenefitsDetails = pq.StringArray(body.SocialBenefitsDetails)

	return nil
}

// GET /api/affiliates?q=...&active=true
// Listado ordenado por nombre, con búsqueda por nombre o DNI.
func ListAffiliatesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Affiliate{})

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR document_id LIKE ?", like, like)
		}
		if activeStr := c.Query("active"); activeStr != "" {
			dbq = dbq.Where("active = ?", activeStr == "true")
		}

		var rows []models.Affiliate
		if err := dbq.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los afiliados")
		}

		resp := make([]AffiliateResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/affiliates/:id
func GetAffiliateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		return c.JSON(toResponse(&aff))
	}
}

// POST /api/affiliates
// Da de alta la ficha y siembra el libro de cuotas desde la fecha de alta.
func CreateAffiliateHandler(db *gorm.DB, paySvc *payment.Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AffiliateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos: "+err.Error())
		}

		var aff models.Affiliate
		aff.Active = true
		if err := applyRequest(&aff, &body); err != nil {
			return err
		}

		var count int64
		db.Model(&models.Affiliate{}).Where("document_id = ?", aff.DocumentID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Ya existe un afiliado con ese DNI")
		}

		if err := db.Create(&aff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el afiliado")
		}

		// Siembra de cuotas. Un alta con fecha futura deja el libro vacío
		// hasta que llegue el mes; no es un error.
		if _, err := paySvc.EnsureSchedule(aff.ID, cfg.MonthlyFee, cfg.DueDay, time.Now()); err != nil &&
			!errors.Is(err, payment.ErrInvalidDateRange) {
			log.Printf("No se pudieron generar las cuotas del afiliado %d: %v", aff.ID, err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&aff))
	}
}

// PUT /api/affiliates/:id
func UpdateAffiliateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		var body AffiliateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}

		if err := validate.Struct(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos: "+err.Error())
		}

		if err := applyRequest(&aff, &body); err != nil {
			return err
		}

		if err := db.Save(&aff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el afiliado")
		}

		return c.JSON(toResponse(&aff))
	}
}

// PUT /api/affiliates/:id/active
// Activa o desactiva la ficha; al desactivar se registra desde cuándo.
func ToggleActiveHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		aff.Active = !aff.Active
		if aff.Active {
			aff.InactiveSince = nil
		} else {
			now := time.Now()
			aff.InactiveSince = &now
		}

		if err := db.Save(&aff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el afiliado")
		}

		return c.JSON(toResponse(&aff))
	}
}

// DELETE /api/affiliates/:id
// Baja definitiva: elimina la foto, las cuotas (cascada) y la ficha.
func DeleteAffiliateHandler(db *gorm.DB, store *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		if aff.PhotoURL != nil {
			if err := store.Remove(*aff.PhotoURL); err != nil {
				log.Printf("No se pudo eliminar la foto del afiliado %d: %v", aff.ID, err)
			}
		}

		// La cascada de la FK no alcanza en todos los esquemas viejos;
		// se borran las cuotas explícitamente antes que la ficha.
		if err := db.Where("affiliate_id = ?", aff.ID).Delete(&models.Payment{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron eliminar las cuotas del afiliado")
		}

		if err := db.Delete(&aff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar el afiliado")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/affiliates/:id/photo
// Sube o reemplaza la foto de la credencial (multipart: file).
func UploadPhotoHandler(db *gorm.DB, store *storage.Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var aff models.Affiliate
		if err := db.First(&aff, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Afiliado no encontrado")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Falta el archivo de la foto")
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

		photoURL, err := store.Save(storage.BucketAffiliatePhotos, name, data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la foto")
		}

		// Si había una foto anterior se elimina para no acumular basura
		if aff.PhotoURL != nil {
			if err := store.Remove(*aff.PhotoURL); err != nil {
				log.Printf("No se pudo eliminar la foto anterior del afiliado %d: %v", aff.ID, err)
			}
		}

		aff.PhotoURL = &photoURL
		if err := db.Save(&aff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el afiliado")
		}

		return c.JSON(fiber.Map{"photo_url": photoURL})
	}
}
