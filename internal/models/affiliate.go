package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

type MaritalStatus string

const (
	MaritalSingle              MaritalStatus = "single"
	MaritalMarried             MaritalStatus = "married"
	MaritalDivorced            MaritalStatus = "divorced"
	MaritalWidowed             MaritalStatus = "widowed"
	MaritalDomesticPartnership MaritalStatus = "domestic_partnership"
)

type EmploymentType string

const (
	EmploymentFormal     EmploymentType = "formal"
	EmploymentInformal   EmploymentType = "informal"
	EmploymentUnemployed EmploymentType = "unemployed"
	EmploymentRetired    EmploymentType = "retired"
	EmploymentTemporary  EmploymentType = "temporary"
	EmploymentOther      EmploymentType = "other"
)

// Affiliate - Ficha completa del afiliado. Los campos socioeconómicos son
// opcionales: el censo se completa de a poco y muchas fichas viejas no los tienen.
type Affiliate struct {
	ID         uint       `gorm:"primaryKey"`
	Name       string     `gorm:"size:150;not null;index"`
	DocumentID string     `gorm:"size:20;uniqueIndex;not null"` // DNI
	Phone      string     `gorm:"size:30"`
	Address    string     `gorm:"size:255"`
	Email      *string    `gorm:"size:100"`
	BirthDate  *time.Time
	JoinDate   time.Time `gorm:"not null"`
	PhotoURL   *string   `gorm:"size:255"`
	Active     bool      `gorm:"not null;default:true"`
	InactiveSince *time.Time
	Notes         *string `gorm:"size:1000"`

	// Estado civil e hijos
	MaritalStatus *MaritalStatus `gorm:"size:30"`
	ChildrenCount *int

	HasMobilePhone bool `gorm:"not null;default:false"`

	// Situación laboral
	EmploymentType         *EmploymentType `gorm:"size:20"`
	EmploymentOtherDetails *string         `gorm:"size:255"`
	EmployerName           *string         `gorm:"size:150"`
	EmploymentYears        *int
	EmploymentSector       *string `gorm:"size:10"` // public | private

	// Educación
	EducationLevel  *string `gorm:"size:30"`
	EducationStatus *string `gorm:"size:20"`

	// Vivienda
	HousingSituation    *string `gorm:"size:20"`
	HousingOtherDetails *string `gorm:"size:255"`

	// Actividad de recolección
	DoesCollection          bool           `gorm:"not null;default:false"`
	CollectionMaterials     pq.StringArray `gorm:"type:text[]"`
	CollectionSaleLocation  *string        `gorm:"size:255"`
	CollectionFrequency     *string        `gorm:"size:100"`
	CollectionMonthlyIncome *int

	// Beneficios sociales
	HasSocialBenefits     bool           `gorm:"not null;default:false"`
	SocialBenefitsDetails pq.StringArray `gorm:"type:text[]"`

	Payments []Payment `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberNumber - Número de afiliado que figura en la credencial y los reportes.
// Se deriva del ID para que no cambie cuando se elimina otra ficha.
func (a *Affiliate) MemberNumber() string {
	return fmt.Sprintf("%04d", a.ID)
}
