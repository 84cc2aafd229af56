package arrears

import (
	"errors"

	"asura-backend/internal/models"

	"gorm.io/gorm"
)

var ErrAffiliateNotFound = errors.New("afiliado no encontrado")

// Service lee las cuotas y delega el cálculo en las funciones puras de este
// paquete. No escribe nada: la delincuencia es siempre un dato derivado.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) SummarizeAffiliate(affiliateID uint) (*AffiliateSummary, error) {
	var aff models.Affiliate
	if err := s.db.First(&aff, affiliateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Where("affiliate_id = ?", affiliateID).Find(&payments).Error; err != nil {
		return nil, err
	}

	summary := Summarize(&aff, payments)
	return &summary, nil
}

// SummarizeOrganization carga todos los afiliados y todas las cuotas en dos
// consultas y agrupa en memoria; evita el N+1 de pedir las cuotas afiliado
// por afiliado.
func (s *Service) SummarizeOrganization() (*OrganizationSummary, error) {
	var affiliates []models.Affiliate
	if err := s.db.Order("name asc").Find(&affiliates).Error; err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Find(&payments).Error; err != nil {
		return nil, err
	}

	byAffiliate := make(map[uint][]models.Payment, len(affiliates))
	for i := range payments {
		p := payments[i]
		byAffiliate[p.AffiliateID] = append(byAffiliate[p.AffiliateID], p)
	}

	org := SummarizeOrganization(affiliates, byAffiliate)
	return &org, nil
}
