package arrears

import (
	"sort"
	"time"

	"asura-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCurrent    Status = "current"    // Al día
	StatusDelinquent Status = "delinquent" // Adeuda
)

// AffiliateSummary - Resumen de deuda de un afiliado. Es un dato derivado:
// se recalcula en cada consulta a partir de las cuotas, nunca se persiste.
type AffiliateSummary struct {
	AffiliateID     uint            `json:"affiliate_id"`
	MemberNumber    string          `json:"member_number"`
	Name            string          `json:"name"`
	DocumentID      string          `json:"document_id"`
	Status          Status          `json:"status"`
	PendingCount    int             `json:"pending_count"`
	TotalOwed       decimal.Decimal `json:"total_owed"`
	LastPaymentDate *time.Time      `json:"last_payment_date"`
}

type OrganizationSummary struct {
	Affiliates       []AffiliateSummary `json:"affiliates"`
	TotalDelinquents int                `json:"total_delinquents"`
	GrandTotalOwed   decimal.Decimal    `json:"grand_total_owed"`
}

// Summarize calcula el resumen de deuda sobre las cuotas de un afiliado.
// Un afiliado sin cuotas pendientes (incluso sin cuotas, caso de los recién
// dados de alta) queda "current". La suma es exacta e independiente del
// orden de las filas.
func Summarize(aff *models.Affiliate, payments []models.Payment) AffiliateSummary {
	summary := AffiliateSummary{
		AffiliateID:  aff.ID,
		MemberNumber: aff.MemberNumber(),
		Name:         aff.Name,
		DocumentID:   aff.DocumentID,
		Status:       StatusCurrent,
		TotalOwed:    decimal.Zero,
	}

	for i := range payments {
		p := &payments[i]
		switch p.Status {
		case models.PaymentPending:
			summary.PendingCount++
			summary.TotalOwed = summary.TotalOwed.Add(p.Amount)
		case models.PaymentPaid:
			if p.PaymentDate != nil &&
				(summary.LastPaymentDate == nil || p.PaymentDate.After(*summary.LastPaymentDate)) {
				summary.LastPaymentDate = p.PaymentDate
			}
		}
	}

	if summary.PendingCount > 0 {
		summary.Status = StatusDelinquent
	}

	return summary
}

// SummarizeOrganization arma el resumen global: un renglón por afiliado más
// los totales. El orden es determinístico: mayor deuda primero y, a igual
// deuda, por nombre ascendente.
func SummarizeOrganization(affiliates []models.Affiliate, paymentsByAffiliate map[uint][]models.Payment) OrganizationSummary {
	org := OrganizationSummary{
		Affiliates:     make([]AffiliateSummary, 0, len(affiliates)),
		GrandTotalOwed: decimal.Zero,
	}

	for i := range affiliates {
		aff := &affiliates[i]
		s := Summarize(aff, paymentsByAffiliate[aff.ID])
		org.Affiliates = append(org.Affiliates, s)
		org.GrandTotalOwed = org.GrandTotalOwed.Add(s.TotalOwed)
		if s.Status == StatusDelinquent {
			org.TotalDelinquents++
		}
	}

	sort.SliceStable(org.Affiliates, func(i, j int) bool {
		a, b := org.Affiliates[i], org.Affiliates[j]
		if !a.TotalOwed.Equal(b.TotalOwed) {
			return a.TotalOwed.GreaterThan(b.TotalOwed)
		}
		return a.Name < b.Name
	})

	return org
}
