package arrears

import (
	"testing"
	"time"

	"asura-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fee = decimal.NewFromInt(5000)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pending(due time.Time, amount decimal.Decimal) models.Payment {
	return models.Payment{DueDate: due, Amount: amount, Status: models.PaymentPending}
}

func paid(due, paidOn time.Time, amount decimal.Decimal) models.Payment {
	return models.Payment{DueDate: due, Amount: amount, Status: models.PaymentPaid, PaymentDate: &paidOn}
}

func TestSummarize_DosCuotasPendientes(t *testing.T) {
	aff := &models.Affiliate{Name: "Carlos Gómez", DocumentID: "28111222"}
	aff.ID = 7

	payments := []models.Payment{
		paid(date(2024, time.January, 1), date(2024, time.January, 5), fee),
		pending(date(2024, time.February, 1), fee),
		pending(date(2024, time.March, 1), fee),
	}

	s := Summarize(aff, payments)

	assert.Equal(t, StatusDelinquent, s.Status)
	assert.Equal(t, 2, s.PendingCount)
	assert.True(t, s.TotalOwed.Equal(decimal.NewFromInt(10000)), "2 x 5000 = 10000 exacto")
	assert.Equal(t, "0007", s.MemberNumber)
	require.NotNil(t, s.LastPaymentDate)
	assert.Equal(t, date(2024, time.January, 5), *s.LastPaymentDate)
}

func TestSummarize_SumaIndependienteDelOrden(t *testing.T) {
	aff := &models.Affiliate{Name: "Ana", DocumentID: "1"}
	aff.ID = 1

	a := decimal.RequireFromString("7000.10")
	b := decimal.RequireFromString("6999.90")
	c := decimal.RequireFromString("0.01")

	forward := Summarize(aff, []models.Payment{
		pending(date(2024, time.January, 1), a),
		pending(date(2024, time.February, 1), b),
		pending(date(2024, time.March, 1), c),
	})
	backward := Summarize(aff, []models.Payment{
		pending(date(2024, time.March, 1), c),
		pending(date(2024, time.February, 1), b),
		pending(date(2024, time.January, 1), a),
	})

	assert.True(t, forward.TotalOwed.Equal(backward.TotalOwed))
	assert.True(t, forward.TotalOwed.Equal(decimal.RequireFromString("14000.01")))
}

func TestSummarize_SinCuotasQuedaAlDia(t *testing.T) {
	aff := &models.Affiliate{Name: "Recién Alta", DocumentID: "2"}
	aff.ID = 2

	s := Summarize(aff, nil)

	assert.Equal(t, StatusCurrent, s.Status)
	assert.Equal(t, 0, s.PendingCount)
	assert.True(t, s.TotalOwed.IsZero())
	assert.Nil(t, s.LastPaymentDate)
}

func TestSummarize_TodoPagadoQuedaAlDia(t *testing.T) {
	aff := &models.Affiliate{Name: "Al Día", DocumentID: "3"}
	aff.ID = 3

	s := Summarize(aff, []models.Payment{
		paid(date(2024, time.January, 1), date(2024, time.January, 2), fee),
		paid(date(2024, time.February, 1), date(2024, time.February, 3), fee),
	})

	assert.Equal(t, StatusCurrent, s.Status)
	require.NotNil(t, s.LastPaymentDate)
	assert.Equal(t, date(2024, time.February, 3), *s.LastPaymentDate)
}

func TestSummarizeOrganization_TotalesYOrden(t *testing.T) {
	a := models.Affiliate{Name: "Zulma", DocumentID: "10"}
	a.ID = 1
	b := models.Affiliate{Name: "Berta", DocumentID: "11"}
	b.ID = 2
	c := models.Affiliate{Name: "Coco", DocumentID: "12"}
	c.ID = 3

	byAffiliate := map[uint][]models.Payment{
		// Zulma debe 2 cuotas, Berta 1, Coco está al día
		a.ID: {pending(date(2024, time.January, 1), fee), pending(date(2024, time.February, 1), fee)},
		b.ID: {pending(date(2024, time.February, 1), fee)},
		c.ID: {paid(date(2024, time.February, 1), date(2024, time.February, 1), fee)},
	}

	org := SummarizeOrganization([]models.Affiliate{a, b, c}, byAffiliate)

	assert.Equal(t, 2, org.TotalDelinquents)
	assert.True(t, org.GrandTotalOwed.Equal(decimal.NewFromInt(15000)))

	// Mayor deuda primero
	require.Len(t, org.Affiliates, 3)
	assert.Equal(t, "Zulma", org.Affiliates[0].Name)
	assert.Equal(t, "Berta", org.Affiliates[1].Name)
	assert.Equal(t, "Coco", org.Affiliates[2].Name)
}

func TestSummarizeOrganization_EmpateOrdenaPorNombre(t *testing.T) {
	a := models.Affiliate{Name: "Zulma", DocumentID: "10"}
	a.ID = 1
	b := models.Affiliate{Name: "Berta", DocumentID: "11"}
	b.ID = 2

	byAffiliate := map[uint][]models.Payment{
		a.ID: {pending(date(2024, time.January, 1), fee)},
		b.ID: {pending(date(2024, time.January, 1), fee)},
	}

	org := SummarizeOrganization([]models.Affiliate{a, b}, byAffiliate)

	require.Len(t, org.Affiliates, 2)
	assert.Equal(t, "Berta", org.Affiliates[0].Name)
	assert.Equal(t, "Zulma", org.Affiliates[1].Name)
}
