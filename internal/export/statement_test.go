package export

import (
	"testing"
	"time"

	"asura-backend/internal/arrears"
	"asura-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementRows(t *testing.T) {
	fee := decimal.NewFromInt(7000)
	paidOn := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	verifiedOn := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	txID := "MP-777"

	payments := []models.Payment{
		{
			DueDate:          time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			Amount:           fee,
			Status:           models.PaymentPaid,
			PaymentDate:      &paidOn,
			TransactionID:    &txID,
			VerificationDate: &verifiedOn,
		},
		{
			DueDate: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			Amount:  fee,
			Status:  models.PaymentPending,
		},
	}

	rows := StatementRows(payments)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"01/03/2024", "$ 7.000,00", "Pagado", "10/03/2024", "MP-777", "11/03/2024"}, rows[0])
	assert.Equal(t, []string{"01/04/2024", "$ 7.000,00", "Pendiente", "-", "-", "-"}, rows[1])
}

func TestTotalPending_SoloSumaPendientes(t *testing.T) {
	fee := decimal.NewFromInt(7000)
	payments := []models.Payment{
		{Amount: fee, Status: models.PaymentPaid},
		{Amount: fee, Status: models.PaymentPending},
		{Amount: fee, Status: models.PaymentPending},
	}

	assert.True(t, TotalPending(payments).Equal(decimal.NewFromInt(14000)))
	assert.True(t, TotalPending(nil).IsZero())
}

func TestControlRows(t *testing.T) {
	last := time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)

	summary := &arrears.OrganizationSummary{
		Affiliates: []arrears.AffiliateSummary{
			{
				MemberNumber: "0001",
				Name:         "Zulma",
				Status:       arrears.StatusDelinquent,
				PendingCount: 2,
				TotalOwed:    decimal.NewFromInt(14000),
			},
			{
				MemberNumber:    "0002",
				Name:            "Berta",
				Status:          arrears.StatusCurrent,
				TotalOwed:       decimal.Zero,
				LastPaymentDate: &last,
			},
		},
		TotalDelinquents: 1,
		GrandTotalOwed:   decimal.NewFromInt(14000),
	}

	rows := ControlRows(summary)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"0001", "Zulma", "Adeuda", "2", "$ 14.000,00", "-"}, rows[0])
	assert.Equal(t, []string{"0002", "Berta", "Al día", "0", "$ 0,00", "02/02/2024"}, rows[1])
}
