package payment

import (
	"testing"
	"time"

	"asura-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fee = decimal.NewFromInt(7000)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSchedule_AltaMarzoConsultaJunio(t *testing.T) {
	// Alta el 15 de marzo, consulta en junio: 4 cuotas (marzo a junio)
	entries, err := GenerateSchedule(date(2024, time.March, 15), fee, 1, date(2024, time.June, 20))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, date(2024, time.March, 1), entries[0].DueDate)
	assert.Equal(t, date(2024, time.April, 1), entries[1].DueDate)
	assert.Equal(t, date(2024, time.May, 1), entries[2].DueDate)
	assert.Equal(t, date(2024, time.June, 1), entries[3].DueDate)

	for _, e := range entries {
		assert.True(t, e.Amount.Equal(fee))
	}
}

func TestGenerateSchedule_CantidadIgualMesesCalendario(t *testing.T) {
	cases := []struct {
		name    string
		from    time.Time
		to      time.Time
		months  int
	}{
		{"mismo mes", date(2024, time.March, 15), date(2024, time.March, 28), 1},
		{"cruce de año", date(2023, time.November, 3), date(2024, time.February, 10), 4},
		{"un año entero", date(2023, time.January, 1), date(2023, time.December, 31), 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := GenerateSchedule(tc.from, fee, 10, tc.to)
			require.NoError(t, err)
			assert.Len(t, entries, tc.months)
			assert.Equal(t, tc.months, MonthsBetween(tc.from, tc.to))
		})
	}
}

func TestGenerateSchedule_VencimientosMensualesAscendentes(t *testing.T) {
	entries, err := GenerateSchedule(date(2023, time.October, 20), fee, 5, date(2024, time.March, 1))
	require.NoError(t, err)

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1].DueDate, entries[i].DueDate
		assert.True(t, cur.After(prev), "las cuotas deben venir en orden ascendente")
		assert.Equal(t, prev.AddDate(0, 1, 0), cur, "cada cuota avanza exactamente un mes")
		assert.Equal(t, 5, cur.Day())
	}
}

func TestGenerateSchedule_Errores(t *testing.T) {
	t.Run("alta futura", func(t *testing.T) {
		_, err := GenerateSchedule(date(2025, time.January, 1), fee, 1, date(2024, time.June, 1))
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("monto cero", func(t *testing.T) {
		_, err := GenerateSchedule(date(2024, time.January, 1), decimal.Zero, 1, date(2024, time.June, 1))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("monto negativo", func(t *testing.T) {
		_, err := GenerateSchedule(date(2024, time.January, 1), decimal.NewFromInt(-10), 1, date(2024, time.June, 1))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("día de vencimiento fuera de rango", func(t *testing.T) {
		_, err := GenerateSchedule(date(2024, time.January, 1), fee, 29, date(2024, time.June, 1))
		assert.ErrorIs(t, err, ErrInvalidDueDay)

		_, err = GenerateSchedule(date(2024, time.January, 1), fee, 0, date(2024, time.June, 1))
		assert.ErrorIs(t, err, ErrInvalidDueDay)
	})
}

func TestOverdue(t *testing.T) {
	today := date(2024, time.June, 15)

	assert.True(t, Overdue(models.PaymentPending, date(2024, time.June, 14), today))
	assert.False(t, Overdue(models.PaymentPending, date(2024, time.June, 15), today), "vence hoy, todavía no está vencida")
	assert.False(t, Overdue(models.PaymentPending, date(2024, time.July, 1), today))
	assert.False(t, Overdue(models.PaymentPaid, date(2024, time.January, 1), today), "una cuota pagada nunca está vencida")
}

func TestOverdue_IgnoraLaHora(t *testing.T) {
	due := time.Date(2024, time.June, 15, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, time.June, 15, 0, 1, 0, 0, time.UTC)
	assert.False(t, Overdue(models.PaymentPending, due, today))
}
