package export

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"7000", "$ 7.000,00"},
		{"7000.5", "$ 7.000,50"},
		{"123", "$ 123,00"},
		{"1234567.89", "$ 1.234.567,89"},
		{"0", "$ 0,00"},
		{"-1500", "-$ 1.500,00"},
	}

	for _, tc := range cases {
		got := FormatCurrency(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatDates(t *testing.T) {
	d := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "15 de marzo de 2024", FormatLongDate(d))
	assert.Equal(t, "15/03/2024", FormatShortDate(d))
	assert.Equal(t, "marzo 2024", FormatPeriod(d))
}
