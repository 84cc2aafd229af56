package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatCurrency - Formato es-AR: separador de miles con punto y decimales
// con coma ("$ 7.000,00"). Trabaja sobre el decimal, sin pasar por float.
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.StringFixed(2) // "-7000.00"

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$ %s,%s", sign, b.String(), decPart)
}

// FormatLongDate - Fecha larga en castellano: "15 de marzo de 2024".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatShortDate - "15/03/2024".
func FormatShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatPeriod - Período de una cuota: "marzo 2024".
func FormatPeriod(t time.Time) string {
	return fmt.Sprintf("%s %d", spanishMonths[t.Month()-1], t.Year())
}
