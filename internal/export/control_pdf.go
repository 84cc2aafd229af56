package export

import (
	"bytes"
	"fmt"
	"time"

	"asura-backend/internal/arrears"

	"github.com/go-pdf/fpdf"
)

var controlHeader = []string{"N° Afiliado", "Nombre", "Estado", "Meses Adeudados", "Monto Total", "Último Pago"}

// ControlRows arma la tabla del control de cuotas, un renglón por afiliado
// en el orden en que vienen (mayor deuda primero).
func ControlRows(org *arrears.OrganizationSummary) [][]string {
	rows := make([][]string, 0, len(org.Affiliates))
	for i := range org.Affiliates {
		s := &org.Affiliates[i]

		status := "Al día"
		if s.Status == arrears.StatusDelinquent {
			status = "Adeuda"
		}

		lastPayment := "-"
		if s.LastPaymentDate != nil {
			lastPayment = FormatShortDate(*s.LastPaymentDate)
		}

		rows = append(rows, []string{
			s.MemberNumber,
			s.Name,
			status,
			fmt.Sprintf("%d", s.PendingCount),
			FormatCurrency(s.TotalOwed),
			lastPayment,
		})
	}
	return rows
}

// ControlPDF - "ASURA - Control de Cuotas": el estado de deuda de toda la
// organización más los totales al pie.
func ControlPDF(org *arrears.OrganizationSummary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, tr("ASURA - Control de Cuotas"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr("Fecha de emisión: "+FormatLongDate(time.Now())))
	pdf.Ln(12)

	widths := []float64{22, 55, 22, 30, 32, 24}
	drawTable(pdf, tr, controlHeader, ControlRows(org), widths)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Total de Deudores: %d", org.TotalDelinquents)))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr("Monto Total Adeudado: "+FormatCurrency(org.GrandTotalOwed)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
