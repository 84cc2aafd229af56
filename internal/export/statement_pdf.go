package export

import (
	"bytes"
	"time"

	"asura-backend/internal/models"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var statementHeader = []string{"Vencimiento", "Monto", "Estado", "Fecha de Pago", "ID Transacción", "Verificación"}

// StatementRows arma la tabla del resumen: una fila por cuota, en el mismo
// orden en que llegan. Separada del renderizado para poder testearla.
func StatementRows(payments []models.Payment) [][]string {
	rows := make([][]string, 0, len(payments))
	for i := range payments {
		p := &payments[i]

		status := "Pendiente"
		if p.Status == models.PaymentPaid {
			status = "Pagado"
		}

		paymentDate := "-"
		if p.PaymentDate != nil {
			paymentDate = FormatShortDate(*p.PaymentDate)
		}

		transactionID := "-"
		if p.TransactionID != nil && *p.TransactionID != "" {
			transactionID = *p.TransactionID
		}

		verification := "-"
		if p.VerificationDate != nil {
			verification = FormatShortDate(*p.VerificationDate)
		}

		rows = append(rows, []string{
			FormatShortDate(p.DueDate),
			FormatCurrency(p.Amount),
			status,
			paymentDate,
			transactionID,
			verification,
		})
	}
	return rows
}

// TotalPending suma el monto adeudado. La suma es sobre decimales, exacta
// e independiente del orden.
func TotalPending(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		if payments[i].Status == models.PaymentPending {
			total = total.Add(payments[i].Amount)
		}
	}
	return total
}

// StatementPDF - "ASURA - Resumen de Pagos": el libro completo de cuotas de
// un afiliado más el total adeudado.
func StatementPDF(aff *models.Affiliate, payments []models.Payment, paymentAlias string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, tr("ASURA - Resumen de Pagos"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr("Afiliado: "+aff.Name))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr("N° Afiliado: "+aff.MemberNumber()+"  -  DNI: "+aff.DocumentID))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr("Alias de Pago: "+paymentAlias))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr("Fecha de emisión: "+FormatLongDate(time.Now())))
	pdf.Ln(12)

	widths := []float64{28, 30, 25, 30, 42, 30}
	drawTable(pdf, tr, statementHeader, StatementRows(payments), widths)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Total Adeudado: "+FormatCurrency(TotalPending(payments))))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawTable dibuja una tabla simple con encabezado verde, al estilo de los
// resúmenes que imprime el sindicato.
func drawTable(pdf *fpdf.Fpdf, tr func(string) string, header []string, rows [][]string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(22, 163, 74)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
