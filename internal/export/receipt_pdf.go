package export

import (
	"bytes"
	"fmt"

	"asura-backend/internal/models"

	"github.com/go-pdf/fpdf"
)

// ReceiptPDF - Comprobante de pago de una cuota, con un QR de verificación
// que codifica afiliado, período y transacción. Solo tiene sentido para
// cuotas pagadas; el handler lo valida antes de llamar acá.
func ReceiptPDF(aff *models.Affiliate, p *models.Payment, baseURL string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("ASURA - Recibo de Pago"))
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr("Afiliado: "+aff.Name))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("N° Afiliado: "+aff.MemberNumber()+"  -  DNI: "+aff.DocumentID))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Período: "+FormatPeriod(p.DueDate)))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Monto: "+FormatCurrency(p.Amount)))
	pdf.Ln(7)

	if p.PaymentDate != nil {
		pdf.Cell(0, 7, tr("Fecha de Pago: "+FormatShortDate(*p.PaymentDate)))
		pdf.Ln(7)
	}
	if p.TransactionID != nil && *p.TransactionID != "" {
		pdf.Cell(0, 7, tr("ID Transacción: "+*p.TransactionID))
		pdf.Ln(7)
	}
	pdf.Ln(5)

	verifyURL := fmt.Sprintf("%s/verificar/pago/%d", baseURL, p.ID)
	png, err := QRPNG(verifyURL)
	if err != nil {
		return nil, err
	}
	if err := embedPNG(pdf, "receipt-qr", png, 50, 40); err != nil {
		return nil, err
	}

	pdf.Ln(45)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, tr("Escaneá el código para verificar este recibo."))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// embedPNG registra un PNG en memoria y lo dibuja en la posición actual.
func embedPNG(pdf *fpdf.Fpdf, name string, png []byte, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if pdf.Err() {
		return pdf.Error()
	}
	x := pdf.GetX()
	y := pdf.GetY()
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if pdf.Err() {
		return pdf.Error()
	}
	return nil
}
