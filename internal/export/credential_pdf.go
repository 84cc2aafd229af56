package export

import (
	"bytes"
	"fmt"

	"asura-backend/internal/models"

	"github.com/go-pdf/fpdf"
)

// CredentialPDF - Credencial de afiliado en formato tarjeta (85x54 mm),
// con el QR que apunta a la ficha pública del afiliado.
func CredentialPDF(aff *models.Affiliate, baseURL string) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	const cardX, cardY = 20.0, 20.0
	const cardW, cardH = 85.0, 54.0

	pdf.SetFillColor(22, 163, 74)
	pdf.Rect(cardX, cardY, cardW, 12, "F")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(cardX+3, cardY+3)
	pdf.Cell(cardW-6, 6, tr("ASURA - Credencial de Afiliado"))

	pdf.SetDrawColor(22, 163, 74)
	pdf.Rect(cardX, cardY, cardW, cardH, "D")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(cardX+3, cardY+16)
	pdf.Cell(cardW-30, 6, tr(aff.Name))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(cardX+3, cardY+24)
	pdf.Cell(cardW-30, 5, tr("N° Afiliado: "+aff.MemberNumber()))
	pdf.SetXY(cardX+3, cardY+30)
	pdf.Cell(cardW-30, 5, tr("DNI: "+aff.DocumentID))
	pdf.SetXY(cardX+3, cardY+36)
	pdf.Cell(cardW-30, 5, tr("Alta: "+FormatShortDate(aff.JoinDate)))

	cardURL := fmt.Sprintf("%s/afiliados/%d", baseURL, aff.ID)
	png, err := QRPNG(cardURL)
	if err != nil {
		return nil, err
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("credential-qr", opts, bytes.NewReader(png))
	if pdf.Err() {
		return nil, pdf.Error()
	}
	pdf.ImageOptions("credential-qr", cardX+cardW-28, cardY+cardH-32, 25, 25, false, opts, 0, "")
	if pdf.Err() {
		return nil, pdf.Error()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
