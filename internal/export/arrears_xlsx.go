package export

import (
	"bytes"
	"fmt"

	"asura-backend/internal/arrears"

	"github.com/xuri/excelize/v2"
)

// ControlXLSX genera el control de cuotas en Excel, con las mismas columnas
// que el PDF. Es el formato que se usa para trabajar la lista de deudores.
func ControlXLSX(org *arrears.OrganizationSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Control de Cuotas"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"16A34A"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range controlHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, row := range ControlRows(org) {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	footerRow := len(org.Affiliates) + 3
	labelCell, _ := excelize.CoordinatesToCellName(1, footerRow)
	valueCell, _ := excelize.CoordinatesToCellName(2, footerRow)
	f.SetCellValue(sheet, labelCell, "Total de Deudores")
	f.SetCellValue(sheet, valueCell, org.TotalDelinquents)
	f.SetCellStyle(sheet, labelCell, labelCell, boldStyle)

	labelCell, _ = excelize.CoordinatesToCellName(1, footerRow+1)
	valueCell, _ = excelize.CoordinatesToCellName(2, footerRow+1)
	f.SetCellValue(sheet, labelCell, "Monto Total Adeudado")
	f.SetCellValue(sheet, valueCell, FormatCurrency(org.GrandTotalOwed))
	f.SetCellStyle(sheet, labelCell, labelCell, boldStyle)

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 35)
	f.SetColWidth(sheet, "C", "F", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("no se pudo escribir el archivo Excel: %w", err)
	}
	return buf.Bytes(), nil
}
