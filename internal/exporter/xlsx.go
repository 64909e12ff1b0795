package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	// MediaTypeXLSX is the media type of workbook downloads.
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// SheetName is the single sheet of an exported workbook.
	SheetName = "Events"
)

// XLSXEncoder writes table rows to a workbook. The first row is the header.
type XLSXEncoder struct{}

// NewXLSXEncoder creates a workbook encoder.
func NewXLSXEncoder() *XLSXEncoder { return &XLSXEncoder{} }

func (XLSXEncoder) Encode(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	width := 0
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
		if len(row) > width {
			width = len(row)
		}
	}

	if len(rows) > 0 && width > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("header style: %w", err)
		}
		if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
			return nil, fmt.Errorf("header style: %w", err)
		}
		last, err := excelize.ColumnNumberToName(width)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, "A", last, 18); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (XLSXEncoder) MediaType() string { return MediaTypeXLSX }

func (XLSXEncoder) Extension() string { return ".xlsx" }
