// internal/export/excel.go
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// WriteExcel exports records as an xlsx workbook with a styled header row
// and an auto filter over the data range
func WriteExcel(path string, dt types.DocumentType, records []types.Record) error {
	file := excelize.NewFile()
	defer file.Close()

	sheetName := dt.Collection()
	file.SetSheetName(file.GetSheetName(0), sheetName)

	columns := Columns(dt)
	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to create header style")
	}

	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return utils.WrapError(err, utils.ErrCodeExportFailed, "invalid header coordinates")
		}
		if err := file.SetCellValue(sheetName, cell, column); err != nil {
			return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to write header")
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	file.SetCellStyle(sheetName, "A1", lastHeaderCell, headerStyle)

	rowIndex := 2
	for _, record := range records {
		row := Row(record)
		if row == nil {
			continue
		}
		for i, value := range row {
			cell, err := excelize.CoordinatesToCellName(i+1, rowIndex)
			if err != nil {
				return utils.WrapError(err, utils.ErrCodeExportFailed, "invalid cell coordinates")
			}
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to write cell")
			}
		}
		rowIndex++
	}

	if rowIndex > 2 {
		lastCell, _ := excelize.CoordinatesToCellName(len(columns), rowIndex-1)
		if err := file.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
			return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to set auto filter")
		}
	}
	if err := file.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to freeze header")
	}

	if err := file.SaveAs(path); err != nil {
		return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to save workbook")
	}

	exportLogger.Info(fmt.Sprintf("Exported %d %s records to %s", len(records), dt, path))
	return nil
}
