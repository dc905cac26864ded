// internal/export/csv.go
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// WriteCSV exports records as a CSV file with a header row
func WriteCSV(path string, dt types.DocumentType, records []types.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to create CSV file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Columns(dt)); err != nil {
		return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to write CSV header")
	}

	for _, record := range records {
		row := Row(record)
		if row == nil {
			continue
		}
		if err := writer.Write(row); err != nil {
			return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to write CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return utils.WrapError(err, utils.ErrCodeExportFailed, "failed to flush CSV")
	}

	exportLogger.Info(fmt.Sprintf("Exported %d %s records to %s", len(records), dt, path))
	return nil
}
