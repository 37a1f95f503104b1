package normalizer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// ExportFileName is the name of a normalized list exported on day.
func ExportFileName(supplier string, day time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", supplier, day.Format("20060102"))
}

// exportXLSX writes records with the normalized header row to path.
func exportXLSX(path string, records []models.PriceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(models.NormalizedColumns))
	for i, col := range models.NormalizedColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Codigo, r.Descripcion, r.Marca, r.Precio}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return fmt.Errorf("failed to save xlsx file: %w", err)
	}
	return nil
}
