package datastore

import (
	"time"

	"github.com/aleister1102/pricefeed/internal/models"
)

// ToParquetRecords converts price records into the snapshot schema.
func ToParquetRecords(supplier, runID string, capturedAt time.Time, records []models.PriceRecord) []models.ParquetPriceRecord {
	out := make([]models.ParquetPriceRecord, 0, len(records))
	millis := capturedAt.UnixMilli()
	for _, r := range records {
		out = append(out, models.ParquetPriceRecord{
			Supplier:    supplier,
			Codigo:      r.Codigo,
			Descripcion: r.Descripcion,
			Marca:       r.Marca,
			Precio:      r.Precio,
			RunID:       runID,
			CapturedAt:  millis,
		})
	}
	return out
}

// FromParquetRecord converts a stored row back into a price record.
func FromParquetRecord(row models.ParquetPriceRecord) models.PriceRecord {
	return models.PriceRecord{
		Codigo:      row.Codigo,
		Descripcion: row.Descripcion,
		Marca:       row.Marca,
		Precio:      row.Precio,
	}
}
