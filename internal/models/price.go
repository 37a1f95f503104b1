package models

// Column names of the normalized price list schema.
const (
	ColumnCodigo      = "CODIGO"
	ColumnDescripcion = "DESCRIPCION"
	ColumnMarca       = "MARCA"
	ColumnPrecio      = "PRECIO"
)

// NormalizedColumns is the column order of every exported price list.
var NormalizedColumns = []string{ColumnCodigo, ColumnDescripcion, ColumnMarca, ColumnPrecio}

// PriceRecord is one row of a normalized supplier price list.
type PriceRecord struct {
	Codigo      string  `json:"codigo"`
	Descripcion string  `json:"descripcion"`
	Marca       string  `json:"marca"`
	Precio      float64 `json:"precio"`
}

// Key identifies a part within a supplier's list.
func (r PriceRecord) Key() string {
	return r.Marca + "|" + r.Codigo
}

// ParquetPriceRecord is the on-disk schema of a price snapshot.
type ParquetPriceRecord struct {
	Supplier    string  `parquet:"supplier"`
	Codigo      string  `parquet:"codigo"`
	Descripcion string  `parquet:"descripcion"`
	Marca       string  `parquet:"marca"`
	Precio      float64 `parquet:"precio"`
	RunID       string  `parquet:"run_id"`
	CapturedAt  int64   `parquet:"captured_at"` // unix millis
}

// PriceChange describes a price that moved between two snapshots.
type PriceChange struct {
	Codigo   string  `json:"codigo"`
	Marca    string  `json:"marca"`
	OldPrice float64 `json:"old_price"`
	NewPrice float64 `json:"new_price"`
}

// PriceDiff summarizes how a supplier list changed since the previous snapshot.
type PriceDiff struct {
	Supplier      string        `json:"supplier"`
	HasPrevious   bool          `json:"has_previous"`
	Added         int           `json:"added"`
	Removed       int           `json:"removed"`
	Changed       int           `json:"changed"`
	Unchanged     int           `json:"unchanged"`
	SampleChanges []PriceChange `json:"sample_changes,omitempty"`
}
