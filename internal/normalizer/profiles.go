package normalizer

import (
	"path/filepath"
	"strings"

	"github.com/aleister1102/pricefeed/internal/models"
)

// Format is the file format a supplier delivers.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Profile describes how one supplier's raw price list maps onto the normalized columns.
type Profile struct {
	Supplier string
	Format   Format
	// AllSheets reads every sheet instead of only the first.
	AllSheets bool
	// SheetAsBrand fills MARCA with the sheet name.
	SheetAsBrand bool
	// SkipRows is the number of rows above the header row.
	SkipRows  int
	Delimiter rune
	// Renames maps raw column names to normalized ones.
	Renames map[string]string
	// DescriptionSuffix names a column appended to DESCRIPCION.
	DescriptionSuffix string
	StripCommas       bool
}

// InputName is the file name the download stage gives this supplier's list.
func (p Profile) InputName() string {
	return p.Supplier + "." + string(p.Format)
}

// formatOf picks the reader from the file extension, falling back to the profile's format.
func formatOf(path string, fallback Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return fallback
}

// DefaultProfiles returns the profiles of the known suppliers, keyed by supplier.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"autofix": {
			Supplier:          "autofix",
			Format:            FormatXLSX,
			AllSheets:         true,
			SheetAsBrand:      true,
			Renames:           map[string]string{"DESCR": models.ColumnDescripcion, "DESCR2": "DESCRIPCION2"},
			DescriptionSuffix: "DESCRIPCION2",
			StripCommas:       true,
		},
		"express": {
			Supplier: "express",
			Format:   FormatXLSX,
			SkipRows: 10,
			Renames:  map[string]string{"CODIGO PROVEEDOR": models.ColumnCodigo, "PRECIO DE LISTA": models.ColumnPrecio},
		},
		"repcar": {
			Supplier:  "repcar",
			Format:    FormatCSV,
			Delimiter: ';',
			Renames: map[string]string{
				"Cod. Articulo": models.ColumnCodigo,
				"Importe":       models.ColumnPrecio,
				"Descripcion":   models.ColumnDescripcion,
				"Marca":         models.ColumnMarca,
			},
			DescriptionSuffix: "Rubro",
		},
	}
}
