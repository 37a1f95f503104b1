package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/models"
)

// ErrMissingColumns is returned when a raw list lacks a column the profile needs.
var ErrMissingColumns = errors.New("missing required columns")

// FormatPrice turns a raw supplier price into a number. Thousands and decimal
// separators are dropped and the result is read as cents. Unparsable prices become 0.
func FormatPrice(raw string) float64 {
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v / 100
}

// CleanDescription joins a description with its suffix column and truncates it to max characters.
func CleanDescription(desc, suffix string, stripCommas bool, max int) string {
	joined := desc
	if suffix != "" {
		joined = desc + " " + suffix
	}
	if stripCommas {
		joined = strings.ReplaceAll(joined, ",", "")
	}
	joined = strings.TrimSpace(joined)

	runes := []rune(joined)
	if max > 0 && len(runes) > max {
		return strings.TrimSpace(string(runes[:max]))
	}
	return joined
}

// normalizeTable maps one raw table onto price records. Rows without a code are dropped.
func normalizeTable(t table, p Profile, maxDescription int) ([]models.PriceRecord, error) {
	if len(t.header) == 0 {
		return nil, nil
	}
	t.rename(p.Renames)

	required := []string{models.ColumnCodigo, models.ColumnDescripcion, models.ColumnPrecio}
	if !p.SheetAsBrand {
		required = append(required, models.ColumnMarca)
	}
	var missing []string
	for _, col := range required {
		if !t.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %q: %s", ErrMissingColumns, t.name, strings.Join(missing, ", "))
	}

	records := make([]models.PriceRecord, 0, len(t.rows))
	for _, row := range t.rows {
		codigo := t.value(row, models.ColumnCodigo)
		if codigo == "" {
			continue
		}

		marca := t.value(row, models.ColumnMarca)
		if p.SheetAsBrand {
			marca = t.name
		}

		records = append(records, models.PriceRecord{
			Codigo:      codigo,
			Descripcion: CleanDescription(t.value(row, models.ColumnDescripcion), t.value(row, p.DescriptionSuffix), p.StripCommas, maxDescription),
			Marca:       marca,
			Precio:      FormatPrice(t.value(row, models.ColumnPrecio)),
		})
	}
	return records, nil
}

// normalizeTables concatenates the records of every table. A table that fails is
// skipped as long as another one succeeds.
func normalizeTables(tables []table, p Profile, maxDescription int) ([]models.PriceRecord, error) {
	var records []models.PriceRecord
	var collector common.ErrorCollector
	ok := 0
	for _, t := range tables {
		rs, err := normalizeTable(t, p, maxDescription)
		if err != nil {
			collector.Add(err)
			continue
		}
		ok++
		records = append(records, rs...)
	}
	if ok == 0 && collector.HasErrors() {
		return nil, collector.Error()
	}
	return records, nil
}
