package normalizer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readXLSX returns one table per sheet, or only the first sheet.
func readXLSX(path string, skipRows int, allSheets bool) ([]table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}
	if !allSheets {
		sheets = sheets[:1]
	}

	tables := make([]table, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet rows of %q: %w", sheet, err)
		}
		tables = append(tables, newTable(sheet, rows, skipRows))
	}
	return tables, nil
}

// readCSV decodes the file as UTF-8, falling back to Latin-1 when it is not valid UTF-8.
func readCSV(path string, delimiter rune, skipRows int) (table, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return table{}, false, fmt.Errorf("failed to read csv file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	latin1 := false
	if !utf8.Valid(raw) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return table{}, false, fmt.Errorf("failed to decode csv file as latin-1: %w", err)
		}
		raw = decoded
		latin1 = true
	}

	if delimiter == 0 {
		delimiter = sniffDelimiter(raw)
	}
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return table{}, latin1, fmt.Errorf("failed to parse csv file: %w", err)
	}
	return newTable(path, rows, skipRows), latin1, nil
}

// sniffDelimiter picks ';' when the first line has more semicolons than commas.
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
