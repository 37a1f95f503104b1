package normalizer

import "strings"

// table is a header row plus data rows read from one sheet or CSV file.
type table struct {
	name   string
	header []string
	rows   [][]string
	index  map[string]int
}

func newTable(name string, rows [][]string, skipRows int) table {
	t := table{name: name, index: make(map[string]int)}
	if skipRows >= len(rows) {
		return t
	}
	t.header = rows[skipRows]
	t.rows = rows[skipRows+1:]
	for i, col := range t.header {
		col = strings.TrimSpace(col)
		if _, dup := t.index[col]; !dup && col != "" {
			t.index[col] = i
		}
	}
	return t
}

// rename applies the column mapping to the header index.
func (t *table) rename(renames map[string]string) {
	for from, to := range renames {
		if i, ok := t.index[from]; ok {
			delete(t.index, from)
			t.index[to] = i
		}
	}
}

func (t table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// value returns the trimmed cell of row under col, or "" when absent.
func (t table) value(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
