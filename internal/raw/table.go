// Package raw holds the generic tabular value exchanged between the CSV
// loader and the transform stage: named columns over string cells. Missing
// values are empty strings; typing is the transform stage's job.
package raw

type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	idx map[string]int
}

func New(name string, columns []string) *Table {
	t := &Table{Name: name, Columns: columns, idx: make(map[string]int, len(columns))}
	for i, c := range columns {
		t.idx[c] = i
	}
	return t
}

func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// Cell returns the value at row i in the named column. The second return is
// false when the column does not exist or the row is too short.
func (t *Table) Cell(i int, column string) (string, bool) {
	pos, ok := t.idx[column]
	if !ok || i < 0 || i >= len(t.Rows) || pos >= len(t.Rows[i]) {
		return "", false
	}
	return t.Rows[i][pos], true
}
