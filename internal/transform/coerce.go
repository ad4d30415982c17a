package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soeborg/bikestore-etl/internal/raw"
)

// dateLayout is the day-first format used by the source order extracts.
const dateLayout = "02/01/2006"

// CoerceError reports a cell that could not be converted to its target
// type. It is fatal: a malformed id or quantity aborts the whole run.
type CoerceError struct {
	Table  string
	Column string
	Row    int // 0-based source row
	Value  string
	Kind   string // int | decimal | bool
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("%s row %d: column %q: cannot coerce %q to %s",
		e.Table, e.Row+1, e.Column, e.Value, e.Kind)
}

func intCell(t *raw.Table, i int, column string) (int, error) {
	s, _ := t.Cell(i, column)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &CoerceError{Table: t.Name, Column: column, Row: i, Value: s, Kind: "int"}
	}
	return n, nil
}

func decimalCell(t *raw.Table, i int, column string) (decimal.Decimal, error) {
	s, _ := t.Cell(i, column)
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, &CoerceError{Table: t.Name, Column: column, Row: i, Value: s, Kind: "decimal"}
	}
	return d, nil
}

// nullableIntCell is the tolerant numeric coercion used for manager_id:
// blank or non-numeric values become nil, never an error.
func nullableIntCell(t *raw.Table, i int, column string) *int {
	s, _ := t.Cell(i, column)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// some exports write numeric ids as "1.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

// boolCell coerces the staff active flag: null/blank reads as false,
// anything else is an integer whose truthiness decides.
func boolCell(t *raw.Table, i int, column string) (bool, error) {
	s, _ := t.Cell(i, column)
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, &CoerceError{Table: t.Name, Column: column, Row: i, Value: s, Kind: "bool"}
	}
	return f != 0, nil
}

// dateCell parses DD/MM/YYYY order dates; unparseable text is a null date,
// not an error.
func dateCell(t *raw.Table, i int, column string) *time.Time {
	s, _ := t.Cell(i, column)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

func textCell(t *raw.Table, i int, column string) string {
	s, _ := t.Cell(i, column)
	return s
}
