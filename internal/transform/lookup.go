package transform

import (
	"fmt"
	"sort"
)

// nameIndex maps a human-readable name to a generated surrogate id.
// Duplicate names keep the last id seen, matching the source snapshot's
// construction order, but every collision is counted so callers can report
// it instead of overwriting silently.
type nameIndex struct {
	kind string // "store" or "staff"
	ids  map[string]int
	dups map[string]int
}

func newNameIndex(kind string) *nameIndex {
	return &nameIndex{kind: kind, ids: map[string]int{}, dups: map[string]int{}}
}

func (x *nameIndex) add(name string, id int) {
	if _, seen := x.ids[name]; seen {
		x.dups[name]++
	}
	x.ids[name] = id
}

func (x *nameIndex) resolve(name string) (int, bool) {
	id, ok := x.ids[name]
	return id, ok
}

// require resolves a name that a downstream table needs as a non-null
// integer key. A miss is a hard pipeline failure naming the offending row.
func (x *nameIndex) require(table string, row int, name string) (int, error) {
	id, ok := x.ids[name]
	if !ok {
		return 0, &UnresolvedNameError{Kind: x.kind, Name: name, Table: table, Row: row}
	}
	return id, nil
}

func (x *nameIndex) duplicates() []DuplicateName {
	out := make([]DuplicateName, 0, len(x.dups))
	for name, n := range x.dups {
		out = append(out, DuplicateName{Kind: x.kind, Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DuplicateName is a lookup-name collision found while building an index.
// Count is the number of occurrences beyond the first.
type DuplicateName struct {
	Kind  string
	Name  string
	Count int
}

// UnresolvedNameError reports a name-based foreign key with no match in its
// lookup table.
type UnresolvedNameError struct {
	Kind  string // lookup kind: "store" or "staff"
	Name  string
	Table string // referencing table
	Row   int    // 0-based source row
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("%s row %d: unresolved %s name %q", e.Table, e.Row+1, e.Kind, e.Name)
}
