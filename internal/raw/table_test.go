package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	tbl := New("brands", []string{"brand_id", "brand_name"})
	tbl.Append([]string{"1", "Electra"})
	tbl.Append([]string{"2"}) // short row

	require.Equal(t, 2, tbl.Len())

	v, ok := tbl.Cell(0, "brand_name")
	assert.True(t, ok)
	assert.Equal(t, "Electra", v)

	_, ok = tbl.Cell(0, "no_such_column")
	assert.False(t, ok)

	_, ok = tbl.Cell(1, "brand_name")
	assert.False(t, ok, "short row should read as missing")

	_, ok = tbl.Cell(5, "brand_id")
	assert.False(t, ok)
}

func TestHasColumn(t *testing.T) {
	tbl := New("stores", []string{"name", "phone"})
	assert.True(t, tbl.HasColumn("name"))
	assert.False(t, tbl.HasColumn("store_id"))
}
