// Package extract is the raw table loader: it maps logical table names to
// CSV files under the snapshot directory and reads each one into a generic
// raw.Table. No transformation happens here.
package extract

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	conf "github.com/soeborg/bikestore-etl/internal/config"
	"github.com/soeborg/bikestore-etl/internal/raw"
)

// tableOrder lists every logical table the loader produces, in read order.
var tableOrder = []string{
	"brands",
	"categories",
	"stores",
	"customers",
	"products",
	"staffs",
	"stocks",
	"orders",
	"order_items",
}

// defaultFiles is the snapshot's on-disk layout. The lookup CSVs ship in
// the vendor's localized subfolder; config can override any entry.
var defaultFiles = map[string]string{
	"orders":      "orders.csv",
	"order_items": "order_items.csv",
	"customers":   "customers.csv",
	"brands":      filepath.Join("Data opsætning", "Data CSV", "brands.csv"),
	"categories":  filepath.Join("Data opsætning", "Data CSV", "categories.csv"),
	"products":    filepath.Join("Data opsætning", "Data CSV", "products.csv"),
	"stores":      filepath.Join("Data opsætning", "Data CSV", "stores.csv"),
	"staffs":      filepath.Join("Data opsætning", "Data CSV", "staffs.csv"),
	"stocks":      filepath.Join("Data opsætning", "Data CSV", "stocks.csv"),
}

// TableNames returns the logical table names in read order.
func TableNames() []string {
	out := make([]string, len(tableOrder))
	copy(out, tableOrder)
	return out
}

// FileInfo is the audit record of one CSV read.
type FileInfo struct {
	Table     string
	Path      string
	SHA256    string
	SizeBytes int64
	Rows      int
}

// ReadAll loads every snapshot CSV into a raw table keyed by logical table
// name. Any unreadable file aborts the whole extract.
func ReadAll(log zerolog.Logger, cfg conf.CSV) (map[string]*raw.Table, []FileInfo, error) {
	tables := make(map[string]*raw.Table, len(tableOrder))
	infos := make([]FileInfo, 0, len(tableOrder))

	for _, name := range tableOrder {
		rel := defaultFiles[name]
		if override, ok := cfg.Files[name]; ok && override != "" {
			rel = override
		}
		path := filepath.Join(cfg.Dir, rel)

		t, info, err := readFile(name, path, cfg.Encoding)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		tables[name] = t
		infos = append(infos, info)
		log.Info().Str("table", name).Str("file", path).Int("rows", t.Len()).Msg("read csv")
	}
	return tables, infos, nil
}

func readFile(table, path, encoding string) (*raw.Table, FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FileInfo{}, err
	}
	defer f.Close()

	// The hash covers the file bytes as stored, before any decoding.
	hasher := sha256.New()
	var reader io.Reader = io.TeeReader(f, hasher)
	if encoding != "" {
		reader, err = charset.NewReaderLabel(encoding, reader)
		if err != nil {
			return nil, FileInfo{}, fmt.Errorf("encoding %q: %w", encoding, err)
		}
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1 // ragged rows surface downstream as missing cells

	header, err := cr.Read()
	if err != nil {
		return nil, FileInfo{}, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = cleanHeader(header[i])
	}

	t := raw.New(table, header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, FileInfo{}, err
		}
		for i, v := range rec {
			rec[i] = cleanCell(v)
		}
		t.Append(rec)
	}

	st, err := f.Stat()
	if err != nil {
		return nil, FileInfo{}, err
	}
	info := FileInfo{
		Table:     table,
		Path:      path,
		SHA256:    hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes: st.Size(),
		Rows:      t.Len(),
	}
	return t, info, nil
}

// cleanCell trims whitespace and maps the snapshot's literal NULL marker to
// a missing value.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "NULL" {
		return ""
	}
	return s
}

func cleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.TrimSpace(s)
}
