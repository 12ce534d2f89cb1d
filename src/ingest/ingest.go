// Package ingest loads experiment logs (CSV, XLSX or SQLite) into named numeric columns.
//
// Cells that are blank or not numeric become NaN; whether that is acceptable is decided by
// whoever plots the column.
package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
)

// DefaultTable is the SQLite table read when WithTable is not given.
const DefaultTable = "metrics"

// Table holds the numeric columns of one log, in source column order.
type Table struct {
	source  string
	columns []string
	values  map[string][]float64
	rows    int
}

func newTable(source string) *Table {
	return &Table{source: source, values: make(map[string][]float64)}
}

func (t *Table) add(name string, vals []float64) {
	if _, dup := t.values[name]; dup {
		logging.Warnf("%s: duplicate column %q, keeping the first", t.source, name)
		return
	}
	t.columns = append(t.columns, name)
	t.values[name] = vals
	if len(vals) > t.rows {
		t.rows = len(vals)
	}
}

// Source is the path the table was loaded from.
func (t *Table) Source() string { return t.source }

// Columns returns the column names in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len is the number of data rows.
func (t *Table) Len() int { return t.rows }

// Float returns a copy of the named column and whether it exists.
func (t *Table) Float(name string) ([]float64, bool) {
	vals, ok := t.values[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	return out, true
}

type options struct {
	sheet string
	table string
}

// Option customizes Load.
type Option func(*options)

// WithSheet selects the worksheet of an XLSX source (default: the first sheet).
func WithSheet(name string) Option {
	return func(o *options) { o.sheet = name }
}

// WithTable selects the table of a SQLite source (default: DefaultTable).
func WithTable(name string) Option {
	return func(o *options) {
		if name != "" {
			o.table = name
		}
	}
}

// Load reads path, picking the reader from its extension: .xlsx/.xlsm workbooks,
// .db/.sqlite/.sqlite3 databases, and CSV for everything else.
// A missing or unreadable file matches errdefs.ErrIO; malformed content matches
// errdefs.ErrInvalidInput.
func Load(path string, opts ...Option) (*Table, error) {
	defer logging.TimeTrack(time.Now(), "load "+path)
	o := options{table: DefaultTable}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errdefs.IOError("open "+path, err)
	}
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		t, err = loadXLSX(path, o.sheet)
	case ".db", ".sqlite", ".sqlite3":
		t, err = loadSQLite(path, o.table)
	default:
		t, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}
	logging.Debugf("loaded %s: %d columns x %d rows", path, len(t.columns), t.rows)
	return t, nil
}
