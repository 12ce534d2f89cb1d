package ingest

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// loadSQLite reads every column of table, ordered by rowid, from a database opened read-only.
func loadSQLite(path, table string) (*Table, error) {
	if !tableNameRe.MatchString(table) {
		return nil, errdefs.Invalidf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=ro")
	if err != nil {
		return nil, errdefs.IOError("open "+path, err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s" ORDER BY rowid`, table))
	if err != nil {
		return nil, errdefs.Invalidf("query %s in %s: %v", table, path, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errdefs.Invalidf("columns of %s in %s: %v", table, path, err)
	}
	cols := make([][]float64, len(names))
	cells := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errdefs.Invalidf("scan %s in %s: %v", table, path, err)
		}
		for i, cell := range cells {
			cols[i] = append(cols[i], toFloat(cell))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errdefs.IOError("read "+path, err)
	}

	t := newTable(path)
	for i, name := range names {
		if cols[i] == nil {
			cols[i] = []float64{}
		}
		t.add(name, cols[i])
	}
	return t, nil
}

func toFloat(cell any) float64 {
	switch v := cell.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		return parseOrNaN(string(v))
	case string:
		return parseOrNaN(v)
	default:
		return math.NaN()
	}
}

func parseOrNaN(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
