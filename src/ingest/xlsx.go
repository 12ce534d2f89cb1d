package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
)

// loadXLSX reads one worksheet: the first row is the header, the rest are samples.
func loadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errdefs.Invalidf("open workbook %s: %v", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errdefs.Invalidf("%s has no worksheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errdefs.Invalidf("read sheet %q of %s: %v", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, errdefs.Invalidf("sheet %q of %s has no header row", sheet, path)
	}

	header := rows[0]
	data := rows[1:]
	t := newTable(path)
	for c, name := range header {
		vals := make([]float64, len(data))
		for r, row := range data {
			vals[r] = math.NaN()
			if c >= len(row) {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64); err == nil {
				vals[r] = v
			}
		}
		t.add(strings.TrimSpace(name), vals)
	}
	return t, nil
}
