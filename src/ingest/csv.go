package ingest

import (
	"os"

	"github.com/go-gota/gota/dataframe"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
)

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errdefs.IOError("open "+path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, errdefs.Invalidf("parse %s: %v", path, df.Err)
	}
	t := newTable(path)
	for _, name := range df.Names() {
		t.add(name, df.Col(name).Float())
	}
	return t, nil
}
