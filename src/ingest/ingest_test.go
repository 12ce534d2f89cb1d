package ingest

import (
	"database/sql"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/idsgame-lab/ExperimentReports/src/plotting"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func assertColumn(t *testing.T, tbl *Table, name string, want []float64) {
	t.Helper()
	got, ok := tbl.Float(name)
	if !ok {
		t.Fatalf("column %q missing; have %v", name, tbl.Columns())
	}
	if len(got) != len(want) {
		t.Fatalf("column %q: len %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Fatalf("column %q[%d] = %v, want NaN", name, i, got[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Fatalf("column %q[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "train.csv", "avg_attacker_episode_rewards,hack_probability\n1.5,0\n2.5,0.25\n-3,1\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	if cols := tbl.Columns(); len(cols) != 2 || cols[0] != "avg_attacker_episode_rewards" {
		t.Fatalf("columns = %v", cols)
	}
	assertColumn(t, tbl, "avg_attacker_episode_rewards", []float64{1.5, 2.5, -3})
	assertColumn(t, tbl, "hack_probability", []float64{0, 0.25, 1})
	if _, ok := tbl.Float("epsilon_values"); ok {
		t.Fatalf("unexpected column epsilon_values")
	}
	if tbl.Source() != path {
		t.Fatalf("Source = %q", tbl.Source())
	}
}

func TestFloatReturnsCopy(t *testing.T) {
	path := writeFile(t, "log.csv", "a\n1\n2\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	vals, _ := tbl.Float("a")
	vals[0] = 99
	assertColumn(t, tbl, "a", []float64{1, 2})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, plotting.ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrIO wrapping ErrNotExist, got %v", err)
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"avg_episode_steps", "epsilon_values", "note"},
		{10, 0.9, "warmup"},
		{12, nil, "x"},
		{11.5, 0.5},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertColumn(t, tbl, "avg_episode_steps", []float64{10, 12, 11.5})
	assertColumn(t, tbl, "epsilon_values", []float64{0.9, math.NaN(), 0.5})
	assertColumn(t, tbl, "note", []float64{math.NaN(), math.NaN(), math.NaN()})

	if _, err := Load(path, WithSheet("Missing")); !errors.Is(err, plotting.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown sheet, got %v", err)
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	stmts := []string{
		`CREATE TABLE metrics (attacker_cumulative_reward REAL, defender_cumulative_reward INTEGER, label TEXT)`,
		`INSERT INTO metrics VALUES (1.0, 4, 'a')`,
		`INSERT INTO metrics VALUES (3.5, NULL, '2.5')`,
		`CREATE TABLE other (v REAL)`,
		`INSERT INTO other VALUES (7)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	db.Close()

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertColumn(t, tbl, "attacker_cumulative_reward", []float64{1, 3.5})
	assertColumn(t, tbl, "defender_cumulative_reward", []float64{4, math.NaN()})
	assertColumn(t, tbl, "label", []float64{math.NaN(), 2.5})

	other, err := Load(path, WithTable("other"))
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	assertColumn(t, other, "v", []float64{7})

	for _, name := range []string{"missing", `x"; DROP TABLE metrics; --`} {
		if _, err := Load(path, WithTable(name)); !errors.Is(err, plotting.ErrInvalidInput) {
			t.Fatalf("table %q: expected ErrInvalidInput, got %v", name, err)
		}
	}
}
