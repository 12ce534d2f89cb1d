package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestColumnsCommand(t *testing.T) {
	src := writeCSV(t, t.TempDir(), "train.csv", "avg_episode_steps,other\n10,1\n12,2\n")
	out, err := run(t, "columns", src)
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if !strings.Contains(out, "train.csv: 2 rows") || !strings.Contains(out, "-> episode_length") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestChartCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeCSV(t, dir, "eval.csv", "hack_probability\n0.1\n0.3\n0.2\n0.6\n")
	dest := filepath.Join(dir, "hp.png")
	out, err := run(t, "chart", src, "hack_probability", "--step", "10", "--ylims", "0,1", "-o", dest)
	if err != nil {
		t.Fatalf("chart: %v\n%s", err, out)
	}
	if fi, err := os.Stat(dest); err != nil || fi.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}

	if _, err := run(t, "chart", src, "missing_column", "-o", dest); err == nil {
		t.Fatalf("expected error for an unknown column")
	}
	if _, err := run(t, "chart", src, "hack_probability", "--ylims", "1", "-o", dest); err == nil {
		t.Fatalf("expected error for malformed limits")
	}
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	train := writeCSV(t, dir, "train.csv", "avg_attacker_episode_rewards,epsilon_values\n1,1\n2,0.8\n4,0.6\n3,0.4\n")
	eval := writeCSV(t, dir, "eval.csv", "hack_probability\n0.1\n0.2\n0.4\n0.3\n0.5\n")
	cfgPath := filepath.Join(dir, "report.yaml")
	cfgBody := "train_source: " + train + "\neval_source: " + eval + "\nlog_frequency: 100\neval_frequency: 100\neval_episodes: 10\nformat: pdf\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	// flags win over the file: format goes back to png
	if out, err := run(t, "report", "-c", cfgPath, "-o", outDir, "--format", "png"); err != nil {
		t.Fatalf("report: %v\n%s", err, out)
	}
	for _, name := range []string{"attacker_reward_train.png", "exploration_rate_train.png", "hack_probability_eval.png"} {
		if _, err := os.Stat(filepath.Join(outDir, "plots", name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestReportCommandRejectsInvalidSettings(t *testing.T) {
	if _, err := run(t, "report", "--train", "t.csv"); err == nil || !strings.Contains(err.Error(), "eval source") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseLimits(t *testing.T) {
	lo, hi, err := parseLimits(" -1.5, 2")
	if err != nil || lo != -1.5 || hi != 2 {
		t.Fatalf("parseLimits = %v %v %v", lo, hi, err)
	}
	for _, bad := range []string{"", "1", "a,2", "1,b", "1,2,3"} {
		if _, _, err := parseLimits(bad); err == nil {
			t.Fatalf("parseLimits(%q) should fail", bad)
		}
	}
}
