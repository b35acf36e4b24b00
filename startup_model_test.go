package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/databar/internal/config"
	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/ui"
)

func writeCSV(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func testConfig() *config.Config {
	return &config.Config{LogLevel: "info", Scheme: "0:none,1:fall", Hz: 50}
}

func TestStartupModelResolvesToChartModel(t *testing.T) {
	path := writeCSV(t, "walk.csv", "ax,ay,label\n1,2,0\n2,3,1\n3,4,0\n")
	p, err := buildParams([]string{path, "0,1"}, testConfig(), nil)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.Info.Name != "walk" || p.Info.Hz != 50 || p.Info.Format != dataset.FormatCSV {
		t.Fatalf("unexpected dataset info %+v", p.Info)
	}

	m := newStartupModel(p)
	m, _ = updateStartup(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	msg := openDatasetCmd(p)().(startupResolvedMsg)
	if msg.err != nil {
		t.Fatalf("open: %v", msg.err)
	}

	model, cmd := m.Update(msg)
	if _, ok := model.(ui.Model); !ok {
		t.Fatalf("expected ui.Model, got %T", model)
	}
	if cmd == nil {
		t.Fatal("expected init and resize commands")
	}
}

func TestStartupModelErrorShowsMessage(t *testing.T) {
	m := newStartupModel(ui.Params{Info: dataset.Info{Path: "x.csv"}})

	model, cmd := m.Update(startupResolvedMsg{err: errBoom{}})
	if cmd != nil {
		t.Fatal("expected no command on error")
	}

	startup := model.(startupModel)
	if startup.phase != phaseFailed {
		t.Fatalf("expected phaseFailed, got %v", startup.phase)
	}
	if !strings.Contains(startup.View(), "boom") {
		t.Fatal("expected error message in the view")
	}
	if _, cmd := startup.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestBuildParamsRejects(t *testing.T) {
	dir := t.TempDir()
	txt := writeCSV(t, "notes.txt", "hello")
	csv := writeCSV(t, "walk.csv", "1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "usage"},
		{"missing", []string{filepath.Join(dir, "nope.csv")}, "no such file"},
		{"directory", []string{dir}, "is a directory"},
		{"format", []string{txt}, "unsupported format .txt"},
		{"channels", []string{csv, "x"}, "invalid channel index"},
	}
	for _, tt := range tests {
		_, err := buildParams(tt.args, testConfig(), nil)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestParseChartsDefaultsToFirstChannel(t *testing.T) {
	charts, err := parseCharts(nil)
	if err != nil || len(charts) != 1 || len(charts[0]) != 1 || charts[0][0] != 0 {
		t.Fatalf("expected [[0]], got %v (%v)", charts, err)
	}
}

func TestEnergyInfoIsNamespaced(t *testing.T) {
	path := writeCSV(t, "walk.csv", "1\n")
	energy := writeCSV(t, "wells.csv", "1\n")
	cfg := testConfig()
	cfg.Energy = energy
	p, err := buildParams([]string{path}, cfg, nil)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.Energy == nil || !strings.HasPrefix(p.Energy.Name, "energy:") {
		t.Fatalf("expected a separate energy entry, got %+v", p.Energy)
	}
}

func updateStartup(m startupModel, msg tea.Msg) (startupModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(startupModel), cmd
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
