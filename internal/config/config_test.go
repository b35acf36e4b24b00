package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"DATABAR_DOWNSAMPLE", "DATABAR_SCHEME", "DATABAR_HZ", "DATABAR_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Downsample || cfg.Hz != 0 || cfg.Level() != log.InfoLevel {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	s := cfg.LabelScheme("accel")
	if s.Name != "accel" || s.EventMap[1] != "fall" || s.NullLabel != 0 {
		t.Fatalf("unexpected default scheme %+v", s)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABAR_DOWNSAMPLE", "0")
	t.Setenv("DATABAR_HZ", "12.5")
	t.Setenv("DATABAR_CHART_ROWS", "10")
	t.Setenv("DATABAR_NULL_LABEL", "7")
	t.Setenv("DATABAR_SCHEME", "7:idle, 2:walk,3:run")
	t.Setenv("DATABAR_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Downsample || cfg.Hz != 12.5 || cfg.ChartRows != 10 || cfg.Level() != log.DebugLevel {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if got := FormatScheme(cfg.LabelScheme("x").EventMap); got != "2:walk,3:run,7:idle" {
		t.Fatalf("unexpected scheme %q", got)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"scheme entry", func(c *Config) { c.Scheme = "fall" }},
		{"scheme key", func(c *Config) { c.Scheme = "x:fall" }},
		{"duplicate key", func(c *Config) { c.Scheme = "1:a,1:b" }},
		{"empty scheme", func(c *Config) { c.Scheme = " , " }},
		{"negative hz", func(c *Config) { c.Hz = -1 }},
		{"negative rows", func(c *Config) { c.ChartRows = -2 }},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: "info", Scheme: "0:none"}
		tt.edit(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected an error", tt.name)
		}
	}
}
