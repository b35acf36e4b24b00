// Package config reads databar settings from the environment.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/olivier-w/databar/internal/labels"
)

// Config holds every runtime setting.
type Config struct {
	Downsample bool   // LTTB on the visible window
	StorePath  string // label store directory; empty keeps labels in memory
	LogFile    string // log destination; empty discards logs
	LogLevel   string
	Scheme     string // "key:name,key:name"
	NullLabel  int
	Energy     string // energy dataset path, optional
	Hz         float64
	ChartRows  int  // terminal rows per chart; 0 splits the screen evenly
	SeedLabels bool // seed streams from the labels channel when nothing is stored
}

// DefaultConfig returns the configuration described by the environment,
// falling back to defaults for unset variables.
func DefaultConfig() *Config {
	return &Config{
		Downsample: getEnvBool("DATABAR_DOWNSAMPLE", true),
		StorePath:  getEnv("DATABAR_STORE", ""),
		LogFile:    getEnv("DATABAR_LOG", ""),
		LogLevel:   getEnv("DATABAR_LOG_LEVEL", "info"),
		Scheme:     getEnv("DATABAR_SCHEME", "0:none,1:fall"),
		NullLabel:  getEnvInt("DATABAR_NULL_LABEL", 0),
		Energy:     getEnv("DATABAR_ENERGY", ""),
		Hz:         getEnvFloat("DATABAR_HZ", 0),
		ChartRows:  getEnvInt("DATABAR_CHART_ROWS", 0),
		SeedLabels: getEnvBool("DATABAR_SEED_LABELS", true),
	}
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if _, err := ParseScheme(c.Scheme); err != nil {
		return err
	}
	if c.Hz < 0 {
		return fmt.Errorf("sample rate must not be negative")
	}
	if c.ChartRows < 0 {
		return fmt.Errorf("chart rows must not be negative")
	}
	return nil
}

// Level returns the parsed log level, info when it cannot be parsed.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// LabelScheme builds the label scheme for a stream.
func (c *Config) LabelScheme(name string) labels.Scheme {
	m, err := ParseScheme(c.Scheme)
	if err != nil {
		m = map[int]string{}
	}
	return labels.Scheme{Name: name, EventMap: m, NullLabel: c.NullLabel}
}

// ParseScheme parses "0:none,1:fall" into a key to name map.
func ParseScheme(s string) (map[int]string, error) {
	m := make(map[int]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, name, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid scheme entry %q: want key:name", part)
		}
		key, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("invalid scheme key %q: %w", k, err)
		}
		if _, dup := m[key]; dup {
			return nil, fmt.Errorf("duplicate scheme key %d", key)
		}
		m[key] = strings.TrimSpace(name)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("label scheme is empty")
	}
	return m, nil
}

// FormatScheme is the inverse of ParseScheme, keys ascending.
func FormatScheme(m map[int]string) string {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k) + ":" + m[k]
	}
	return strings.Join(parts, ",")
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
