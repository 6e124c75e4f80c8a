package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// Plot modes for the drawdown phase.
const (
	PlotModePerWell   = "per-well"
	PlotModeAggregate = "aggregate"
)

var plotFormats = map[string]bool{
	"png": true, "eps": true, "svg": true, "pdf": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// Config holds all run settings, populated from environment variables.
// Every default reproduces the Wenzel (1942) analysis.
type Config struct {
	DataDir           string
	OutputDir         string
	ObservationPrefix string
	ObservationSuffix string
	MetadataFile      string

	// Reference instants of the pumping test.
	PumpStart time.Time
	PumpStop  time.Time

	// Phase toggles.
	DrawdownCheck    bool
	MapCheck         bool
	SplineDerivative bool
	PlotMode         string

	// SmoothingDivisor is the constant in norm(s)/(n*divisor). It is an
	// empirical tunable, not a physical quantity.
	SmoothingDivisor float64
	DerivativeMin    float64
	DerivativeMax    float64

	Grid       domain.GridSpec
	PumpedWell domain.PumpedWell
	Lines      domain.LineTable

	WellPlotFormat    string
	SummaryPlotFormat string

	WorkbookFile    string
	MetricsTextfile string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	window := domain.DefaultTestWindow()
	pumpStart, err := parseInstant("PUMP_START", window.Start)
	if err != nil {
		return nil, err
	}
	pumpStop, err := parseInstant("PUMP_STOP", window.Stop)
	if err != nil {
		return nil, err
	}

	drawdownCheck, err := parseBool("DRAWDOWN_CHECK", true)
	if err != nil {
		return nil, err
	}
	mapCheck, err := parseBool("MAP_CHECK", true)
	if err != nil {
		return nil, err
	}
	splineDerivative, err := parseBool("SPLINE_DERIVATIVE", true)
	if err != nil {
		return nil, err
	}

	divisor, err := parseFloat("SMOOTHING_DIVISOR", domain.DefaultSmoothingDivisor)
	if err != nil {
		return nil, err
	}
	derivMin, err := parseFloat("DERIVATIVE_MIN", -0.2)
	if err != nil {
		return nil, err
	}
	derivMax, err := parseFloat("DERIVATIVE_MAX", 1.0)
	if err != nil {
		return nil, err
	}

	nx, err := parseGridSize("GRID_NX", domain.DefaultGridNX)
	if err != nil {
		return nil, err
	}
	ny, err := parseGridSize("GRID_NY", domain.DefaultGridNY)
	if err != nil {
		return nil, err
	}
	buffer, err := parseFloat("GRID_BUFFER", domain.DefaultGridBuffer)
	if err != nil {
		return nil, err
	}

	screenDepth, err := parseFloat("PUMPED_WELL_SCREEN_DEPTH", domain.DefaultPumpedWellScreenDepth)
	if err != nil {
		return nil, err
	}

	lines, err := loadLineTable(os.Getenv("LINE_TABLE_FILE"))
	if err != nil {
		return nil, err
	}

	pumped := domain.DefaultPumpedWell()
	cfg := &Config{
		DataDir:           sharedcfg.EnvOrDefault("DATA_DIR", "."),
		OutputDir:         sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		ObservationPrefix: sharedcfg.EnvOrDefault("OBSERVATION_PREFIX", "grand-island-test-wenzel-"),
		ObservationSuffix: sharedcfg.EnvOrDefault("OBSERVATION_SUFFIX", ".csv"),
		MetadataFile:      sharedcfg.EnvOrDefault("METADATA_FILE", "grand-island-test-wenzel-info.csv"),
		PumpStart:         pumpStart,
		PumpStop:          pumpStop,
		DrawdownCheck:     drawdownCheck,
		MapCheck:          mapCheck,
		SplineDerivative:  splineDerivative,
		PlotMode:          sharedcfg.EnvOrDefault("PLOT_MODE", PlotModePerWell),
		SmoothingDivisor:  divisor,
		DerivativeMin:     derivMin,
		DerivativeMax:     derivMax,
		Grid:              domain.GridSpec{NX: nx, NY: ny, Buffer: buffer},
		PumpedWell: domain.PumpedWell{
			ID:          sharedcfg.EnvOrDefault("PUMPED_WELL_ID", pumped.ID),
			Line:        sharedcfg.EnvOrDefault("PUMPED_WELL_LINE", pumped.Line),
			ScreenDepth: screenDepth,
		},
		Lines:             lines,
		WellPlotFormat:    strings.ToLower(sharedcfg.EnvOrDefault("WELL_PLOT_FORMAT", "png")),
		SummaryPlotFormat: strings.ToLower(sharedcfg.EnvOrDefault("SUMMARY_PLOT_FORMAT", "eps")),
		WorkbookFile:      os.Getenv("WORKBOOK_FILE"),
		MetricsTextfile:   os.Getenv("METRICS_TEXTFILE"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Window returns the pumping period.
func (c *Config) Window() domain.TestWindow {
	return domain.TestWindow{Start: c.PumpStart, Stop: c.PumpStop}
}

func (c *Config) validate() error {
	if !c.PumpStop.After(c.PumpStart) {
		return errors.New("PUMP_STOP must be after PUMP_START")
	}
	if c.PlotMode != PlotModePerWell && c.PlotMode != PlotModeAggregate {
		return fmt.Errorf("invalid PLOT_MODE %q: want %q or %q", c.PlotMode, PlotModePerWell, PlotModeAggregate)
	}
	if !(c.SmoothingDivisor > 0) {
		return errors.New("SMOOTHING_DIVISOR must be positive")
	}
	if !(c.DerivativeMin < c.DerivativeMax) {
		return errors.New("DERIVATIVE_MIN must be less than DERIVATIVE_MAX")
	}
	if c.Grid.Buffer < 0 {
		return errors.New("GRID_BUFFER must not be negative")
	}
	if !(c.PumpedWell.ScreenDepth >= 0) {
		return errors.New("PUMPED_WELL_SCREEN_DEPTH must not be negative")
	}
	if c.PumpedWell.ID == "" {
		return errors.New("PUMPED_WELL_ID is required")
	}
	if !plotFormats[c.WellPlotFormat] {
		return fmt.Errorf("unsupported WELL_PLOT_FORMAT %q", c.WellPlotFormat)
	}
	if !plotFormats[c.SummaryPlotFormat] {
		return fmt.Errorf("unsupported SUMMARY_PLOT_FORMAT %q", c.SummaryPlotFormat)
	}
	if c.ObservationSuffix == "" {
		return errors.New("OBSERVATION_SUFFIX is required")
	}
	return nil
}

// loadLineTable merges an optional YAML file over the default line table:
//
//	angles: {SW: 190}
//	colors: {SW: indigo}
func loadLineTable(path string) (domain.LineTable, error) {
	lines := domain.DefaultLineTable()
	if path == "" {
		return lines, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.LineTable{}, fmt.Errorf("LINE_TABLE_FILE: %w", err)
	}
	var override domain.LineTable
	if err := yaml.Unmarshal(data, &override); err != nil {
		return domain.LineTable{}, fmt.Errorf("LINE_TABLE_FILE: decode yaml: %w", err)
	}

	lines = lines.Merge(override)
	if err := lines.Validate(); err != nil {
		return domain.LineTable{}, fmt.Errorf("LINE_TABLE_FILE: %w", err)
	}
	for line, name := range lines.Colors {
		if _, ok := colornames.Map[strings.ToLower(name)]; !ok {
			return domain.LineTable{}, fmt.Errorf("LINE_TABLE_FILE: line %s: unknown colour %q", line, name)
		}
	}
	return lines, nil
}

func parseInstant(key string, def time.Time) (time.Time, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	t, err := domain.ParseDateTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", key, s)
	}
	return t, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseGridSize(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 2 || n > 1000 {
		return 0, fmt.Errorf("invalid %s: %q (want 2..1000)", key, s)
	}
	return n, nil
}
