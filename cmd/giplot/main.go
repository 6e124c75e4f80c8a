// Command giplot draws the diagnostic figures of the July 1931 Grand Island
// pumping test from the observation and well metadata CSV files.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/grand-island-pumptest/internal/adapter/csvfile"
	"github.com/couchcryptid/grand-island-pumptest/internal/adapter/render"
	"github.com/couchcryptid/grand-island-pumptest/internal/adapter/xlsx"
	"github.com/couchcryptid/grand-island-pumptest/internal/config"
	"github.com/couchcryptid/grand-island-pumptest/internal/observability"
	"github.com/couchcryptid/grand-island-pumptest/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "path", cfg.OutputDir, "error", err)
		os.Exit(1)
	}

	store := csvfile.NewStore(cfg.DataDir, cfg.ObservationPrefix, cfg.ObservationSuffix, cfg.MetadataFile, logger)
	stages := pipeline.Stages{
		Series:   store,
		Sites:    store,
		Drawdown: drawdownStrategy(cfg),
		Contours: render.NewContours(render.Output{Dir: cfg.OutputDir, Format: cfg.SummaryPlotFormat}),
		Screens:  render.NewScreens(render.Output{Dir: cfg.OutputDir, Format: cfg.SummaryPlotFormat}, cfg.PumpedWell.ID),
	}
	if cfg.WorkbookFile != "" {
		stages.Exporter = xlsx.NewWorkbook(cfg.WorkbookFile)
		logger.Info("workbook export enabled", "path", cfg.WorkbookFile)
	}

	opts := pipeline.Options{
		Window:           cfg.Window(),
		PumpedWell:       cfg.PumpedWell,
		Lines:            cfg.Lines,
		Grid:             cfg.Grid,
		SmoothingDivisor: cfg.SmoothingDivisor,
		DrawdownCheck:    cfg.DrawdownCheck,
		MapCheck:         cfg.MapCheck,
		SplineDerivative: cfg.SplineDerivative,
	}
	p := pipeline.New(stages, opts, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, runErr := p.Run(ctx)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		logger.Error("run failed", "error", runErr, "figures", len(rep.Figures))
		stop()
		os.Exit(1)
	}
	logger.Info("run complete",
		"wells", rep.WellsLoaded,
		"figures", len(rep.Figures),
		"derivative_failures", rep.DerivativeFailures,
		"elapsed", rep.FinishedAt.Sub(rep.StartedAt),
	)
}

func drawdownStrategy(cfg *config.Config) pipeline.DrawdownStrategy {
	duration := cfg.Window().DurationMinutes()
	if cfg.PlotMode == config.PlotModeAggregate {
		return render.NewAggregate(render.AggregateOptions{
			Output:   render.Output{Dir: cfg.OutputDir, Format: cfg.SummaryPlotFormat},
			Duration: duration,
			Colors:   cfg.Lines.Colors,
		})
	}
	return render.NewPerWell(render.PerWellOptions{
		Output:        render.Output{Dir: cfg.OutputDir, Format: cfg.WellPlotFormat},
		Duration:      duration,
		Derivatives:   cfg.SplineDerivative,
		DerivativeMin: cfg.DerivativeMin,
		DerivativeMax: cfg.DerivativeMax,
	})
}
