package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
	"github.com/couchcryptid/grand-island-pumptest/internal/observability"
)

// SeriesSource discovers and parses observation files.
type SeriesSource interface {
	Discover() ([]domain.WellFile, error)
	LoadSeries(f domain.WellFile) (domain.Series, error)
}

// SiteSource loads the well metadata table.
type SiteSource interface {
	LoadSite() (domain.Site, error)
}

// DrawdownStrategy renders the drawdown phase. Add is called once per well
// in file order and Flush once at the end. Either may return the path of a
// written figure, or "" when nothing was written.
type DrawdownStrategy interface {
	Name() string
	Add(ctx context.Context, w domain.WellPlot) (string, error)
	Flush(ctx context.Context) (string, error)
}

// ContourRenderer writes the land surface and water table maps.
type ContourRenderer interface {
	Render(m domain.ContourMaps) (string, error)
}

// ScreenRenderer writes the well-screen cross-section.
type ScreenRenderer interface {
	Render(p domain.ScreenProfile) (string, error)
}

// Exporter collects derivatives and site geometry and writes them once.
type Exporter interface {
	AddDerivative(d domain.Derivative)
	SetSite(site domain.Site, coords []domain.SiteCoordinate)
	Path() string
	Save() error
}

// Stages are the adapters a run is wired with. Exporter is optional, and a
// stage may be left nil when the phase using it is disabled.
type Stages struct {
	Series   SeriesSource
	Sites    SiteSource
	Drawdown DrawdownStrategy
	Contours ContourRenderer
	Screens  ScreenRenderer
	Exporter Exporter
}

// Options are the run settings the pipeline needs.
type Options struct {
	Window           domain.TestWindow
	PumpedWell       domain.PumpedWell
	Lines            domain.LineTable
	Grid             domain.GridSpec
	SmoothingDivisor float64

	DrawdownCheck    bool
	MapCheck         bool
	SplineDerivative bool
}

// Report summarises a run.
type Report struct {
	StartedAt          time.Time
	FinishedAt         time.Time
	WellsLoaded        int
	WellsSkipped       int
	DerivativeFailures int
	Figures            []string
}

// Pipeline runs the figure phases once, in order.
type Pipeline struct {
	stages      Stages
	opts        Options
	transformer *DrawdownTransformer
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(stages Stages, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		stages:      stages,
		opts:        opts,
		transformer: NewTransformer(opts, logger),
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes every enabled phase. Discovery, read failures and
// cancellation abort the run. A missing site table, a failed contour or
// screen phase, and a failed export are joined and returned after the
// remaining phases ran.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	rep := Report{StartedAt: clock.Now()}
	p.metrics.RunSucceeded.Set(0)
	p.logger.Info("run started",
		"drawdown", p.opts.DrawdownCheck,
		"maps", p.opts.MapCheck,
		"derivative", p.opts.SplineDerivative,
	)

	var errs []error
	var observed []string

	if p.opts.DrawdownCheck {
		start := clock.Now()
		ids, err := p.runDrawdown(ctx, &rep)
		p.observePhase("drawdown", start)
		observed = ids
		if err != nil {
			if fatal(ctx, err) {
				rep.FinishedAt = clock.Now()
				return rep, err
			}
			errs = append(errs, err)
		}
	}

	var site *domain.Site
	if p.opts.MapCheck {
		if err := ctx.Err(); err != nil {
			rep.FinishedAt = clock.Now()
			return rep, err
		}
		s, err := p.stages.Sites.LoadSite()
		if err != nil {
			p.logger.Error("site table unavailable, skipping maps", "error", err)
			errs = append(errs, fmt.Errorf("load site: %w", err))
		} else {
			site = &s
			if !p.opts.DrawdownCheck {
				if observed, err = p.discoverIDs(); err != nil {
					rep.FinishedAt = clock.Now()
					return rep, fmt.Errorf("discover: %w", err)
				}
			}
			errs = append(errs, p.runMaps(s, observed, &rep)...)
		}
	}

	if p.stages.Exporter != nil {
		start := clock.Now()
		err := p.runExport(site, &rep)
		p.observePhase("export", start)
		if err != nil {
			p.logger.Error("workbook export failed", "error", err)
			errs = append(errs, fmt.Errorf("workbook export: %w", err))
		}
	}

	rep.FinishedAt = clock.Now()
	err := errors.Join(errs...)
	if err == nil {
		p.metrics.RunSucceeded.Set(1)
	}
	p.logger.Info("run finished",
		"wells", rep.WellsLoaded,
		"skipped", rep.WellsSkipped,
		"figures", len(rep.Figures),
		"duration", rep.FinishedAt.Sub(rep.StartedAt),
	)
	return rep, err
}

// runDrawdown loads each observation file, then renders it with the
// selected strategy. Per-well problems are logged and skipped. It returns
// the identifiers of every discovered well.
func (p *Pipeline) runDrawdown(ctx context.Context, rep *Report) ([]string, error) {
	files, err := p.stages.Series.Discover()
	if err != nil {
		return nil, &fatalError{fmt.Errorf("discover: %w", err)}
	}
	if len(files) == 0 {
		p.logger.Warn("no observation files found")
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return ids, err
		}

		s, err := p.stages.Series.LoadSeries(f)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedRecord) {
				p.skip(rep, f, observability.SkipMalformed, err)
				continue
			}
			return ids, &fatalError{err}
		}
		p.metrics.WellsLoaded.Inc()
		rep.WellsLoaded++

		w, fitErr := p.transformer.Transform(f, s)
		if w.Drawdown.Len() == 0 {
			p.skip(rep, f, observability.SkipEmpty, errors.New("no samples after pump start"))
			continue
		}
		if fitErr != nil {
			p.logger.Warn("derivative not fitted, plotting without overlay", "well", f.ID, "error", fitErr)
			p.metrics.DerivativeFailures.Inc()
			rep.DerivativeFailures++
		}
		if w.Derivative != nil && p.stages.Exporter != nil {
			p.stages.Exporter.AddDerivative(*w.Derivative)
		}

		path, err := p.stages.Drawdown.Add(ctx, w)
		if err != nil {
			p.skip(rep, f, observability.SkipRender, err)
			continue
		}
		p.figure(rep, p.stages.Drawdown.Name(), path)
	}

	path, err := p.stages.Drawdown.Flush(ctx)
	if err != nil {
		return ids, fmt.Errorf("%s plot: %w", p.stages.Drawdown.Name(), err)
	}
	p.figure(rep, p.stages.Drawdown.Name(), path)
	return ids, nil
}

// runMaps runs the contour and screen phases independently of each other.
func (p *Pipeline) runMaps(site domain.Site, observed []string, rep *Report) []error {
	var errs []error

	start := clock.Now()
	err := p.runContour(site, observed, rep)
	p.observePhase("contour", start)
	if err != nil {
		p.logger.Error("contour maps failed", "error", err)
		errs = append(errs, fmt.Errorf("contour maps: %w", err))
	}

	start = clock.Now()
	err = p.runScreen(site, rep)
	p.observePhase("screen", start)
	if err != nil {
		p.logger.Error("screen plot failed", "error", err)
		errs = append(errs, fmt.Errorf("screen plot: %w", err))
	}
	return errs
}

func (p *Pipeline) runContour(site domain.Site, observed []string, rep *Report) error {
	if err := domain.CheckObserved(site, observed); err != nil {
		return err
	}
	m, err := domain.BuildContourMaps(site, p.opts.Lines, p.opts.Grid)
	if err != nil {
		return err
	}
	path, err := p.stages.Contours.Render(m)
	if err != nil {
		return err
	}
	p.figure(rep, "contour", path)
	return nil
}

func (p *Pipeline) runScreen(site domain.Site, rep *Report) error {
	prof, err := domain.BuildScreenProfile(site, p.opts.PumpedWell)
	if err != nil {
		return err
	}
	path, err := p.stages.Screens.Render(prof)
	if err != nil {
		return err
	}
	p.figure(rep, "screen", path)
	return nil
}

// runExport writes the workbook. The site table is loaded here when the map
// phases did not run; geometry is omitted if it cannot be resolved.
func (p *Pipeline) runExport(site *domain.Site, rep *Report) error {
	if site == nil && p.stages.Sites != nil {
		s, err := p.stages.Sites.LoadSite()
		if err != nil {
			p.logger.Warn("workbook without site geometry", "error", err)
		} else {
			site = &s
		}
	}
	if site != nil {
		coords, err := domain.ResolveCoordinates(*site, p.opts.Lines)
		if err != nil {
			p.logger.Warn("workbook without well coordinates", "error", err)
			coords = nil
		}
		p.stages.Exporter.SetSite(*site, coords)
	}
	if err := p.stages.Exporter.Save(); err != nil {
		return err
	}
	p.figure(rep, "workbook", p.stages.Exporter.Path())
	return nil
}

func (p *Pipeline) discoverIDs() ([]string, error) {
	files, err := p.stages.Series.Discover()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

func (p *Pipeline) observePhase(phase string, start time.Time) {
	d := clock.Since(start)
	p.logger.Debug("phase finished", "phase", phase, "duration", d)
	p.metrics.PhaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

func (p *Pipeline) skip(rep *Report, f domain.WellFile, reason string, err error) {
	p.logger.Warn("skipping well", "well", f.ID, "path", f.Path, "reason", reason, "error", err)
	p.metrics.WellsSkipped.WithLabelValues(reason).Inc()
	rep.WellsSkipped++
}

func (p *Pipeline) figure(rep *Report, kind, path string) {
	if path == "" {
		return
	}
	p.logger.Info("figure written", "kind", kind, "path", path)
	p.metrics.FiguresWritten.WithLabelValues(kind).Inc()
	rep.Figures = append(rep.Figures, path)
}

// fatalError marks a drawdown-phase failure that aborts the run.
type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatal(ctx context.Context, err error) bool {
	var fe *fatalError
	return errors.As(err, &fe) || ctx.Err() != nil
}
