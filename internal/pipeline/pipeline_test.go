package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
	"github.com/couchcryptid/grand-island-pumptest/internal/observability"
	"github.com/couchcryptid/grand-island-pumptest/internal/pipeline"
)

// --- mocks ---

type mockSeries struct {
	files       []domain.WellFile
	series      map[string]domain.Series
	errs        map[string]error
	discoverErr error
	loaded      []string
}

func (m *mockSeries) Discover() ([]domain.WellFile, error) {
	return m.files, m.discoverErr
}

func (m *mockSeries) LoadSeries(f domain.WellFile) (domain.Series, error) {
	m.loaded = append(m.loaded, f.ID)
	if err := m.errs[f.ID]; err != nil {
		return domain.Series{}, err
	}
	return m.series[f.ID], nil
}

type mockSites struct {
	site domain.Site
	err  error
}

func (m *mockSites) LoadSite() (domain.Site, error) { return m.site, m.err }

type mockStrategy struct {
	name     string
	added    []domain.WellPlot
	addErr   map[string]error
	flushed  bool
	flushErr error
	perWell  bool
}

func (m *mockStrategy) Name() string { return m.name }

func (m *mockStrategy) Add(_ context.Context, w domain.WellPlot) (string, error) {
	if err := m.addErr[w.File.ID]; err != nil {
		return "", err
	}
	m.added = append(m.added, w)
	if m.perWell {
		return w.File.ID + ".png", nil
	}
	return "", nil
}

func (m *mockStrategy) Flush(context.Context) (string, error) {
	m.flushed = true
	if m.flushErr != nil {
		return "", m.flushErr
	}
	if m.perWell {
		return "", nil
	}
	return "all-GI-data.eps", nil
}

type mockContours struct {
	rendered []domain.ContourMaps
	err      error
}

func (m *mockContours) Render(cm domain.ContourMaps) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.rendered = append(m.rendered, cm)
	return "grand-island-contour-maps.eps", nil
}

type mockScreens struct {
	rendered []domain.ScreenProfile
}

func (m *mockScreens) Render(p domain.ScreenProfile) (string, error) {
	m.rendered = append(m.rendered, p)
	return "grand-island-screen-locations.eps", nil
}

type mockExporter struct {
	derivatives []string
	coords      []domain.SiteCoordinate
	saved       bool
}

func (m *mockExporter) AddDerivative(d domain.Derivative) {
	m.derivatives = append(m.derivatives, d.WellID)
}

func (m *mockExporter) SetSite(_ domain.Site, c []domain.SiteCoordinate) {
	m.coords = c
}

func (m *mockExporter) Path() string { return "wells.xlsx" }

func (m *mockExporter) Save() error {
	m.saved = true
	return nil
}

// --- fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// theisSeries samples a Theis drawdown curve with recovery at radius r.
func theisSeries(id string, r float64) domain.Series {
	w := domain.DefaultTestWindow()
	a := domain.Aquifer{Transmissivity: 1e5, Storativity: 2e-4}
	pumping := w.DurationMinutes()

	s := domain.Series{WellID: id}
	s.Observations = append(s.Observations, domain.Observation{Time: w.Start.Add(-10 * time.Minute)})
	for _, m := range []float64{0, 1, 2, 4, 7, 10, 15, 25, 40, 60, 100, 150, 250, 400, 600, 1000, 1500, 2000, 2500, 2879, 2900, 3000, 3500, 4000} {
		s.Observations = append(s.Observations, domain.Observation{
			Time:     w.Start.Add(time.Duration(m * float64(time.Minute))),
			Drawdown: a.Drawdown(2e5, r, m, pumping),
		})
	}
	return s
}

func testSite() domain.Site {
	return domain.Site{Wells: []domain.WellInfo{
		{ID: "83", ScreenLength: math.NaN(), ScreenDepth: 60, MeasuringPointHeight: 1, Elevation: 1900, InitialWaterLevel: 8},
		{ID: "1", Line: "A", ScreenLength: 20, ScreenDepth: 50, MeasuringPointHeight: 2, Elevation: 1901, RadialDistance: 100, InitialWaterLevel: 9},
		{ID: "2", Line: "B", ScreenDepth: 40, MeasuringPointHeight: 1.5, Elevation: 1899, RadialDistance: 200, InitialWaterLevel: 7},
		{ID: "3", Line: "SW", ScreenLength: 10, ScreenDepth: 45, MeasuringPointHeight: 1, Elevation: 1898, RadialDistance: 100, InitialWaterLevel: 6},
	}}
}

func testFiles(ids ...string) []domain.WellFile {
	files := make([]domain.WellFile, len(ids))
	for i, id := range ids {
		files[i] = domain.WellFile{ID: id, Path: "grand-island-test-wenzel-" + id + ".csv"}
	}
	return files
}

func testOptions() pipeline.Options {
	return pipeline.Options{
		Window:           domain.DefaultTestWindow(),
		PumpedWell:       domain.DefaultPumpedWell(),
		Lines:            domain.DefaultLineTable(),
		Grid:             domain.GridSpec{NX: 10, NY: 10, Buffer: 50},
		SmoothingDivisor: domain.DefaultSmoothingDivisor,
		DrawdownCheck:    true,
		MapCheck:         true,
		SplineDerivative: true,
	}
}

type fixture struct {
	series   *mockSeries
	sites    *mockSites
	strategy *mockStrategy
	contours *mockContours
	screens  *mockScreens
	metrics  *observability.Metrics
}

func newFixture() *fixture {
	return &fixture{
		series: &mockSeries{
			files: testFiles("1A", "2B", "3SW", "83"),
			series: map[string]domain.Series{
				"1A":  theisSeries("1A", 100),
				"2B":  theisSeries("2B", 200),
				"3SW": theisSeries("3SW", 100),
				"83":  theisSeries("83", 1),
			},
		},
		sites:    &mockSites{site: testSite()},
		strategy: &mockStrategy{name: "well", perWell: true},
		contours: &mockContours{},
		screens:  &mockScreens{},
		metrics:  observability.NewMetrics(),
	}
}

func (f *fixture) pipeline(opts pipeline.Options, exp pipeline.Exporter) *pipeline.Pipeline {
	return pipeline.New(pipeline.Stages{
		Series:   f.series,
		Sites:    f.sites,
		Drawdown: f.strategy,
		Contours: f.contours,
		Screens:  f.screens,
		Exporter: exp,
	}, opts, discardLogger(), f.metrics)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	f := newFixture()

	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1A", "2B", "3SW", "83"}, f.series.loaded)
	require.Len(t, f.strategy.added, 4)
	assert.True(t, f.strategy.flushed)

	for _, w := range f.strategy.added {
		if w.File.ID == "83" {
			assert.Nil(t, w.Derivative, "pumped well has no derivative")
			assert.Equal(t, "A", w.Line)
			continue
		}
		require.NotNil(t, w.Derivative, "well %s", w.File.ID)
		assert.NotEmpty(t, w.Derivative.Samples)
		for _, e := range w.Drawdown.Elapsed {
			assert.GreaterOrEqual(t, e, 0.0)
		}
	}
	assert.Equal(t, "SW", f.strategy.added[2].Line)

	require.Len(t, f.contours.rendered, 1)
	require.Len(t, f.screens.rendered, 1)

	want := []string{"1A.png", "2B.png", "3SW.png", "83.png", "grand-island-contour-maps.eps", "grand-island-screen-locations.eps"}
	if diff := cmp.Diff(want, rep.Figures); diff != "" {
		t.Errorf("figures mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, rep.WellsLoaded)
	assert.Zero(t, rep.WellsSkipped)

	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.WellsLoaded))
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.FiguresWritten.WithLabelValues("well")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FiguresWritten.WithLabelValues("contour")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RunSucceeded))
}

func TestPipeline_Run_AggregateFlush(t *testing.T) {
	f := newFixture()
	f.strategy = &mockStrategy{name: "aggregate"}
	opts := testOptions()
	opts.MapCheck = false

	rep, err := f.pipeline(opts, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"all-GI-data.eps"}, rep.Figures)
	assert.Empty(t, f.contours.rendered)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FiguresWritten.WithLabelValues("aggregate")))
}

func TestPipeline_Run_DerivativesDisabled(t *testing.T) {
	f := newFixture()
	opts := testOptions()
	opts.SplineDerivative = false

	_, err := f.pipeline(opts, nil).Run(context.Background())
	require.NoError(t, err)
	for _, w := range f.strategy.added {
		assert.Nil(t, w.Derivative)
	}
}

func TestPipeline_Run_MalformedWellSkipped(t *testing.T) {
	f := newFixture()
	f.series.errs = map[string]error{"2B": fmt.Errorf("line 7: %w", domain.ErrMalformedRecord)}

	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.strategy.added, 3)
	assert.Equal(t, 1, rep.WellsSkipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WellsSkipped.WithLabelValues(observability.SkipMalformed)))
	require.Len(t, f.contours.rendered, 1, "skipped well still has metadata")
}

func TestPipeline_Run_ReadErrorIsFatal(t *testing.T) {
	f := newFixture()
	f.series.errs = map[string]error{"2B": errors.New("permission denied")}

	_, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, []string{"1A", "2B"}, f.series.loaded)
	assert.Empty(t, f.contours.rendered)
	assert.Zero(t, testutil.ToFloat64(f.metrics.RunSucceeded))
}

func TestPipeline_Run_DiscoverErrorIsFatal(t *testing.T) {
	f := newFixture()
	f.series.discoverErr = errors.New("bad pattern")

	_, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.Error(t, err)
	assert.False(t, f.strategy.flushed)
}

func TestPipeline_Run_EmptyAndFailedFit(t *testing.T) {
	f := newFixture()
	start := domain.DefaultTestWindow().Start
	f.series.series["1A"] = domain.Series{WellID: "1A", Observations: []domain.Observation{
		{Time: start.Add(-time.Hour), Drawdown: 0},
	}}
	f.series.series["2B"] = domain.Series{WellID: "2B", Observations: []domain.Observation{
		{Time: start.Add(time.Minute), Drawdown: 0.1},
		{Time: start.Add(2 * time.Minute), Drawdown: 0.2},
	}}

	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.WellsSkipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WellsSkipped.WithLabelValues(observability.SkipEmpty)))
	assert.Equal(t, 1, rep.DerivativeFailures)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DerivativeFailures))

	require.Len(t, f.strategy.added, 3)
	assert.Equal(t, "2B", f.strategy.added[0].File.ID)
	assert.Nil(t, f.strategy.added[0].Derivative, "failed fit is plotted without overlay")
}

func TestPipeline_Run_RenderErrorSkipsWell(t *testing.T) {
	f := newFixture()
	f.strategy.addErr = map[string]error{"3SW": domain.ErrNoPlottableSamples}

	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.WellsSkipped)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WellsSkipped.WithLabelValues(observability.SkipRender)))
}

func TestPipeline_Run_UnknownWellFailsContourOnly(t *testing.T) {
	f := newFixture()
	f.series.files = append(f.series.files, domain.WellFile{ID: "9D", Path: "grand-island-test-wenzel-9D.csv"})
	f.series.series["9D"] = theisSeries("9D", 150)

	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrUnknownWell)
	assert.Contains(t, err.Error(), "9D")

	assert.Empty(t, f.contours.rendered)
	require.Len(t, f.screens.rendered, 1, "screen plot is independent of the contour phase")
	assert.Contains(t, rep.Figures, "grand-island-screen-locations.eps")
	assert.Zero(t, testutil.ToFloat64(f.metrics.RunSucceeded))
}

func TestPipeline_Run_PhaseErrorsJoined(t *testing.T) {
	f := newFixture()
	f.strategy.flushErr = errors.New("disk full")
	f.contours.err = errors.New("canvas failed")

	_, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "canvas failed")
	require.Len(t, f.screens.rendered, 1)
}

func TestPipeline_Run_MissingSiteTable(t *testing.T) {
	f := newFixture()
	f.sites.err = errors.New("no such file")

	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load site")
	assert.Len(t, rep.Figures, 4, "drawdown figures are still written")
	assert.Empty(t, f.screens.rendered)
}

func TestPipeline_Run_MapsOnly(t *testing.T) {
	f := newFixture()
	opts := testOptions()
	opts.DrawdownCheck = false

	_, err := f.pipeline(opts, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.series.loaded)
	assert.Empty(t, f.strategy.added)
	require.Len(t, f.contours.rendered, 1)
}

func TestPipeline_Run_Export(t *testing.T) {
	f := newFixture()
	exp := &mockExporter{}

	rep, err := f.pipeline(testOptions(), exp).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, exp.saved)
	assert.Equal(t, []string{"1A", "2B", "3SW"}, exp.derivatives)
	assert.Len(t, exp.coords, len(testSite().Wells))
	assert.Contains(t, rep.Figures, "wells.xlsx")
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	f := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline(testOptions(), nil).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.series.loaded)
	assert.Empty(t, f.contours.rendered)
}

func TestPipeline_Run_ReportTimes(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC))
	pipeline.SetClock(fake)
	t.Cleanup(func() { pipeline.SetClock(nil) })

	f := newFixture()
	rep, err := f.pipeline(testOptions(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fake.Now(), rep.StartedAt)
	assert.Equal(t, fake.Now(), rep.FinishedAt)
	assert.Zero(t, testutil.ToFloat64(f.metrics.PhaseDuration.WithLabelValues("drawdown")))
}
