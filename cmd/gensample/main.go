// Command gensample writes a synthetic Grand Island style dataset: one
// observation file per well plus the well metadata table. Drawdown follows
// the Theis solution with recovery after the pump stops, so the output
// exercises every phase of giplot without the historical files.
//
// Usage:
//
//	go run ./cmd/gensample -out data/sample -wells-per-line 3
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/grand-island-pumptest/internal/adapter/csvfile"
	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// pumpedWellRadius stands in for the zero distance of the pumped well, where
// the Theis solution is singular.
const pumpedWellRadius = 1.0

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory")
	prefix := flag.String("prefix", "grand-island-test-wenzel-", "observation file prefix")
	perLine := flag.Int("wells-per-line", 3, "observation wells on each line")
	transmissivity := flag.Float64("transmissivity", 1.8e5, "aquifer transmissivity (ft²/day)")
	storativity := flag.Float64("storativity", 0.2, "aquifer storativity")
	rate := flag.Float64("rate", 2.1e5, "pumping rate (ft³/day)")
	noise := flag.Float64("noise", 0.005, "standard deviation of reading noise (ft)")
	seed := flag.Uint64("seed", 1931, "random seed")
	flag.Parse()

	if *out == "" || *perLine < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -wells-per-line >= 1")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	store := csvfile.NewStore(*out, *prefix, ".csv", *prefix+"info.csv", slog.New(slog.NewTextHandler(io.Discard, nil)))
	rng := rand.New(rand.NewPCG(*seed, *seed))
	aq := domain.Aquifer{Transmissivity: *transmissivity, Storativity: *storativity}
	window := domain.DefaultTestWindow()

	site := sampleSite(*perLine, rng)
	if _, err := store.WriteSite(site); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	log.Printf("metadata: %d wells", len(site.Wells))

	for _, w := range site.Wells {
		r := w.RadialDistance
		if r == 0 {
			r = pumpedWellRadius
		}
		series := sampleSeries(w.Label(), aq, *rate, r, window, *noise, rng)
		path, err := store.WriteSeries(series)
		if err != nil {
			return fmt.Errorf("writing well %s: %w", w.Label(), err)
		}
		peak := 0.0
		for _, o := range series.Observations {
			peak = math.Max(peak, o.Drawdown)
		}
		log.Printf("%s: %d readings, peak drawdown %.2f ft -> %s", w.Label(), len(series.Observations), peak, path)
	}
	return nil
}

// sampleSite places the pumped well at the origin and perLine wells on each
// line at increasing distances.
func sampleSite(perLine int, rng *rand.Rand) domain.Site {
	pumped := domain.DefaultPumpedWell()
	site := domain.Site{Wells: []domain.WellInfo{{
		ID:                   pumped.ID,
		Diameter:             24,
		ScreenDepth:          60,
		MeasuringPointHeight: 1,
		Elevation:            1900,
		InitialWaterLevel:    8,
		ScreenLength:         math.NaN(),
	}}}

	lines := domain.DefaultLineTable()
	n := 1
	for _, line := range lines.Lines() {
		for k := 1; k <= perLine; k++ {
			r := 25 * math.Pow(3, float64(k))
			p := domain.Polar(r, lines.Angles[line])
			elev := 1900 + 0.004*p.X - 0.002*p.Y + rng.NormFloat64()*0.3
			screen := 0.0
			if k%2 == 0 {
				screen = 5
			}
			site.Wells = append(site.Wells, domain.WellInfo{
				ID:                   strconv.Itoa(n),
				Line:                 line,
				Diameter:             1.25,
				ScreenLength:         screen,
				ScreenDepth:          40 + 5*float64(k),
				MeasuringPointHeight: round(1+rng.Float64(), 0.1),
				Elevation:            round(elev, 0.01),
				RadialDistance:       round(r, 0.1),
				InitialWaterLevel:    round(8+0.003*p.X+rng.NormFloat64()*0.1, 0.01),
			})
			n++
		}
	}
	return site
}

// sampleSeries reads the well at roughly logarithmic intervals from just
// before the pump starts until well into recovery.
func sampleSeries(id string, aq domain.Aquifer, q, r float64, w domain.TestWindow, noise float64, rng *rand.Rand) domain.Series {
	pumping := w.DurationMinutes()
	s := domain.Series{WellID: id}
	s.Observations = append(s.Observations, domain.Observation{Time: w.Start.Add(-5 * time.Minute)})

	last := 0.0
	for m := 0.5; m < 2*pumping; m *= 1.25 {
		minutes := math.Round(m)
		if minutes <= last {
			continue
		}
		last = minutes
		dd := aq.Drawdown(q, r, minutes, pumping) + rng.NormFloat64()*noise
		s.Observations = append(s.Observations, domain.Observation{
			Time:     w.Start.Add(time.Duration(minutes) * time.Minute),
			Drawdown: round(math.Max(dd, 0), 0.01),
		})
	}
	return s
}

func round(v, step float64) float64 {
	return math.Round(v/step) * step
}
