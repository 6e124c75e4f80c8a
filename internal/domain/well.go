package domain

import (
	"fmt"
	"math"
	"time"
)

// Observation is a single drawdown reading.
type Observation struct {
	Time     time.Time
	Drawdown float64 // ft
}

// Series is the ordered set of readings for one well.
type Series struct {
	WellID       string
	Observations []Observation
}

// WellFile is a discovered observation file.
type WellFile struct {
	ID   string
	Path string
}

// WellInfo is one row of the well metadata table.
type WellInfo struct {
	ID                   string
	Line                 string
	Diameter             float64 // inches
	ScreenLength         float64 // ft
	ScreenDepth          float64 // ft BMP, bottom of screen
	MeasuringPointHeight float64 // ft ALS
	Elevation            float64 // measuring point, ft AMSL
	RadialDistance       float64 // ft from the pumped well
	InitialWaterLevel    float64 // ft BMP
}

// Label is the identifier used to annotate maps, the number followed by the line.
func (w WellInfo) Label() string {
	return w.ID + w.Line
}

// LandSurface returns the land-surface elevation at the well.
func (w WellInfo) LandSurface() float64 {
	return w.Elevation - w.MeasuringPointHeight
}

// WaterTable returns the initial water-table elevation at the well.
func (w WellInfo) WaterTable() float64 {
	return w.Elevation - w.InitialWaterLevel
}

// Site is the metadata table for the whole test.
type Site struct {
	Wells []WellInfo
}

// Resolve finds the single metadata record for an observation well
// identifier. The identifier matches either the bare well number or the
// number followed by the line code, so "83" and "12A" both resolve. No match
// is ErrUnknownWell and more than one is ErrAmbiguousWell.
func (s Site) Resolve(wellID string) (WellInfo, error) {
	var (
		found WellInfo
		n     int
	)
	for _, w := range s.Wells {
		if w.ID == wellID || w.Label() == wellID {
			found = w
			n++
		}
	}
	switch n {
	case 0:
		return WellInfo{}, fmt.Errorf("well %s: %w", wellID, ErrUnknownWell)
	case 1:
		return found, nil
	default:
		return WellInfo{}, fmt.Errorf("well %s: %w: %d metadata records", wellID, ErrAmbiguousWell, n)
	}
}

// MaxRadius returns the largest finite radial distance in the table.
func (s Site) MaxRadius() float64 {
	maxR := 0.0
	for _, w := range s.Wells {
		if !math.IsNaN(w.RadialDistance) && w.RadialDistance > maxR {
			maxR = w.RadialDistance
		}
	}
	return maxR
}

// PumpedWell describes the pumping well, which is handled specially in
// several places.
type PumpedWell struct {
	ID string
	// Line is the line the pumped well is drawn with when a line is required.
	Line string
	// ScreenDepth is the known screened interval below the well's elevation.
	ScreenDepth float64
}

// DefaultPumpedWellScreenDepth is the screen interval of well 83 in feet
// below its measuring point altitude. It is a literal from the 1942 report
// analysis with no derivation in the metadata table.
const DefaultPumpedWellScreenDepth = 39.5

// DefaultPumpedWell returns well 83 with its legacy settings.
func DefaultPumpedWell() PumpedWell {
	return PumpedWell{ID: "83", Line: "A", ScreenDepth: DefaultPumpedWellScreenDepth}
}
