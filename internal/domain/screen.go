package domain

import (
	"fmt"
	"math"
)

// ScreenInterval is a well screen drawn against radial distance. A zero
// length screen has Top == Bottom and is drawn as a point.
type ScreenInterval struct {
	WellID string
	Label  string
	Radius float64
	Bottom float64 // elevation of the bottom of the screen
	Top    float64 // elevation of the top of the screen
}

// IsPoint reports whether the screen has no length.
func (s ScreenInterval) IsPoint() bool { return s.Top == s.Bottom }

// Marker is a labelled value at a radial distance.
type Marker struct {
	Label  string
	Radius float64
	Value  float64
}

// ScreenProfile is the cross-section of every well against its distance from
// the pumped well.
type ScreenProfile struct {
	Screens          []ScreenInterval
	WaterLevels      []Marker // elevation - water level
	MeasuringPoints  []Marker // elevation - measuring-point height
	PumpedWellScreen ScreenInterval
	MaxRadius        float64
}

// PumpedWellReferenceRadius is where the pumped well's screen is drawn; it
// sits at zero radius, which a plot starting at 1 ft cannot show.
const PumpedWellReferenceRadius = 1.0

// ScreenOf returns a well's screen interval: bottom = elevation - screen
// depth, top = bottom + screen length.
func ScreenOf(w WellInfo) ScreenInterval {
	bottom := w.Elevation - w.ScreenDepth
	top := bottom
	if w.ScreenLength != 0 && !math.IsNaN(w.ScreenLength) {
		top = bottom + w.ScreenLength
	}
	return ScreenInterval{
		WellID: w.ID,
		Label:  w.Label(),
		Radius: w.RadialDistance,
		Bottom: bottom,
		Top:    top,
	}
}

// BuildScreenProfile assembles the screen cross-section. The pumped well's
// screen is drawn as a fixed bar at PumpedWellReferenceRadius from its
// elevation down pumped.ScreenDepth.
func BuildScreenProfile(site Site, pumped PumpedWell) (ScreenProfile, error) {
	ref, err := site.Resolve(pumped.ID)
	if err != nil {
		return ScreenProfile{}, fmt.Errorf("pumped %w", err)
	}

	p := ScreenProfile{
		PumpedWellScreen: ScreenInterval{
			WellID: ref.ID,
			Label:  ref.Label(),
			Radius: PumpedWellReferenceRadius,
			Bottom: ref.Elevation - pumped.ScreenDepth,
			Top:    ref.Elevation,
		},
		MaxRadius: site.MaxRadius(),
	}
	for _, w := range site.Wells {
		p.Screens = append(p.Screens, ScreenOf(w))
		p.WaterLevels = append(p.WaterLevels, Marker{Label: w.Label(), Radius: w.RadialDistance, Value: w.WaterTable()})
		p.MeasuringPoints = append(p.MeasuringPoints, Marker{Label: w.Label(), Radius: w.RadialDistance, Value: w.LandSurface()})
	}
	return p, nil
}

// CheckObserved verifies that every observed well has a metadata record.
// The returned error wraps ErrUnknownWell and names the first missing well.
func CheckObserved(site Site, wellIDs []string) error {
	for _, id := range wellIDs {
		if _, err := site.Resolve(id); err != nil {
			return err
		}
	}
	return nil
}
