package render

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/grand-island-pumptest/internal/domain"
)

// Screens draws the well-screen cross-section against radial distance.
type Screens struct {
	out          Output
	pumpedWellID string
}

// NewScreens creates a screen cross-section renderer.
func NewScreens(out Output, pumpedWellID string) *Screens {
	return &Screens{out: out, pumpedWellID: pumpedWellID}
}

// Render writes grand-island-screen-locations.<format>.
func (r *Screens) Render(prof domain.ScreenProfile) (string, error) {
	p := plot.New()
	p.X.Label.Text = fmt.Sprintf("radial distance from well %s (ft)", r.pumpedWellID)
	p.Y.Label.Text = "elevation"
	p.Add(plotter.NewGrid())

	var points plotter.XYs
	for _, s := range prof.Screens {
		if !finite(s.Radius) || !finite(s.Bottom) {
			continue
		}
		if s.IsPoint() {
			points = append(points, plotter.XY{X: s.Radius, Y: s.Bottom})
			continue
		}
		seg, err := newLine(plotter.XYs{{X: s.Radius, Y: s.Bottom}, {X: s.Radius, Y: s.Top}}, colornames.Black, vg.Points(1.5), nil)
		if err != nil {
			return "", fmt.Errorf("well %s: %w", s.WellID, err)
		}
		p.Add(seg)
	}
	if len(points) > 0 {
		s, err := newScatter(points, draw.CircleGlyph{}, colornames.Black, vg.Points(1.5))
		if err != nil {
			return "", err
		}
		p.Add(s)
	}

	water, labels := markerXYs(prof.WaterLevels)
	if err := addMarkers(p, water, colornames.Blue); err != nil {
		return "", err
	}
	land, _ := markerXYs(prof.MeasuringPoints)
	if err := addMarkers(p, land, colornames.Black); err != nil {
		return "", err
	}
	if len(water) > 0 {
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: water, Labels: labels})
		if err != nil {
			return "", err
		}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].Font.Size = vg.Points(4)
		}
		p.Add(lbl)
	}

	ref := prof.PumpedWellScreen
	if finite(ref.Bottom) && finite(ref.Top) {
		bar, err := newLine(plotter.XYs{{X: ref.Radius, Y: ref.Bottom}, {X: ref.Radius, Y: ref.Top}}, colornames.Black, vg.Points(5), nil)
		if err != nil {
			return "", err
		}
		p.Add(bar)
	}

	p.X.Min = domain.PumpedWellReferenceRadius
	p.X.Max = prof.MaxRadius
	if p.X.Max <= p.X.Min {
		p.X.Max = p.X.Min + 1
	}

	path := r.out.path(ScreenName)
	if err := writeFigure(path, r.out.Format, 15*vg.Inch, 5*vg.Inch, p.Draw); err != nil {
		return "", err
	}
	return path, nil
}

func markerXYs(ms []domain.Marker) (plotter.XYs, []string) {
	xys := make(plotter.XYs, 0, len(ms))
	labels := make([]string, 0, len(ms))
	for _, m := range ms {
		if finite(m.Radius) && finite(m.Value) {
			xys = append(xys, plotter.XY{X: m.Radius, Y: m.Value})
			labels = append(labels, m.Label)
		}
	}
	return xys, labels
}

func addMarkers(p *plot.Plot, xys plotter.XYs, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	s, err := newScatter(xys, dashGlyph{}, c, vg.Points(3))
	if err != nil {
		return err
	}
	p.Add(s)
	return nil
}
