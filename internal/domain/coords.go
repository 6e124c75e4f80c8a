package domain

import (
	"fmt"
	"math"
)

// Point is a map position in feet relative to the pumped well.
type Point struct {
	X, Y float64
}

// SiteCoordinate is a well placed on the map.
type SiteCoordinate struct {
	WellID string
	Line   string
	Label  string
	Point
}

// Polar converts a radius and a bearing in degrees to Cartesian coordinates.
// A zero radius is exactly the origin.
func Polar(r, degrees float64) Point {
	if r == 0 {
		return Point{}
	}
	theta := degrees * math.Pi / 180
	return Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// ResolveCoordinates places every well of the site on the map using the
// bearing of its line. Wells at zero radius (the pumped well) sit at the
// origin whatever their line.
func ResolveCoordinates(site Site, lines LineTable) ([]SiteCoordinate, error) {
	out := make([]SiteCoordinate, 0, len(site.Wells))
	for _, w := range site.Wells {
		c := SiteCoordinate{WellID: w.ID, Line: w.Line, Label: w.Label()}
		if w.RadialDistance != 0 {
			if math.IsNaN(w.RadialDistance) {
				return nil, fmt.Errorf("well %s: %w: radial distance missing", w.ID, ErrMalformedRecord)
			}
			angle, err := lines.Angle(w.Line)
			if err != nil {
				return nil, fmt.Errorf("well %s: %w", w.ID, err)
			}
			c.Point = Polar(w.RadialDistance, angle)
		}
		out = append(out, c)
	}
	return out, nil
}

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// Contains reports whether p lies inside or on the rectangle.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// BoundsOf returns the bounding box of the points grown by buffer on every side.
func BoundsOf(points []Point, buffer float64) Bounds {
	if len(points) == 0 {
		return Bounds{MinX: -buffer, MaxX: buffer, MinY: -buffer, MaxY: buffer}
	}
	b := Bounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	for _, p := range points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	b.MinX -= buffer
	b.MaxX += buffer
	b.MinY -= buffer
	b.MaxY += buffer
	return b
}
