package domain

import (
	"fmt"
	"math"
)

// Legacy gridding parameters.
const (
	DefaultGridNX     = 40
	DefaultGridNY     = 40
	DefaultGridBuffer = 50.0
)

// GridSpec sizes the regular grid that scattered well values are
// interpolated onto.
type GridSpec struct {
	NX, NY int
	Buffer float64 // ft added around the well bounding box
}

// DefaultGridSpec returns the 40 x 40 grid with a 50 ft buffer.
func DefaultGridSpec() GridSpec {
	return GridSpec{NX: DefaultGridNX, NY: DefaultGridNY, Buffer: DefaultGridBuffer}
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}

// Field is a scalar field sampled on a regular grid. Values[c][r] lies at
// (Xs[c], Ys[r]); nodes outside the data hull are NaN.
//
// Field satisfies the gonum plotter.GridXYZ interface.
type Field struct {
	Xs, Ys []float64
	Values [][]float64
	// Hull is the counter-clockwise convex hull of the points that carried a
	// value.
	Hull []Point
}

// Dims returns the number of columns and rows.
func (f *Field) Dims() (c, r int) { return len(f.Xs), len(f.Ys) }

// Z returns the value at column c, row r.
func (f *Field) Z(c, r int) float64 { return f.Values[c][r] }

// X returns the x coordinate of column c.
func (f *Field) X(c int) float64 { return f.Xs[c] }

// Y returns the y coordinate of row r.
func (f *Field) Y(r int) float64 { return f.Ys[r] }

// Range returns the minimum and maximum finite values, or NaN, NaN when
// there are none.
func (f *Field) Range() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, col := range f.Values {
		for _, v := range col {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}

// Filled returns a copy of f where every NaN node takes the value of the
// nearest finite node in grid steps. A field with no finite node is copied
// unchanged.
func (f *Field) Filled() *Field {
	nx, ny := f.Dims()
	out := &Field{Xs: f.Xs, Ys: f.Ys, Values: make([][]float64, nx), Hull: f.Hull}
	type node struct{ c, r int }
	queue := make([]node, 0, nx*ny)
	for c := range f.Values {
		out.Values[c] = append([]float64(nil), f.Values[c]...)
		for r, v := range f.Values[c] {
			if !math.IsNaN(v) {
				queue = append(queue, node{c, r})
			}
		}
	}

	for i := 0; i < len(queue); i++ {
		n := queue[i]
		v := out.Values[n.c][n.r]
		for _, d := range [4]node{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			c, r := n.c+d.c, n.r+d.r
			if c < 0 || c >= nx || r < 0 || r >= ny || !math.IsNaN(out.Values[c][r]) {
				continue
			}
			out.Values[c][r] = v
			queue = append(queue, node{c, r})
		}
	}
	return out
}

// InterpolateField grids scattered values by linear barycentric
// interpolation on the Delaunay triangulation of the points. Points with a
// NaN value are left out.
func InterpolateField(points []Point, values []float64, b Bounds, nx, ny int) (*Field, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("%w: %d points for %d values", ErrTriangulation, len(points), len(values))
	}
	var pts []Point
	var vals []float64
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, points[i])
		vals = append(vals, v)
	}

	tris, err := Triangulate(pts)
	if err != nil {
		return nil, err
	}

	f := &Field{
		Xs:     Linspace(b.MinX, b.MaxX, nx),
		Ys:     Linspace(b.MinY, b.MaxY, ny),
		Values: make([][]float64, nx),
		Hull:   ConvexHull(pts),
	}
	const eps = 1e-9
	for c, x := range f.Xs {
		f.Values[c] = make([]float64, ny)
		for r, y := range f.Ys {
			f.Values[c][r] = math.NaN()
			p := Point{X: x, Y: y}
			for _, t := range tris {
				l1, l2, l3, ok := barycentric(pts[t[0]], pts[t[1]], pts[t[2]], p)
				if !ok || l1 < -eps || l2 < -eps || l3 < -eps {
					continue
				}
				f.Values[c][r] = l1*vals[t[0]] + l2*vals[t[1]] + l3*vals[t[2]]
				break
			}
		}
	}
	return f, nil
}

// ContourMaps holds the gridded land surface and water table around the
// well coordinates.
type ContourMaps struct {
	Coordinates []SiteCoordinate
	Bounds      Bounds
	LandSurface *Field
	WaterTable  *Field
}

// BuildContourMaps resolves the well coordinates and grids land surface
// (elevation - measuring-point height) and water table (elevation - water
// level) over the buffered bounding box.
func BuildContourMaps(site Site, lines LineTable, grid GridSpec) (ContourMaps, error) {
	coords, err := ResolveCoordinates(site, lines)
	if err != nil {
		return ContourMaps{}, err
	}

	points := make([]Point, len(coords))
	land := make([]float64, len(coords))
	water := make([]float64, len(coords))
	for i, c := range coords {
		points[i] = c.Point
		land[i] = site.Wells[i].LandSurface()
		water[i] = site.Wells[i].WaterTable()
	}

	m := ContourMaps{Coordinates: coords, Bounds: BoundsOf(points, grid.Buffer)}
	if m.LandSurface, err = InterpolateField(points, land, m.Bounds, grid.NX, grid.NY); err != nil {
		return ContourMaps{}, fmt.Errorf("land surface: %w", err)
	}
	if m.WaterTable, err = InterpolateField(points, water, m.Bounds, grid.NX, grid.NY); err != nil {
		return ContourMaps{}, fmt.Errorf("water table: %w", err)
	}
	return m, nil
}
