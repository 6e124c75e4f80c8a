package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 9, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestTriangulate_Square(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tris, err := Triangulate(pts)
	require.NoError(t, err)
	assert.Len(t, tris, 2)
	for _, tr := range tris {
		assert.Greater(t, orient(pts[tr[0]], pts[tr[1]], pts[tr[2]]), 0.0, "triangle %v not counter-clockwise", tr)
	}
}

func TestTriangulate_Errors(t *testing.T) {
	_, err := Triangulate([]Point{{0, 0}, {1, 1}})
	require.ErrorIs(t, err, ErrTriangulation)

	_, err = Triangulate([]Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}})
	require.ErrorIs(t, err, ErrTriangulation)
}

func TestTriangulate_IgnoresDuplicates(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0}, {0, 1}, {1, 0}}
	tris, err := Triangulate(pts)
	require.NoError(t, err)
	require.Len(t, tris, 1)
	for _, i := range tris[0] {
		assert.NotEqual(t, 3, i)
	}
}

func TestTriangulate_CoversRadialLayout(t *testing.T) {
	const outer = 675.0
	pts := []Point{{0, 0}}
	for bearing := 0.0; bearing < 360; bearing += 45 {
		for _, r := range []float64{25, 225, outer} {
			pts = append(pts, Polar(r, bearing))
		}
	}

	tris, err := Triangulate(pts)
	require.NoError(t, err)

	var area float64
	for _, tr := range tris {
		o := orient(pts[tr[0]], pts[tr[1]], pts[tr[2]])
		require.Greater(t, o, 0.0)
		area += o / 2
	}
	// Regular octagon of circumradius outer.
	assert.InEpsilon(t, 2*math.Sqrt2*outer*outer, area, 1e-9)
}

func TestInterpolateField_ReproducesPlane(t *testing.T) {
	plane := func(p Point) float64 { return 2*p.X - 3*p.Y + 10 }
	pts := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 4}}
	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = plane(p)
	}

	f, err := InterpolateField(pts, vals, Bounds{MinX: -5, MaxX: 15, MinY: -5, MaxY: 15}, 21, 21)
	require.NoError(t, err)

	nx, ny := f.Dims()
	assert.Equal(t, 21, nx)
	assert.Equal(t, 21, ny)
	for c := 0; c < nx; c++ {
		for r := 0; r < ny; r++ {
			p := Point{f.X(c), f.Y(r)}
			inside := p.X >= 0 && p.X <= 10 && p.Y >= 0 && p.Y <= 10
			if inside {
				assert.InDelta(t, plane(p), f.Z(c, r), 1e-9, "node %v", p)
			} else {
				assert.True(t, math.IsNaN(f.Z(c, r)), "node %v outside hull should be NaN", p)
			}
		}
	}

	lo, hi := f.Range()
	assert.InDelta(t, plane(Point{0, 10}), lo, 1e-9)
	assert.InDelta(t, plane(Point{10, 0}), hi, 1e-9)
}

func TestInterpolateField_SkipsNaN(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0}, {0, 1}, {5, 5}}
	vals := []float64{1, 1, 1, math.NaN()}

	f, err := InterpolateField(pts, vals, Bounds{MaxX: 5, MaxY: 5}, 6, 6)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.Z(0, 0))
	assert.True(t, math.IsNaN(f.Z(5, 5)))
}

func TestBuildContourMaps(t *testing.T) {
	site := testSite()
	grid := DefaultGridSpec()

	m, err := BuildContourMaps(site, DefaultLineTable(), grid)
	require.NoError(t, err)

	nx, ny := m.LandSurface.Dims()
	assert.Equal(t, grid.NX, nx)
	assert.Equal(t, grid.NY, ny)

	for _, c := range m.Coordinates {
		assert.True(t, m.Bounds.Contains(Point{c.X - grid.Buffer, c.Y - grid.Buffer}))
		assert.True(t, m.Bounds.Contains(Point{c.X + grid.Buffer, c.Y + grid.Buffer}))
	}
	assert.Equal(t, m.Bounds.MinX, m.WaterTable.X(0))
	assert.Equal(t, m.Bounds.MaxY, m.WaterTable.Y(ny-1))

	lo, hi := m.LandSurface.Range()
	assert.GreaterOrEqual(t, lo, 1897.0-1e-9)
	assert.LessOrEqual(t, hi, 1901.5+1e-9)
}

func TestBuildContourMaps_UnknownLine(t *testing.T) {
	site := testSite()
	site.Wells[2].Line = "Z"
	_, err := BuildContourMaps(site, DefaultLineTable(), DefaultGridSpec())
	require.ErrorIs(t, err, ErrUnknownLine)
}

func TestConvexHull(t *testing.T) {
	pts := []Point{{0, 0}, {4, 0}, {2, 1}, {4, 3}, {0, 3}, {1, 1}}
	hull := ConvexHull(pts)
	require.Len(t, hull, 4)
	assert.ElementsMatch(t, []Point{{0, 0}, {4, 0}, {4, 3}, {0, 3}}, hull)

	var area float64
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		area += a.X*b.Y - b.X*a.Y
	}
	assert.InDelta(t, 24.0, area, 1e-12, "hull is not counter-clockwise")
}

func TestField_Filled(t *testing.T) {
	nan := math.NaN()
	f := &Field{
		Xs: []float64{0, 1, 2, 3},
		Ys: []float64{0, 1},
		Values: [][]float64{
			{nan, nan},
			{1, nan},
			{nan, 2},
			{nan, nan},
		},
	}

	// Ties in grid distance go to the node reached first.
	g := f.Filled()
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}, {1, 2}, {1, 2}}, g.Values)
	assert.True(t, math.IsNaN(f.Values[0][0]), "source field modified")

	empty := &Field{Xs: []float64{0}, Ys: []float64{0}, Values: [][]float64{{nan}}}
	assert.True(t, math.IsNaN(empty.Filled().Values[0][0]))
}

func TestInterpolateField_HullSkipsNaNPoints(t *testing.T) {
	pts := []Point{{0, 0}, {2, 0}, {0, 2}, {5, 5}}
	f, err := InterpolateField(pts, []float64{1, 1, 1, math.NaN()}, Bounds{MaxX: 5, MaxY: 5}, 6, 6)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Point{{0, 0}, {2, 0}, {0, 2}}, f.Hull)
}
