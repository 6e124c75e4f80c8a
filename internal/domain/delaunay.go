package domain

import (
	"fmt"

	"github.com/fogleman/delaunay"
)

// Triangle holds indices into the triangulated point slice, counter-clockwise.
type Triangle [3]int

// Triangulate returns the Delaunay triangulation of pts. Near-duplicate
// points are ignored. Fewer than three distinct non-collinear points cannot
// be triangulated.
func Triangulate(pts []Point) ([]Triangle, error) {
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, have %d", ErrTriangulation, len(pts))
	}

	in := make([]delaunay.Point, len(pts))
	for i, p := range pts {
		in[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	tri, err := delaunay.Triangulate(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTriangulation, err)
	}

	out := make([]Triangle, 0, len(tri.Triangles)/3)
	for i := 0; i+2 < len(tri.Triangles); i += 3 {
		t := Triangle{tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]}
		o := orient(pts[t[0]], pts[t[1]], pts[t[2]])
		if o == 0 {
			continue
		}
		// delaunay emits clockwise triangles in a y-up frame.
		if o < 0 {
			t[1], t[2] = t[2], t[1]
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: points are collinear", ErrTriangulation)
	}
	return out, nil
}

// ConvexHull returns the convex hull of pts counter-clockwise, without
// repeating the first vertex.
func ConvexHull(pts []Point) []Point {
	in := make([]delaunay.Point, len(pts))
	for i, p := range pts {
		in[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	hull := delaunay.ConvexHull(in)
	out := make([]Point, len(hull))
	for i, p := range hull {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out
}

// orient is twice the signed area of abc, positive when counter-clockwise.
func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// barycentric returns the weights of p with respect to abc.
func barycentric(a, b, c, p Point) (l1, l2, l3 float64, ok bool) {
	den := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if den == 0 {
		return 0, 0, 0, false
	}
	l1 = ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / den
	l2 = ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / den
	l3 = 1 - l1 - l2
	return l1, l2, l3, true
}
