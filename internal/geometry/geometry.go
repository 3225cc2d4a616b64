package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Point is an (x, y) coordinate pair.
type Point = r2.Point

// Pt is shorthand for building a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Area returns the area enclosed by the polygon described by points.
// The polygon is implicitly closed. The result is the absolute value of the
// shoelace signed area, so vertex winding does not matter.
// Fewer than three points enclose nothing and yield 0.
func Area(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}

	var sum float64
	for i, p := range points {
		q := points[(i+1)%len(points)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of the closed polygon described by points,
// including the segment from the last point back to the first.
func Perimeter(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i, p := range points {
		total += Length(p, points[(i+1)%len(points)])
	}
	return total
}

// PathLength returns the length of the open polyline described by points.
func PathLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Length(points[i-1], points[i])
	}
	return total
}

// Length returns the Euclidean distance between a and b.
func Length(a, b Point) float64 {
	return b.Sub(a).Norm()
}

// Angle returns the angle in degrees at vertex formed by the rays towards
// p1 and p3. The result is always within [0, 180].
func Angle(p1, vertex, p3 Point) float64 {
	bearing1 := math.Atan2(p1.Y-vertex.Y, p1.X-vertex.X)
	bearing3 := math.Atan2(p3.Y-vertex.Y, p3.X-vertex.X)

	deg := math.Abs(bearing1-bearing3) * 180 / math.Pi
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

// Centroid returns the arithmetic mean of points.
// It returns the zero point for empty input.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var c Point
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(points)))
}

// Bounds returns the smallest rectangle containing every point.
// Empty input yields r2.EmptyRect().
func Bounds(points []Point) r2.Rect {
	if len(points) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(points...)
}

// Scale returns a copy of points with every coordinate multiplied by f.
func Scale(points []Point, f float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = p.Mul(f)
	}
	return out
}
