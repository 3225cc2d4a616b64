// Package geometry provides the measurement math behind drawtopia's
// measurement tools: polygon area and perimeter, segment length and the
// angle at a vertex.
//
// All functions are pure. Points are github.com/golang/geo/r2 points so the
// bounding rectangles used for PDF annotation boxes come for free.
//
// Degenerate input never panics: Area returns 0 for fewer than three points,
// Perimeter and PathLength return 0 for fewer than two.
package geometry
