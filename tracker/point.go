package tracker

import (
	"image"
	"math"
)

// Point represents an x,y position in viewport pixel coordinates.  Filter
// estimates are kept at full precision, rendering rounds them to pixels
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Clamp restricts p to the rectangle [0, width] x [0, height]
func (p Point) Clamp(width, height float64) Point {
	return Point{
		X: math.Min(math.Max(p.X, 0), width),
		Y: math.Min(math.Max(p.Y, 0), height),
	}
}

// ImagePoint rounds p to the nearest pixel
func (p Point) ImagePoint() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
