package rectify

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Point is a 2D point with float coordinates.
type Point struct {
	X, Y float64
}

func (p Point) String() string { return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y) }

func pointOf(p image.Point) Point { return Point{X: float64(p.X), Y: float64(p.Y)} }

// Quad is a corner set ordered top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// Corner labels, indexed like Quad.
var cornerNames = [4]string{"TL", "TR", "BR", "BL"}

func (q Quad) vector2f() gocv.Point2fVector {
	pts := make([]gocv.Point2f, len(q))
	for i, p := range q {
		pts[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return gocv.NewPoint2fVectorFromPoints(pts)
}

func (q Quad) imagePoints() []image.Point {
	pts := make([]image.Point, len(q))
	for i, p := range q {
		pts[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	return pts
}

// triangleArea is the unsigned area of triangle abc.
func triangleArea(a, b, c Point) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X)) / 2
}

// polygonArea is the unsigned shoelace area of a closed polygon.
func polygonArea(pts []image.Point) float64 {
	var sum float64
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		sum += float64(a.X*b.Y - b.X*a.Y)
	}
	return math.Abs(sum) / 2
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b image.Point) float64 {
	px, py := float64(p.X), float64(p.Y)
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

func squaredDistance(a, b image.Point) float64 {
	dx, dy := float64(a.X-b.X), float64(a.Y-b.Y)
	return dx*dx + dy*dy
}
