package rectify

import (
	"fmt"
	"image/color"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// Warp maps the quadrilateral q of img onto the canonical card rectangle
// (0,0), (W,0), (W,H), (0,H) with bilinear resampling. Source reads outside
// img are black. The caller owns the returned card.
func Warp(img gocv.Mat, q Quad, cfg Config) (gocv.Mat, error) {
	if err := checkQuad(q, cfg.MinCornerArea, cfg.MinCornerRatio); err != nil {
		return gocv.Mat{}, err
	}

	size := cfg.CardSize()
	w, h := float32(size.X), float32(size.Y)

	src := q.vector2f()
	defer src.Close()
	dst := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}})
	defer dst.Close()

	transform := gocv.GetPerspectiveTransform2f(src, dst)
	defer transform.Close()
	if err := checkTransform(transform, cfg.MaxCondition); err != nil {
		return gocv.Mat{}, err
	}

	card := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(img, &card, transform, size,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{0, 0, 0, 0})
	return card, nil
}

// checkQuad rejects corner sets where any three corners are (nearly)
// collinear or coincident. A triangle is degenerate when its area is below
// minArea or below minRatio times the largest of the four triangles, so the
// test holds at any image scale.
func checkQuad(q Quad, minArea, minRatio float64) error {
	for i, p := range q {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return &DegenerateGeometryError{Reason: fmt.Sprintf("%s corner %v is not finite", cornerNames[i], p)}
		}
	}

	type triple struct {
		i, j, k int
		area    float64
	}
	var (
		triples [4]triple
		largest float64
	)
	n := 0
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				a := triangleArea(q[i], q[j], q[k])
				triples[n] = triple{i, j, k, a}
				largest = math.Max(largest, a)
				n++
			}
		}
	}
	for _, t := range triples {
		if t.area < minArea || t.area < minRatio*largest {
			return &DegenerateGeometryError{Reason: fmt.Sprintf(
				"corners %s%v, %s%v and %s%v are collinear (area %.2f of %.2f)",
				cornerNames[t.i], q[t.i], cornerNames[t.j], q[t.j], cornerNames[t.k], q[t.k], t.area, largest)}
		}
	}
	return nil
}

// checkTransform rejects transforms that are missing, non-finite or too
// ill-conditioned to resample with.
func checkTransform(m gocv.Mat, maxCondition float64) error {
	if m.Empty() || m.Rows() != 3 || m.Cols() != 3 {
		return &DegenerateGeometryError{Reason: "perspective transform could not be solved"}
	}
	data := make([]float64, 0, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := m.GetDoubleAt(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &DegenerateGeometryError{Reason: "perspective transform is not finite"}
			}
			data = append(data, v)
		}
	}
	if cond := mat.Cond(mat.NewDense(3, 3, data), 2); math.IsInf(cond, 1) || cond > maxCondition {
		return &DegenerateGeometryError{Reason: fmt.Sprintf("perspective transform condition number %.3g exceeds %.3g", cond, maxCondition)}
	}
	return nil
}
