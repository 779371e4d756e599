package rectify

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// SelectContour returns the outer boundary enclosing the largest area in mask.
func SelectContour(mask gocv.Mat) ([]image.Point, error) {
	ranked := rankContours(mask, 1)
	if len(ranked) == 0 {
		return nil, &NoContourError{}
	}
	return ranked[0], nil
}

// rankContours returns up to limit outer contours of mask, largest enclosed
// area first. Equal areas keep the order FindContours reported them in.
func rankContours(mask gocv.Mat, limit int) [][]image.Point {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	type candidate struct {
		points []image.Point
		area   float64
	}
	candidates := make([]candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		candidates = append(candidates, candidate{
			points: contour.ToPoints(),
			area:   gocv.ContourArea(contour),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([][]image.Point, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, c.points)
	}
	return out
}
