package rectify

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// RegionRect converts a fractional region to pixels on a card of the given size.
func RegionRect(card image.Point, r Region) image.Rectangle {
	x := int(math.Round(r.X * float64(card.X)))
	y := int(math.Round(r.Y * float64(card.Y)))
	w := int(math.Round(r.W * float64(card.X)))
	h := int(math.Round(r.H * float64(card.Y)))
	return image.Rect(x, y, x+w, y+h)
}

// ExtractRegion copies the text region out of a rectified card.
func ExtractRegion(card gocv.Mat, r Region) (gocv.Mat, error) {
	bounds := image.Rect(0, 0, card.Cols(), card.Rows())
	rect := RegionRect(bounds.Size(), r)
	if rect.Empty() || !rect.In(bounds) {
		return gocv.Mat{}, &RegionBoundsError{Rect: rect, Bounds: bounds}
	}

	view := card.Region(rect)
	defer view.Close()
	return view.Clone(), nil
}
