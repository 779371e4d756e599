package rectify

// OrderCorners assigns each corner its canonical role:
//
//	top-left     = minimum x+y
//	top-right    = minimum y-x
//	bottom-right = maximum x+y
//	bottom-left  = maximum y-x
//
// Ties go to the point that comes first in pts. Quadrilaterals close to a
// square rotated by 45° can map one point to two roles; the result is then
// deterministic but degenerate, and Warp rejects it.
func OrderCorners(pts [4]Point) Quad {
	minSum, maxSum, minDiff, maxDiff := 0, 0, 0, 0
	for i := 1; i < len(pts); i++ {
		sum, diff := pts[i].X+pts[i].Y, pts[i].Y-pts[i].X
		if sum < pts[minSum].X+pts[minSum].Y {
			minSum = i
		}
		if sum > pts[maxSum].X+pts[maxSum].Y {
			maxSum = i
		}
		if diff < pts[minDiff].Y-pts[minDiff].X {
			minDiff = i
		}
		if diff > pts[maxDiff].Y-pts[maxDiff].X {
			maxDiff = i
		}
	}
	return Quad{pts[minSum], pts[minDiff], pts[maxSum], pts[maxDiff]}
}
