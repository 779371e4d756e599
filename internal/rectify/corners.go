package rectify

import (
	"image"

	"gocv.io/x/gocv"
)

// seedFraction scales the tolerance used to pick candidate vertices before
// the vertex count is minimized.
const seedFraction = 0.02

// ApproximateCorners simplifies a closed contour to the polygon with the
// fewest vertices whose sides stay within fraction of the contour's arc
// length from every contour point, and requires that polygon to have exactly
// four vertices. The corners are returned in contour order, not canonical order.
func ApproximateCorners(contour []image.Point, fraction float64) ([4]Point, error) {
	var corners [4]Point
	poly := simplifyClosed(contour, fraction)
	if len(poly) != 4 {
		return corners, &CornerCountError{Count: len(poly)}
	}
	for i, p := range poly {
		corners[i] = pointOf(p)
	}
	return corners, nil
}

func simplifyClosed(contour []image.Point, fraction float64) []image.Point {
	if len(contour) < 3 {
		return append([]image.Point(nil), contour...)
	}

	curve := gocv.NewPointVectorFromPoints(contour)
	eps := fraction * gocv.ArcLength(curve, true)
	curve.Close()

	seeds := douglasPeuckerClosed(contour, eps*seedFraction)
	cycle := fewestVertices(contour, seeds, eps)

	out := make([]image.Point, len(cycle))
	for i, idx := range cycle {
		out[i] = contour[idx]
	}
	return out
}

// douglasPeuckerClosed returns the indices kept by a Douglas-Peucker pass over
// the closed curve pts, in contour order. The curve is split at index 0 and the
// point farthest from it.
func douglasPeuckerClosed(pts []image.Point, eps float64) []int {
	far, best := 0, -1.0
	for i := 1; i < len(pts); i++ {
		if d := squaredDistance(pts[0], pts[i]); d > best {
			far, best = i, d
		}
	}
	if best <= eps*eps {
		return []int{0}
	}

	keep := []int{0}
	keep = append(keep, douglasPeucker(pts, 0, far, eps)...)
	keep = append(keep, far)
	keep = append(keep, douglasPeucker(pts, far, len(pts), eps)...)
	return keep
}

// douglasPeucker returns the indices strictly between i and j that must be
// kept so every point in between lies within eps of the simplified chain.
// j == len(pts) stands for index 0, closing the curve.
func douglasPeucker(pts []image.Point, i, j int, eps float64) []int {
	if j-i < 2 {
		return nil
	}
	a, b := pts[i], pts[j%len(pts)]
	idx, best := -1, -1.0
	for k := i + 1; k < j; k++ {
		if d := segmentDistance(pts[k], a, b); d > best {
			idx, best = k, d
		}
	}
	if best <= eps {
		return nil
	}
	out := douglasPeucker(pts, i, idx, eps)
	out = append(out, idx)
	return append(out, douglasPeucker(pts, idx, j, eps)...)
}

// fewestVertices picks the shortest cycle through seeds, visited in contour
// order, whose every side lies within eps of the contour points it replaces.
// Among equally short cycles the one enclosing the largest area wins, then
// the one starting at the earliest seed.
func fewestVertices(pts []image.Point, seeds []int, eps float64) []int {
	m := len(seeds)
	if m < 3 {
		return seeds
	}

	// valid[a][s]: seed a may connect directly to seed (a+s)%m.
	valid := make([][]bool, m)
	for a := 0; a < m; a++ {
		valid[a] = make([]bool, m)
		for s := 1; s < m; s++ {
			valid[a][s] = spanWithin(pts, seeds[a], seeds[(a+s)%m], eps)
		}
	}

	var best []int
	bestArea := -1.0
	for start := 0; start < m; start++ {
		cycle := shortestCycle(valid, start)
		if cycle == nil {
			continue
		}
		if best != nil && len(cycle) > len(best) {
			continue
		}
		verts := make([]image.Point, len(cycle))
		for i, s := range cycle {
			verts[i] = pts[seeds[s]]
		}
		area := polygonArea(verts)
		if best == nil || len(cycle) < len(best) || area > bestArea {
			best, bestArea = cycle, area
		}
	}
	if best == nil {
		return seeds
	}

	out := make([]int, len(best))
	for i, s := range best {
		out[i] = seeds[s]
	}
	return out
}

// shortestCycle walks forward from seed start with breadth-first search over
// offsets 0..m and returns the seeds of the first shortest way back to start.
func shortestCycle(valid [][]bool, start int) []int {
	m := len(valid)
	dist := make([]int, m+1)
	prev := make([]int, m+1)
	for i := range dist {
		dist[i] = -1
	}
	dist[0] = 0
	queue := []int{0}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for s := 1; u+s <= m && s < m; s++ {
			v := u + s
			if dist[v] >= 0 || !valid[(start+u)%m][s] {
				continue
			}
			dist[v] = dist[u] + 1
			prev[v] = u
			queue = append(queue, v)
		}
	}
	if dist[m] < 0 {
		return nil
	}

	cycle := make([]int, 0, dist[m])
	for v := prev[m]; ; v = prev[v] {
		cycle = append(cycle, (start+v)%m)
		if v == 0 {
			break
		}
	}
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}
	return cycle
}

// spanWithin reports whether every contour point strictly between from and
// to, walking forward and wrapping, lies within eps of the segment joining them.
func spanWithin(pts []image.Point, from, to int, eps float64) bool {
	a, b := pts[from], pts[to]
	for k := (from + 1) % len(pts); k != to; k = (k + 1) % len(pts) {
		if segmentDistance(pts[k], a, b) > eps {
			return false
		}
	}
	return true
}
