package nucleiseg

import (
	"math"
)

// Connectivity selects the pixel neighbourhood used by connected component
// labeling
type Connectivity int

const (
	// Conn4 connects pixels sharing an edge
	Conn4 Connectivity = 4
	// Conn8 connects pixels sharing an edge or a corner
	Conn8 Connectivity = 8
)

// LabelComponents performs connected component labeling of a binary mask.
// Foreground pixels belonging to the same component receive the same positive
// label, background pixels stay 0.  Labels are assigned contiguously from 1
// in raster scan order of each component's first pixel, so the result is
// deterministic for a fixed mask
func LabelComponents(mask *BitMask, conn Connectivity) *LabelMap {

	w := mask.Width
	h := mask.Height

	labels := NewLabelMap(w, h)

	// provisional labels with union-find merging, index 0 unused
	parent := []int{0}

	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}

	// first pass assigns provisional labels and records equivalences
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {

			if !mask.Data[y*w+x] {
				continue
			}

			// previously scanned neighbours
			best := 0

			consider := func(nx, ny int) {
				if nx < 0 || nx >= w || ny < 0 {
					return
				}
				n := labels.Data[ny*w+nx]
				if n == 0 {
					return
				}
				if best == 0 {
					best = n
				} else {
					union(best, n)
				}
			}

			consider(x-1, y)
			consider(x, y-1)

			if conn == Conn8 {
				consider(x-1, y-1)
				consider(x+1, y-1)
			}

			if best == 0 {
				best = len(parent)
				parent = append(parent, best)
			}

			labels.Data[y*w+x] = best
		}
	}

	// second pass resolves equivalences and renumbers components
	// contiguously in scan order
	remap := make([]int, len(parent))
	next := 0

	for i := range labels.Data {

		if labels.Data[i] == 0 {
			continue
		}

		root := find(labels.Data[i])

		if remap[root] == 0 {
			next++
			remap[root] = next
		}

		labels.Data[i] = remap[root]
	}

	return labels
}

// DistanceTransform computes the exact Euclidean distance transform of a
// binary mask.  Each foreground pixel receives its distance to the nearest
// background pixel, background pixels receive 0.  Implemented as the two pass
// separable squared distance transform of Felzenszwalb and Huttenlocher
func DistanceTransform(mask *BitMask) *FloatMap {

	w := mask.Width
	h := mask.Height

	dist := NewFloatMap(w, h)

	for i, fg := range mask.Data {
		if fg {
			// large finite stand-in for infinity, keeps the parabola
			// intersections below finite
			dist.Data[i] = edtInf
		}
	}

	// transform each column
	col := make([]float64, h)

	for x := 0; x < w; x++ {

		for y := 0; y < h; y++ {
			col[y] = dist.Data[y*w+x]
		}

		dt1d(col)

		for y := 0; y < h; y++ {
			dist.Data[y*w+x] = col[y]
		}
	}

	// transform each row
	row := make([]float64, w)

	for y := 0; y < h; y++ {

		copy(row, dist.Data[y*w:(y+1)*w])
		dt1d(row)

		for x := 0; x < w; x++ {
			dist.Data[y*w+x] = math.Sqrt(row[x])
		}
	}

	return dist
}

// edtInf is the squared distance assigned to pixels with no background in
// reach before the transform runs
const edtInf = 1e20

// dt1d computes the 1D squared distance transform of the sampled function f
// in place using the lower envelope of parabolas
func dt1d(f []float64) {

	n := len(f)

	if n == 0 {
		return
	}

	d := make([]float64, n)
	// v holds the parabola vertices, z the boundaries between them
	v := make([]int, n)
	z := make([]float64, n+1)

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	intersect := func(p, q int) float64 {
		return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) /
			(2*float64(q) - 2*float64(p))
	}

	for q := 1; q < n; q++ {

		s := intersect(v[k], q)

		for s <= z[k] {
			k--
			s = intersect(v[k], q)
		}

		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0

	for q := 0; q < n; q++ {

		for z[k+1] < float64(q) {
			k++
		}

		p := v[k]
		d[q] = float64((q-p)*(q-p)) + f[p]
	}

	copy(f, d)
}
