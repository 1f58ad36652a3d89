package postprocess

import (
	"container/heap"

	"github.com/swdee/go-nucleiseg"
)

// floodItem is a single pixel queued for watershed flooding
type floodItem struct {
	// value is the surface height at the pixel, lower floods first
	value float64
	// seq is the insertion sequence number, equal heights flood in
	// first-in first-out order so results are deterministic
	seq int
	x   int
	y   int
}

// floodQueue is a min heap of flood items ordered by surface height then
// insertion order
type floodQueue []floodItem

func (q floodQueue) Len() int { return len(q) }

func (q floodQueue) Less(i, j int) bool {
	if q[i].value != q[j].value {
		return q[i].value < q[j].value
	}
	return q[i].seq < q[j].seq
}

func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *floodQueue) Push(x any) { *q = append(*q, x.(floodItem)) }

func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// watershed performs marker controlled watershed segmentation of the surface
// restricted to the mask.  Flooding starts from the marker pixels and grows
// each marker's basin outward in order of increasing surface height until
// basins meet.  Every masked pixel reachable from a marker receives that
// marker's label, unreachable masked pixels stay background
func watershed(surface *nucleiseg.FloatMap, markers *nucleiseg.LabelMap,
	mask *nucleiseg.BitMask) *nucleiseg.LabelMap {

	w := surface.Width
	h := surface.Height

	out := nucleiseg.NewLabelMap(w, h)

	queue := make(floodQueue, 0, w+h)
	heap.Init(&queue)

	seq := 0

	push := func(x, y int) {
		heap.Push(&queue, floodItem{
			value: surface.At(x, y),
			seq:   seq,
			x:     x,
			y:     y,
		})
		seq++
	}

	// seed the queue with all marker pixels
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m := markers.At(x, y); m > 0 && mask.At(x, y) {
				out.Set(x, y, m)
				push(x, y)
			}
		}
	}

	// 4 connected neighbourhood, matching the flood connectivity of the
	// reference watershed
	dx := []int{-1, 1, 0, 0}
	dy := []int{0, 0, -1, 1}

	for queue.Len() > 0 {

		item := heap.Pop(&queue).(floodItem)
		label := out.At(item.x, item.y)

		for d := 0; d < 4; d++ {

			nx := item.x + dx[d]
			ny := item.y + dy[d]

			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}

			if !mask.At(nx, ny) || out.At(nx, ny) != 0 {
				continue
			}

			out.Set(nx, ny, label)
			push(nx, ny)
		}
	}

	return out
}
