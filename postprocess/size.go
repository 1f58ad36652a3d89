package postprocess

import (
	"fmt"
	"math"
	"sort"

	"github.com/swdee/go-nucleiseg"
	"gonum.org/v1/gonum/stat"
)

// EstimateObjectSize computes a characteristic linear size of the objects in
// a label image.  The pixel areas of all instances are sorted ascending and
// the smallest max(1, floor(n*ratio)) areas are averaged, the square root of
// that average is returned.  Restricting the average to the smallest objects
// avoids bias from blobs that are already merged clumps of several objects.
//
// Calling this on an image with no instances is a precondition violation and
// returns an error
func EstimateObjectSize(labels *nucleiseg.LabelMap, ratio float64) (float64, error) {

	if ratio <= 0 || ratio > 1 {
		return 0, fmt.Errorf("ratio must be in (0,1], got %f", ratio)
	}

	// count pixel area per instance in a single pass
	counts := make(map[int]int)

	for _, v := range labels.Data {
		if v > 0 {
			counts[v]++
		}
	}

	if len(counts) == 0 {
		return 0, fmt.Errorf("empty label image")
	}

	areas := make([]float64, 0, len(counts))

	for _, a := range counts {
		areas = append(areas, float64(a))
	}

	sort.Float64s(areas)

	n := int(float64(len(areas)) * ratio)

	if n < 1 {
		n = 1
	}

	return math.Sqrt(stat.Mean(areas[:n], nil)), nil
}
