package postprocess

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/swdee/go-nucleiseg"
)

// jitterAmplitude is the magnitude of the uniform noise added to the
// distance field before peak detection.  Without it a flat plateau of equal
// distances yields one tied marker candidate per pixel instead of a single
// marker
const jitterAmplitude = 0.1

// Splitter separates touching object instances using a marker controlled
// watershed driven by the distance transform of the foreground mask
type Splitter struct {
	rnd *rand.Rand
}

// NewSplitter returns a Splitter seeded from the clock.  Each split draws
// fresh jitter so repeated calls on the same mask may differ at plateau
// pixels
func NewSplitter() *Splitter {
	return NewSplitterWithSeed(time.Now().UnixNano())
}

// NewSplitterWithSeed returns a Splitter with a deterministic jitter source,
// used where reproducible output is required
func NewSplitterWithSeed(seed int64) *Splitter {
	return &Splitter{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// SplitBySize re-segments a label image by watershed using a marker
// separation distance derived from the observed object sizes.  The input
// labels are collapsed to a combined foreground mask, so components that
// already touch are re-derived from scratch and may split differently.
//
// The marker separation radius is the characteristic object size of the
// provisional components scaled by sizeScale, with the size estimated from
// the smallest sizeRatio fraction of components.  An all background input is
// a precondition violation
func (s *Splitter) SplitBySize(labels *nucleiseg.LabelMap, sizeScale,
	sizeRatio float64) (*nucleiseg.LabelMap, error) {

	mask := labels.Mask()

	// provisional components of the combined mask drive the size estimate
	provisional := nucleiseg.LabelComponents(mask, nucleiseg.Conn8)

	size, err := EstimateObjectSize(provisional, sizeRatio)

	if err != nil {
		return nil, fmt.Errorf("estimating object size: %w", err)
	}

	radius := int(size * sizeScale)

	// euclidean distance to the nearest background pixel, jittered to
	// break ties between plateau pixels
	dist := nucleiseg.DistanceTransform(mask)

	for i, fg := range mask.Data {
		if fg {
			dist.Data[i] += (s.rnd.Float64()*2 - 1) * jitterAmplitude
		}
	}

	peaks := localMaxima(dist, provisional, radius)

	// each peak cluster becomes one marker
	markers := nucleiseg.LabelComponents(peaks, nucleiseg.Conn4)

	// flood the negated distance field so basins grow outward from the
	// object centres
	neg := nucleiseg.NewFloatMap(dist.Width, dist.Height)

	for i, v := range dist.Data {
		neg.Data[i] = -v
	}

	return watershed(neg, markers, mask), nil
}

// SplitByEdge segments a body probability map using edge aware seeding.  The
// seeds are taken where the body probability minus edgeWeight times the edge
// probability still clears the threshold, which stops seed regions growing
// across predicted object boundaries, then a watershed over the negated
// distance field of the body mask assigns every body pixel to a seed.
//
// Used when the model emits a separate edge probability channel, as an
// alternative or complement to size based splitting
func (s *Splitter) SplitByEdge(bodyProb, edgeProb *nucleiseg.FloatMap,
	threshold, edgeWeight float64) (*nucleiseg.LabelMap, error) {

	if err := nucleiseg.CheckShapes(bodyProb, edgeProb); err != nil {
		return nil, fmt.Errorf("body and edge maps: %w", err)
	}

	bodies := bodyProb.Threshold(threshold)

	// suppress seeds near predicted edges
	seeds := nucleiseg.NewBitMask(bodyProb.Width, bodyProb.Height)

	for i := range bodyProb.Data {
		if bodyProb.Data[i]-edgeWeight*edgeProb.Data[i] > threshold {
			seeds.Data[i] = true
		}
	}

	markers := nucleiseg.LabelComponents(seeds, nucleiseg.Conn8)

	dist := nucleiseg.DistanceTransform(bodies)

	neg := nucleiseg.NewFloatMap(dist.Width, dist.Height)

	for i, v := range dist.Data {
		neg.Data[i] = -v
	}

	return watershed(neg, markers, bodies), nil
}
