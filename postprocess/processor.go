package postprocess

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/swdee/go-nucleiseg"
	"github.com/swdee/go-nucleiseg/config"
)

// Processor converts a probability map into run length encoded object
// instances according to the configured post processing parameters
type Processor struct {
	// Params are the post processing configuration parameters
	Params config.Params

	splitter *Splitter
}

// NewProcessor returns a Processor for the given parameter set
func NewProcessor(params config.Params) *Processor {
	return &Processor{
		Params:   params,
		splitter: NewSplitter(),
	}
}

// UseSplitter replaces the watershed splitter, letting callers inject a
// seeded splitter for reproducible output
func (p *Processor) UseSplitter(s *Splitter) {
	p.splitter = s
}

// Label runs the thresholding, filtering and optional watershed stages and
// returns the resulting label image
func (p *Processor) Label(prob *nucleiseg.FloatMap) (*nucleiseg.LabelMap, error) {

	mask := prob.Threshold(p.Params.Threshold)

	if p.Params.RemoveObjects {
		mask = RemoveSmallObjects(mask, p.Params.MinObjectSize)
	}

	labels := nucleiseg.LabelComponents(mask, nucleiseg.Conn8)

	if p.Params.Segmentation && labels.MaxLabel() > 0 {

		split, err := p.splitter.SplitBySize(labels, p.Params.SegScale,
			p.Params.SegRatio)

		if err != nil {
			return nil, fmt.Errorf("watershed split: %w", err)
		}

		labels = split
	}

	return labels, nil
}

// ExtractInstances yields the run length encoding of every instance found in
// the probability map.  The sequence is finite and lazily evaluated, ranging
// over it a second time re-runs the per instance encoding.  Pipeline errors
// surface through the returned error before any instance is yielded
func (p *Processor) ExtractInstances(prob *nucleiseg.FloatMap) (iter.Seq[RLE], error) {

	labels, err := p.Label(prob)

	if err != nil {
		return nil, err
	}

	return func(yield func(RLE) bool) {
		// iterate the labels actually present, filtering may have left
		// gaps in the numbering
		for _, label := range labels.Labels() {
			if !yield(EncodeRLE(labels.MaskOf(label))) {
				return
			}
		}
	}, nil
}

// RemoveSmallObjects returns a copy of the mask with every 8 connected
// component of area smaller than minSize removed
func RemoveSmallObjects(mask *nucleiseg.BitMask, minSize int) *nucleiseg.BitMask {

	labels := nucleiseg.LabelComponents(mask, nucleiseg.Conn8)

	// area per component
	areas := make([]int, labels.MaxLabel()+1)

	for _, v := range labels.Data {
		if v > 0 {
			areas[v]++
		}
	}

	out := nucleiseg.NewBitMask(mask.Width, mask.Height)

	for i, v := range labels.Data {
		if v > 0 && areas[v] >= minSize {
			out.Data[i] = true
		}
	}

	return out
}

// WriteSubmission writes one competition format CSV row per instance, each
// row holding the image identifier and the space separated alternating
// start,length encoding of the instance mask
func WriteSubmission(w io.Writer, imageID string, instances iter.Seq[RLE]) error {

	for rle := range instances {

		ints := rle.Ints()
		parts := make([]string, len(ints))

		for i, v := range ints {
			parts[i] = strconv.Itoa(v)
		}

		line := imageID + "," + strings.Join(parts, " ") + "\n"

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("writing submission row: %w", err)
		}
	}

	return nil
}
