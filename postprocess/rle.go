package postprocess

import (
	"fmt"

	"github.com/swdee/go-nucleiseg"
)

// Run is a single run of foreground pixels in a column major flattened mask.
// Start is 1 based, the competition submission format counts pixels from 1
type Run struct {
	Start  int
	Length int
}

// RLE is the run length encoding of a binary mask, runs are non overlapping
// and sorted by ascending start offset
type RLE []Run

// EncodeRLE encodes a binary mask into run length pairs.  The mask is
// flattened in column major order, top to bottom then left to right, and
// each maximal run of foreground pixels becomes one (start, length) pair.
// An all background mask encodes to an empty RLE
func EncodeRLE(mask *nucleiseg.BitMask) RLE {

	var rle RLE

	h := mask.Height
	prev := -2

	for x := 0; x < mask.Width; x++ {
		for y := 0; y < h; y++ {

			if !mask.At(x, y) {
				continue
			}

			offset := x*h + y

			if offset > prev+1 {
				rle = append(rle, Run{Start: offset + 1})
			}

			rle[len(rle)-1].Length++
			prev = offset
		}
	}

	return rle
}

// Ints flattens the encoding into the alternating start,length integer list
// used by competition style submission files
func (r RLE) Ints() []int {

	out := make([]int, 0, len(r)*2)

	for _, run := range r {
		out = append(out, run.Start, run.Length)
	}

	return out
}

// Decode reconstructs the binary mask of the given dimensions.  The encoding
// is lossless so Decode(EncodeRLE(m)) returns exactly m.  Runs that fall
// outside the mask, overlap or are out of order are rejected
func (r RLE) Decode(width, height int) (*nucleiseg.BitMask, error) {

	mask := nucleiseg.NewBitMask(width, height)

	size := width * height
	prevEnd := 0

	for i, run := range r {

		if run.Start < 1 || run.Length < 1 {
			return nil, fmt.Errorf("invalid run %d: start=%d length=%d",
				i, run.Start, run.Length)
		}

		if run.Start <= prevEnd {
			return nil, fmt.Errorf("run %d overlaps or is out of order", i)
		}

		end := run.Start + run.Length - 1

		if end > size {
			return nil, fmt.Errorf("run %d exceeds mask size %d", i, size)
		}

		for offset := run.Start - 1; offset < end; offset++ {
			x := offset / height
			y := offset % height
			mask.Set(x, y, true)
		}

		prevEnd = end
	}

	return mask, nil
}
