package postprocess

import (
	"github.com/swdee/go-nucleiseg"
)

// localMaxima detects the local maxima of a height field that will seed the
// watershed markers.  A foreground pixel is a maximum when no pixel of the
// same labeled region within a square window of half width minDist carries a
// strictly greater value.  Regions are compared independently so a tall blob
// never suppresses the peak of a nearby short one.
//
// Flat plateaus produce one candidate per tied pixel, callers break ties by
// jittering the field before peak detection
func localMaxima(height *nucleiseg.FloatMap, regions *nucleiseg.LabelMap,
	minDist int) *nucleiseg.BitMask {

	if minDist < 1 {
		minDist = 1
	}

	w := height.Width
	h := height.Height

	peaks := nucleiseg.NewBitMask(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {

			region := regions.At(x, y)

			if region == 0 {
				continue
			}

			val := height.At(x, y)
			isPeak := true

			// scan the separation window for a taller pixel in the
			// same region
			for ny := y - minDist; ny <= y+minDist && isPeak; ny++ {

				if ny < 0 || ny >= h {
					continue
				}

				for nx := x - minDist; nx <= x+minDist; nx++ {

					if nx < 0 || nx >= w {
						continue
					}

					if regions.At(nx, ny) != region {
						continue
					}

					if height.At(nx, ny) > val {
						isPeak = false
						break
					}
				}
			}

			if isPeak {
				peaks.Set(x, y, true)
			}
		}
	}

	return peaks
}
