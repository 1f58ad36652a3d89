// Package render draws segmented instance labels onto images for visual
// inspection of the post processing output.
package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-nucleiseg"
	"gocv.io/x/gocv"
)

// Overlay renders the instance labels as a transparent colour overlay on top
// of the source image.  The image must be a 3 channel Mat of the same
// dimensions as the label image
func Overlay(img *gocv.Mat, labels *nucleiseg.LabelMap, alpha float32) error {

	width := img.Cols()
	height := img.Rows()

	if width != labels.Width || height != labels.Height {
		return fmt.Errorf("image %dx%d does not match labels %dx%d",
			width, height, labels.Width, labels.Height)
	}

	if img.Channels() != 3 {
		return fmt.Errorf("expected 3 channel image, got %d", img.Channels())
	}

	// manipulating pixels through CGO accessors is too slow, copy the
	// bytes out, blend directly and copy back
	imgData := img.ToBytes()

	for j := 0; j < height; j++ {
		for k := 0; k < width; k++ {

			label := labels.Data[j*labels.Width+k]

			if label == 0 {
				continue
			}

			clr := InstanceColor(label)

			pixelPos := j*width*3 + k*3

			b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

			imgData[pixelPos+0] = uint8(float32(b)*(1-alpha) + float32(clr.B)*alpha)
			imgData[pixelPos+1] = uint8(float32(g)*(1-alpha) + float32(clr.G)*alpha)
			imgData[pixelPos+2] = uint8(float32(r)*(1-alpha) + float32(clr.R)*alpha)
		}
	}

	tmpImg, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)

	if err != nil {
		return fmt.Errorf("rebuilding image mat: %w", err)
	}

	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return nil
}

// DrawInstanceIDs paints each instance's label number at its centroid
func DrawInstanceIDs(img *gocv.Mat, labels *nucleiseg.LabelMap) {

	for _, label := range labels.Labels() {

		var sumX, sumY, count int

		for y := 0; y < labels.Height; y++ {
			for x := 0; x < labels.Width; x++ {
				if labels.At(x, y) == label {
					sumX += x
					sumY += y
					count++
				}
			}
		}

		if count == 0 {
			continue
		}

		pt := image.Pt(sumX/count, sumY/count)

		gocv.PutText(img, fmt.Sprintf("%d", label), pt,
			gocv.FontHersheyPlain, 0.8, White, 1)
	}
}
