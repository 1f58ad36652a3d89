package nucleiseg

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/tiff"
)

// LoadFloatMapTIFF reads a TIFF file as a grayscale probability map without
// requiring an OpenCV runtime.  Microscopy probability maps are commonly
// exported as 16 bit TIFF, integer samples are normalised into [0,1]
func LoadFloatMapTIFF(file string) (*FloatMap, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	img, err := tiff.Decode(f)

	if err != nil {
		return nil, fmt.Errorf("error decoding tiff: %w", err)
	}

	return floatMapFromImage(img), nil
}

// floatMapFromImage converts any decoded image to a FloatMap using the 16 bit
// luminance of each pixel
func floatMapFromImage(img image.Image) *FloatMap {

	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	fm := NewFloatMap(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Gray16 images return the sample in all three channels
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := (float64(r) + float64(g) + float64(b)) / 3.0
			fm.Data[y*w+x] = lum / 65535.0
		}
	}

	return fm
}
