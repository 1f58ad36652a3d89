package nucleiseg

import (
	"fmt"
)

// FloatMap is a 2D array of real values, typically the per pixel probability
// output of a segmentation model.  Values are stored in a flat slice in
// row major order.  The value range is unbounded, a threshold gives it
// meaning by converting it to a BitMask.
type FloatMap struct {
	// Width is the number of columns
	Width int
	// Height is the number of rows
	Height int
	// Data is the pixel values in row major order, length Width*Height
	Data []float64
}

// NewFloatMap returns a zero filled FloatMap of the given dimensions
func NewFloatMap(width, height int) *FloatMap {
	return &FloatMap{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// FloatMapFromSlice wraps an existing row major slice of pixel values as a
// FloatMap.  The slice is used directly and not copied
func FloatMapFromSlice(data []float64, width, height int) (*FloatMap, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	if len(data) != width*height {
		return nil, fmt.Errorf("data length %d does not match dimensions %dx%d",
			len(data), width, height)
	}

	return &FloatMap{
		Width:  width,
		Height: height,
		Data:   data,
	}, nil
}

// At returns the value at column x, row y
func (f *FloatMap) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

// Set writes the value at column x, row y
func (f *FloatMap) Set(x, y int, val float64) {
	f.Data[y*f.Width+x] = val
}

// SameShape reports whether the other map has identical dimensions
func (f *FloatMap) SameShape(other *FloatMap) bool {
	return f.Width == other.Width && f.Height == other.Height
}

// Threshold converts the map to a binary foreground mask where a pixel is
// foreground when its value is strictly greater than t
func (f *FloatMap) Threshold(t float64) *BitMask {

	mask := NewBitMask(f.Width, f.Height)

	for i, val := range f.Data {
		if val > t {
			mask.Data[i] = true
		}
	}

	return mask
}

// CheckShapes returns an error when the two maps differ in dimension.  Used
// by operations that combine two probability maps, such as a body and edge
// pair or a prediction and ground truth pair
func CheckShapes(a, b *FloatMap) error {

	if !a.SameShape(b) {
		return fmt.Errorf("shape mismatch: %dx%d vs %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}

	return nil
}
