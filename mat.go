package nucleiseg

import (
	"fmt"

	"gocv.io/x/gocv"
)

// FloatMapFromMat converts a single channel gocv Mat into a FloatMap.
// 8 bit and 16 bit integer Mats are normalised into the [0,1] range so a
// probability threshold applies uniformly regardless of the on-disk bit
// depth, float Mats are taken as is
func FloatMapFromMat(m gocv.Mat) (*FloatMap, error) {

	if m.Empty() {
		return nil, fmt.Errorf("empty mat")
	}

	if m.Channels() != 1 {
		return nil, fmt.Errorf("expected single channel mat, got %d channels",
			m.Channels())
	}

	// integer depths are normalised into [0,1] so a probability threshold
	// applies uniformly, float depths are taken as is
	var scale float64

	switch m.Type() {
	case gocv.MatTypeCV8U:
		scale = 1.0 / 255.0
	case gocv.MatTypeCV16U:
		scale = 1.0 / 65535.0
	case gocv.MatTypeCV32F, gocv.MatTypeCV64F:
		scale = 1.0
	default:
		return nil, fmt.Errorf("unsupported mat type %d", m.Type())
	}

	conv := gocv.NewMat()
	defer conv.Close()

	m.ConvertTo(&conv, gocv.MatTypeCV64F)

	rows := m.Rows()
	cols := m.Cols()

	fm := NewFloatMap(cols, rows)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			fm.Data[y*cols+x] = conv.GetDoubleAt(y, x) * scale
		}
	}

	return fm, nil
}

// LoadFloatMap reads an image file from disk as a grayscale probability map
func LoadFloatMap(file string) (*FloatMap, error) {

	img := gocv.IMRead(file, gocv.IMReadGrayScale)

	if img.Empty() {
		return nil, fmt.Errorf("error reading image from: %s", file)
	}

	defer img.Close()

	return FloatMapFromMat(img)
}

// ToMat converts the mask to an 8 bit single channel Mat with foreground
// pixels set to 255, the representation OpenCV morphology and rendering
// functions expect
func (m *BitMask) ToMat() gocv.Mat {

	data := make([]byte, len(m.Data))

	for i, v := range m.Data {
		if v {
			data[i] = 255
		}
	}

	mat, _ := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, data)

	return mat
}
