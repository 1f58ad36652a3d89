package nucleiseg

import (
	"encoding/binary"
	"fmt"

	"github.com/x448/float16"
)

var f16LookupTable [65536]float64

func init() {
	// precompute float16 lookup table for faster conversion to float64
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = float64(f16.Float32())
	}
}

// FloatMapFromFloat16 converts a raw little endian half precision output
// buffer, as emitted by models running in float16 mode, into a FloatMap of
// the given dimensions
func FloatMapFromFloat16(buf []byte, width, height int) (*FloatMap, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	if len(buf) != width*height*2 {
		return nil, fmt.Errorf("buffer length %d does not match %dx%d float16 map",
			len(buf), width, height)
	}

	fm := NewFloatMap(width, height)

	for i := range fm.Data {
		bits := binary.LittleEndian.Uint16(buf[i*2:])
		fm.Data[i] = f16LookupTable[bits]
	}

	return fm, nil
}
