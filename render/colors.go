package render

import "image/color"

var (
	// instanceColors is the palette cycled through when painting
	// instance masks, chosen for contrast between neighbouring labels
	instanceColors = []color.RGBA{
		{R: 230, G: 57, B: 70, A: 255},   // #E63946
		{R: 244, G: 162, B: 97, A: 255},  // #F4A261
		{R: 233, G: 196, B: 106, A: 255}, // #E9C46A
		{R: 138, G: 201, B: 38, A: 255},  // #8AC926
		{R: 42, G: 157, B: 143, A: 255},  // #2A9D8F
		{R: 82, G: 183, B: 136, A: 255},  // #52B788
		{R: 69, G: 123, B: 157, A: 255},  // #457B9D
		{R: 0, G: 180, B: 216, A: 255},   // #00B4D8
		{R: 106, G: 76, B: 147, A: 255},  // #6A4C93
		{R: 199, G: 125, B: 255, A: 255}, // #C77DFF
		{R: 255, G: 112, B: 166, A: 255}, // #FF70A6
		{R: 255, G: 151, B: 112, A: 255}, // #FF9770
	}

	// White colour for text labels
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// InstanceColor returns the palette colour used for the given label
func InstanceColor(label int) color.RGBA {
	if label <= 0 {
		return color.RGBA{}
	}
	return instanceColors[(label-1)%len(instanceColors)]
}
