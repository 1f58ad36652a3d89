package nucleiseg

import (
	"sort"
)

// BitMask is a 2D boolean mask.  True marks a foreground pixel
type BitMask struct {
	// Width is the number of columns
	Width int
	// Height is the number of rows
	Height int
	// Data is the pixel values in row major order, length Width*Height
	Data []bool
}

// NewBitMask returns an all false BitMask of the given dimensions
func NewBitMask(width, height int) *BitMask {
	return &BitMask{
		Width:  width,
		Height: height,
		Data:   make([]bool, width*height),
	}
}

// At returns the value at column x, row y
func (m *BitMask) At(x, y int) bool {
	return m.Data[y*m.Width+x]
}

// Set writes the value at column x, row y
func (m *BitMask) Set(x, y int, val bool) {
	m.Data[y*m.Width+x] = val
}

// Area returns the number of foreground pixels in the mask
func (m *BitMask) Area() int {

	area := 0

	for _, v := range m.Data {
		if v {
			area++
		}
	}

	return area
}

// LabelMap is a 2D array of instance labels.  Label 0 is reserved for the
// background, each positive label identifies one segmented instance.  After
// filtering operations the positive labels are not guaranteed to be
// contiguous, callers must iterate Labels() rather than assume a 1..MaxLabel
// range
type LabelMap struct {
	// Width is the number of columns
	Width int
	// Height is the number of rows
	Height int
	// Data is the pixel labels in row major order, length Width*Height
	Data []int
}

// NewLabelMap returns an all background LabelMap of the given dimensions
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{
		Width:  width,
		Height: height,
		Data:   make([]int, width*height),
	}
}

// At returns the label at column x, row y
func (l *LabelMap) At(x, y int) int {
	return l.Data[y*l.Width+x]
}

// Set writes the label at column x, row y
func (l *LabelMap) Set(x, y int, label int) {
	l.Data[y*l.Width+x] = label
}

// MaxLabel returns the highest label value present in the image, 0 when the
// image is all background
func (l *LabelMap) MaxLabel() int {

	max := 0

	for _, v := range l.Data {
		if v > max {
			max = v
		}
	}

	return max
}

// Labels returns the sorted list of distinct positive labels present in the
// image.  Labels removed by filtering leave gaps so this is the only safe
// way to enumerate instances
func (l *LabelMap) Labels() []int {

	seen := make(map[int]struct{})

	for _, v := range l.Data {
		if v > 0 {
			seen[v] = struct{}{}
		}
	}

	labels := make([]int, 0, len(seen))

	for v := range seen {
		labels = append(labels, v)
	}

	sort.Ints(labels)

	return labels
}

// Mask returns the binary foreground view of the image, true wherever the
// label is positive
func (l *LabelMap) Mask() *BitMask {

	mask := NewBitMask(l.Width, l.Height)

	for i, v := range l.Data {
		if v > 0 {
			mask.Data[i] = true
		}
	}

	return mask
}

// MaskOf returns the binary mask of the single instance carrying the given
// label
func (l *LabelMap) MaskOf(label int) *BitMask {

	mask := NewBitMask(l.Width, l.Height)

	for i, v := range l.Data {
		if v == label {
			mask.Data[i] = true
		}
	}

	return mask
}

// Area returns the pixel area of the instance carrying the given label
func (l *LabelMap) Area(label int) int {

	area := 0

	for _, v := range l.Data {
		if v == label {
			area++
		}
	}

	return area
}
