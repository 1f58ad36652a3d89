package postprocess

import (
	"strings"
	"testing"

	"github.com/swdee/go-nucleiseg"
	"github.com/swdee/go-nucleiseg/config"
)

// testProbMap builds a probability map with a 10x10 blob (area 100) and a
// separate 3x3 blob (area 9)
func testProbMap() *nucleiseg.FloatMap {

	prob := nucleiseg.NewFloatMap(32, 32)

	for y := 2; y < 12; y++ {
		for x := 2; x < 12; x++ {
			prob.Set(x, y, 0.9)
		}
	}

	for y := 20; y < 23; y++ {
		for x := 20; x < 23; x++ {
			prob.Set(x, y, 0.9)
		}
	}

	return prob
}

// collect drains the instance sequence into a slice
func collect(t *testing.T, p *Processor, prob *nucleiseg.FloatMap) []RLE {

	t.Helper()

	seq, err := p.ExtractInstances(prob)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out []RLE

	for rle := range seq {
		out = append(out, rle)
	}

	return out
}

// encodedArea sums the run lengths of an encoding
func encodedArea(rle RLE) int {

	area := 0

	for _, run := range rle {
		area += run.Length
	}

	return area
}

func TestExtractInstances(t *testing.T) {

	proc := NewProcessor(config.Params{Threshold: 0.5})

	instances := collect(t, proc, testProbMap())

	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}

	if got := encodedArea(instances[0]) + encodedArea(instances[1]); got != 109 {
		t.Errorf("expected total encoded area 109, got %d", got)
	}
}

func TestExtractInstancesRemovesSmallObjects(t *testing.T) {

	proc := NewProcessor(config.Params{
		Threshold:     0.5,
		RemoveObjects: true,
		MinObjectSize: 50,
	})

	instances := collect(t, proc, testProbMap())

	if len(instances) != 1 {
		t.Fatalf("expected small component dropped, got %d instances",
			len(instances))
	}

	if got := encodedArea(instances[0]); got != 100 {
		t.Errorf("expected surviving area 100, got %d", got)
	}
}

func TestExtractInstancesRestartable(t *testing.T) {

	proc := NewProcessor(config.Params{Threshold: 0.5})

	seq, err := proc.ExtractInstances(testProbMap())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := 0
	for range seq {
		first++
	}

	second := 0
	for range seq {
		second++
	}

	if first != second {
		t.Errorf("sequence not restartable: first pass %d, second pass %d",
			first, second)
	}
}

func TestExtractInstancesEmptyMap(t *testing.T) {

	proc := NewProcessor(config.Params{
		Threshold:    0.5,
		Segmentation: true,
		SegScale:     1.0,
		SegRatio:     1.0,
	})

	// nothing clears the threshold so no instance reaches the splitter
	instances := collect(t, proc, nucleiseg.NewFloatMap(16, 16))

	if len(instances) != 0 {
		t.Errorf("expected no instances, got %d", len(instances))
	}
}

func TestExtractInstancesWithSegmentation(t *testing.T) {

	// two overlapping disks merged into one component must come out as
	// two encoded instances when segmentation is enabled
	prob := nucleiseg.NewFloatMap(60, 31)

	paint := func(cx, cy, radius int) {
		for y := cy - radius; y <= cy+radius; y++ {
			for x := cx - radius; x <= cx+radius; x++ {
				dx, dy := x-cx, y-cy
				if dx*dx+dy*dy <= radius*radius {
					prob.Set(x, y, 0.95)
				}
			}
		}
	}

	paint(20, 15, 10)
	paint(38, 15, 10)

	proc := NewProcessor(config.Params{
		Threshold:    0.5,
		Segmentation: true,
		SegScale:     0.5,
		SegRatio:     1.0,
	})
	proc.UseSplitter(NewSplitterWithSeed(42))

	instances := collect(t, proc, prob)

	if len(instances) != 2 {
		t.Errorf("expected 2 instances after watershed, got %d", len(instances))
	}
}

func TestWriteSubmission(t *testing.T) {

	proc := NewProcessor(config.Params{Threshold: 0.5})

	prob := nucleiseg.NewFloatMap(4, 4)
	prob.Set(0, 0, 0.9)
	prob.Set(0, 1, 0.9)
	prob.Set(3, 3, 0.9)

	seq, err := proc.ExtractInstances(prob)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sb strings.Builder

	if err := WriteSubmission(&sb, "img-001", seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "img-001,1 2\nimg-001,16 1\n"

	if sb.String() != want {
		t.Errorf("expected %q, got %q", want, sb.String())
	}
}

func TestRemoveSmallObjects(t *testing.T) {

	mask := nucleiseg.NewBitMask(10, 10)

	// area 4 block and an area 2 block
	mask.Set(0, 0, true)
	mask.Set(1, 0, true)
	mask.Set(0, 1, true)
	mask.Set(1, 1, true)

	mask.Set(8, 8, true)
	mask.Set(9, 8, true)

	out := RemoveSmallObjects(mask, 3)

	if got := out.Area(); got != 4 {
		t.Errorf("expected area 4 after removal, got %d", got)
	}

	if out.At(8, 8) || out.At(9, 8) {
		t.Errorf("small component survived removal")
	}
}
