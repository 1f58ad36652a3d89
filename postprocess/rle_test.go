package postprocess

import (
	"math/rand"
	"testing"

	"github.com/swdee/go-nucleiseg"
)

func TestEncodeRLEColumnMajor(t *testing.T) {

	// column major flatten with 1 based offsets:
	//   col 0 -> offsets 1,2   col 1 -> 3,4   col 2 -> 5,6
	mask := nucleiseg.NewBitMask(3, 2)
	mask.Set(0, 0, true)
	mask.Set(0, 1, true)
	mask.Set(1, 1, true)
	mask.Set(2, 0, true)

	rle := EncodeRLE(mask)

	want := RLE{{Start: 1, Length: 2}, {Start: 4, Length: 2}}

	if len(rle) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(rle))
	}

	for i, run := range want {
		if rle[i] != run {
			t.Errorf("run %d expected %+v, got %+v", i, run, rle[i])
		}
	}

	ints := rle.Ints()
	wantInts := []int{1, 2, 4, 2}

	for i, v := range wantInts {
		if ints[i] != v {
			t.Errorf("flattened value %d expected %d, got %d", i, v, ints[i])
		}
	}
}

func TestEncodeRLEAllFalse(t *testing.T) {

	mask := nucleiseg.NewBitMask(8, 8)

	if rle := EncodeRLE(mask); len(rle) != 0 {
		t.Errorf("all background mask expected empty RLE, got %v", rle)
	}
}

func TestEncodeRLEAllTrue(t *testing.T) {

	mask := nucleiseg.NewBitMask(4, 3)

	for i := range mask.Data {
		mask.Data[i] = true
	}

	rle := EncodeRLE(mask)

	if len(rle) != 1 {
		t.Fatalf("all foreground mask expected single run, got %d", len(rle))
	}

	if rle[0].Start != 1 || rle[0].Length != 12 {
		t.Errorf("expected run (1,12), got (%d,%d)", rle[0].Start, rle[0].Length)
	}
}

func TestRLERoundTrip(t *testing.T) {

	rnd := rand.New(rand.NewSource(7))

	// random masks across a range of sparsities
	for _, density := range []float64{0.0, 0.1, 0.5, 0.9, 1.0} {

		for trial := 0; trial < 20; trial++ {

			w := 1 + rnd.Intn(30)
			h := 1 + rnd.Intn(30)

			mask := nucleiseg.NewBitMask(w, h)

			for i := range mask.Data {
				if rnd.Float64() < density {
					mask.Data[i] = true
				}
			}

			rle := EncodeRLE(mask)

			decoded, err := rle.Decode(w, h)

			if err != nil {
				t.Fatalf("decode failed for %dx%d density %.1f: %v",
					w, h, density, err)
			}

			for i := range mask.Data {
				if decoded.Data[i] != mask.Data[i] {
					t.Fatalf("round trip mismatch at pixel %d for %dx%d density %.1f",
						i, w, h, density)
				}
			}
		}
	}
}

func TestRLEDecodeRejectsBadRuns(t *testing.T) {

	cases := []struct {
		name string
		rle  RLE
	}{
		{"zero start", RLE{{Start: 0, Length: 1}}},
		{"zero length", RLE{{Start: 1, Length: 0}}},
		{"out of range", RLE{{Start: 15, Length: 5}}},
		{"overlapping", RLE{{Start: 1, Length: 3}, {Start: 2, Length: 1}}},
		{"out of order", RLE{{Start: 5, Length: 1}, {Start: 1, Length: 1}}},
	}

	for _, c := range cases {
		if _, err := c.rle.Decode(4, 4); err == nil {
			t.Errorf("%s: expected decode error", c.name)
		}
	}
}
