package emath

import(
	"errors"
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{[]float64{7}, 7},
		{[]float64{1, 2, 3, 4}, 2.5},
		{[]float64{4, 3, 2, 1}, 2.5},
		{[]float64{3, 1, 2}, 2},
		{[]float64{0.9, 0.1, 0.1, 0.1, 1.0}, 0.1},
	}

	for _, test := range tests {
		got, err := Median(test.in)
		if err != nil {
			t.Errorf("Median(%v): %v", test.in, err)
		} else if got != test.want {
			t.Errorf("Median(%v) = %f, want %f", test.in, got, test.want)
		}
	}
}

func TestMedianEmpty(t *testing.T) {
	if _, err := Median(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Median(nil) err = %v, want ErrEmpty", err)
	}
}

func TestMedianDoesNotReorder(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input was reordered: %v", in)
	}
}

func TestMapRangeAndClamp(t *testing.T) {
	if got := MapRange(600, 200, 1000, 0, 1); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("MapRange = %f, want 0.5", got)
	}
	if got := Clamp(MapRange(100, 200, 1000, 0, 1), 0, 1); got != 0 {
		t.Errorf("below black should clamp to 0, got %f", got)
	}
	if got := Clamp(1.7, 0, 1); got != 1 {
		t.Errorf("Clamp(1.7) = %f", got)
	}
}
