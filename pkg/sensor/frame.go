package sensor

import(
	"errors"
	"fmt"
)

var ErrLengthMismatch = errors.New("sample count mismatch")

// A RawFrame is the mosaiced sensor data, one 16-bit sample per
// photosite, row-major. Treat it as immutable once decoded.
type RawFrame struct {
	Width   int
	Height  int
	Order   BayerOrder
	Samples []uint16
}

func (f RawFrame)String() string {
	return fmt.Sprintf("RawFrame[%dx%d, %s]", f.Width, f.Height, f.Order)
}

func (f RawFrame)At(x, y int) uint16 { return f.Samples[f.Width*y + x] }

func (f RawFrame)Validate() error {
	if !f.Order.Valid() {
		return fmt.Errorf("%s: %w", f, ErrUnknownBayerOrder)
	}
	if f.Width < 0 || f.Height < 0 {
		return fmt.Errorf("%s: negative dimension", f)
	}
	if want := f.Width * f.Height; len(f.Samples) != want {
		return fmt.Errorf("%s: have %d samples, want %d: %w", f, len(f.Samples), want, ErrLengthMismatch)
	}
	return nil
}

// Rotate180 returns a new frame turned upside down, with the bayer
// order it now has. The input is untouched. For a frame with odd
// dimensions the order swap is only approximately right, since the
// tile grid no longer lines up with the edges.
func Rotate180(f RawFrame) RawFrame {
	rotated := RawFrame{
		Width:   f.Width,
		Height:  f.Height,
		Order:   f.Order.Rotate180(),
		Samples: make([]uint16, len(f.Samples)),
	}

	// Reversing both axes of a row-major grid is the same as reversing the slice
	n := len(f.Samples)
	for i, v := range f.Samples {
		rotated.Samples[n-1-i] = v
	}

	return rotated
}
