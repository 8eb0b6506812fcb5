package emath

import(
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr/hdrcolor"
)

var ErrLengthMismatch = errors.New("buffer length mismatch")

// A LinearImage is a grid of interleaved RGB floats, in linear
// light. Values are nominally [0,1] once normalized, but nothing here
// enforces that; straight out of the demosaic they carry raw sensor
// counts.
type LinearImage struct {
	Width  int
	Height int
	Pix    []float64 // len == Width*Height*3, row-major, RGBRGB...
}

func NewLinearImage(w, h int) LinearImage {
	return LinearImage{Width: w, Height: h, Pix: make([]float64, w*h*3)}
}

// NewFromThis returns an empty image of the same shape.
func (li LinearImage)NewFromThis() LinearImage { return NewLinearImage(li.Width, li.Height) }

func (li LinearImage)offset(x, y int) int { return 3 * (li.Width*y + x) }

func (li LinearImage)RGB(x, y int) Vec3 {
	o := li.offset(x, y)
	return Vec3{li.Pix[o], li.Pix[o+1], li.Pix[o+2]}
}

func (li *LinearImage)SetRGB(x, y int, v Vec3) {
	o := li.offset(x, y)
	li.Pix[o], li.Pix[o+1], li.Pix[o+2] = v[0], v[1], v[2]
}

// Validate checks the buffer is the size its dimensions claim.
func (li LinearImage)Validate() error {
	if li.Width < 0 || li.Height < 0 {
		return fmt.Errorf("linear image %dx%d: negative dimension", li.Width, li.Height)
	}
	if want := li.Width * li.Height * 3; len(li.Pix) != want {
		return fmt.Errorf("linear image %dx%d: have %d samples, want %d: %w",
			li.Width, li.Height, len(li.Pix), want, ErrLengthMismatch)
	}
	return nil
}

func (li LinearImage)Stats() string {
	min := math.MaxFloat64
	max := -1.0 * min
	for _, v := range li.Pix {
		if v > max { max = v }
		if v < min { min = v }
	}
	return fmt.Sprintf("li[%dx%d, vals{%f,%f}]", li.Width, li.Height, min, max)
}

// Implement image.Image, so the grid can go straight into an encoder
func (li LinearImage)ColorModel() color.Model  { return hdrcolor.RGBModel }
func (li LinearImage)Bounds() image.Rectangle  { return image.Rect(0, 0, li.Width, li.Height) }
func (li LinearImage)At(x, y int) color.Color  { return li.HDRAt(x, y) }

// Implement hdr.Image
func (li LinearImage)HDRAt(x, y int) hdrcolor.Color {
	v := li.RGB(x, y)
	return hdrcolor.RGB{R: v[0], G: v[1], B: v[2]}
}
func (li LinearImage)Size() int { return li.Width * li.Height }
