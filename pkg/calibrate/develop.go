package calibrate

import(
	"image"
	"image/color"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/emath"
	"github.com/abworrall/colorchecker/pkg/sensor"
)

// Develop takes a mosaic frame (already in the orientation wanted)
// through demosaic, normalize and white balance, giving the working
// buffer that patches are sampled from.
func Develop(f sensor.RawFrame, lv sensor.Levels, wb ecolor.WhiteBalance) (emath.LinearImage, error) {
	img, err := sensor.Demosaic(f)
	if err != nil {
		return emath.LinearImage{}, stageErr("demosaic", f.Width, f.Height, err)
	}

	norm, err := Normalize(img, lv)
	if err != nil {
		return emath.LinearImage{}, err
	}

	return ApplyWhiteBalance(norm, wb)
}

// FromDeveloped builds a working buffer from an image that an external
// RAW developer has already demosaiced, white balanced and gamma
// encoded. The developer will have brightened it for display, so it
// is pulled back down by `stops` to line up with the custom path.
func FromDeveloped(img image.Image, stops float64) emath.LinearImage {
	b := img.Bounds()
	gamma8 := make([]uint8, b.Dx()*b.Dy()*3)
	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			o := 3 * (y*b.Dx() + x)
			gamma8[o], gamma8[o+1], gamma8[o+2] = c.R, c.G, c.B
		}
	}

	li := emath.LinearImage{Width: b.Dx(), Height: b.Dy(), Pix: ecolor.SRGB8ToLinear(gamma8)}
	for i, v := range li.Pix {
		li.Pix[i] = ExposeValue(v, -stops)
	}
	return li
}
