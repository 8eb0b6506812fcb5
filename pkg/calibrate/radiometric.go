package calibrate

import(
	"math"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/emath"
	"github.com/abworrall/colorchecker/pkg/sensor"
)

// The radiometric stages. Each returns a fresh image and leaves its
// input alone. They only fail if the input buffer doesn't match its
// dimensions; numeric trouble (e.g. black == white) is passed through
// as NaN/Inf.

// Normalize maps raw sensor counts from [black, white] onto [0,1],
// clamping anything outside that (noise below black, clipped highlights).
func Normalize(img emath.LinearImage, lv sensor.Levels) (emath.LinearImage, error) {
	if err := img.Validate(); err != nil {
		return emath.LinearImage{}, stageErr("normalize", img.Width, img.Height, err)
	}

	out := img.NewFromThis()
	for i, v := range img.Pix {
		out.Pix[i] = emath.Clamp(emath.MapRange(v, lv.Black, lv.White, 0, 1), 0, 1)
	}
	return out, nil
}

// ApplyWhiteBalance scales each channel by its multiplier, clamping to [0,1].
func ApplyWhiteBalance(img emath.LinearImage, wb ecolor.WhiteBalance) (emath.LinearImage, error) {
	if err := img.Validate(); err != nil {
		return emath.LinearImage{}, stageErr("whitebalance", img.Width, img.Height, err)
	}

	out := img.NewFromThis()
	for i:=0; i<len(img.Pix); i+=3 {
		out.Pix[i]   = emath.Clamp(img.Pix[i]   * wb.R, 0, 1)
		out.Pix[i+1] = emath.Clamp(img.Pix[i+1] * wb.G, 0, 1)
		out.Pix[i+2] = emath.Clamp(img.Pix[i+2] * wb.B, 0, 1)
	}
	return out, nil
}

// ExposeValue simulates pushing (stops > 0) or pulling (stops < 0) the
// exposure of a single linear value.
func ExposeValue(v, stops float64) float64 {
	return emath.Clamp(v * math.Pow(2, stops), 0, 1)
}

// Expose applies ExposeValue to every sample. This is for looking at
// things; patch sampling always works on the unexposed buffer.
func Expose(img emath.LinearImage, stops float64) (emath.LinearImage, error) {
	if err := img.Validate(); err != nil {
		return emath.LinearImage{}, stageErr("expose", img.Width, img.Height, err)
	}

	factor := math.Pow(2, stops)
	out := img.NewFromThis()
	for i, v := range img.Pix {
		out.Pix[i] = emath.Clamp(v * factor, 0, 1)
	}
	return out, nil
}
