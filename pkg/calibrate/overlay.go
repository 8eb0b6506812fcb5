package calibrate

import(
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/abworrall/colorchecker/pkg/ecolor"
)

// DrawOverlay draws the checker box and the sampled patch rectangles on
// top of a preview, and fills each rectangle with the median color we
// measured for it. A misplaced box is obvious at a glance: the swatches
// won't match the patches around them.
func DrawOverlay(preview image.Image, g Geometry, patches []PatchEstimate, stops float64) image.Image {
	dc := gg.NewContextForImage(preview)

	c := g.Canon()
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawRectangle(c.TopLeft[0], c.TopLeft[1], c.Dx(), c.Dy())
	dc.Stroke()

	for k, p := range patches {
		r := p.Rect
		sw := Swatch(p.RGB, stops)

		dc.SetRGB255(int(sw[0]), int(sw[1]), int(sw[2]))
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(1)
		dc.Stroke()

		if k < ecolor.ChartPatches {
			dc.DrawString(fmt.Sprintf("%d", k), float64(r.Min.X)+2, float64(r.Min.Y)+12)
		}
	}

	return dc.Image()
}

// WriteOverlay renders DrawOverlay straight to a PNG file.
func WriteOverlay(preview image.Image, g Geometry, patches []PatchEstimate, stops float64, filename string) error {
	img := DrawOverlay(preview, g, patches, stops)
	if err := gg.SavePNG(filename, img); err != nil {
		return fmt.Errorf("overlay '%s': %v", filename, err)
	}
	return nil
}
