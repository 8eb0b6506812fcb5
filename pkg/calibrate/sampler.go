package calibrate

import(
	"fmt"
	"image"
	"math"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/emath"
)

// How much of each checker cell to sample, as a fraction of its width
// and height. Keeping to the middle half stays clear of the black
// borders between patches, and of any slop in the user's box.
const DefaultPatchFraction = 0.5

// Geometry is the outer bounding box of the checker chart, in image
// pixel coords, as picked by the user.
type Geometry struct {
	TopLeft     [2]float64
	BottomRight [2]float64
}

func (g Geometry)String() string {
	return fmt.Sprintf("checker[(%.0f,%.0f)-(%.0f,%.0f)]", g.TopLeft[0], g.TopLeft[1], g.BottomRight[0], g.BottomRight[1])
}

// Canon returns the geometry with its corners the right way round, in
// case the box was dragged up or left.
func (g Geometry)Canon() Geometry {
	c := g
	for i:=0; i<2; i++ {
		if c.TopLeft[i] > c.BottomRight[i] {
			c.TopLeft[i], c.BottomRight[i] = c.BottomRight[i], c.TopLeft[i]
		}
	}
	return c
}

func (g Geometry)Dx() float64 { return g.BottomRight[0] - g.TopLeft[0] }
func (g Geometry)Dy() float64 { return g.BottomRight[1] - g.TopLeft[1] }

func (g Geometry)Validate() error {
	c := g.Canon()
	if !(c.Dx() > 0) || !(c.Dy() > 0) {
		return fmt.Errorf("%s: %w", g, ErrDegenerateGeometry)
	}
	return nil
}

// PatchRect returns the pixel rectangle sampled for the patch at
// column i, row j: the middle `fraction` of that patch's cell.
func (g Geometry)PatchRect(i, j int, fraction float64) image.Rectangle {
	c := g.Canon()
	cellW := c.Dx() / ecolor.ChartColumns
	cellH := c.Dy() / ecolor.ChartRows

	x0 := c.TopLeft[0] + float64(i)*cellW + (1-fraction)*cellW/2
	y0 := c.TopLeft[1] + float64(j)*cellH + (1-fraction)*cellH/2
	w := int(math.Round(fraction * cellW))
	h := int(math.Round(fraction * cellH))

	min := image.Point{int(math.Round(x0)), int(math.Round(y0))}
	return image.Rectangle{Min: min, Max: min.Add(image.Point{w, h})}
}

// A PatchEstimate is our measurement of one checker patch: the
// per-channel median of the pixels in its sample rectangle. The median
// shrugs off specular highlights, hot pixels and demosaic fringes.
type PatchEstimate struct {
	RGB     emath.Vec3
	Samples int
	Rect    image.Rectangle
}

func (pe PatchEstimate)String() string {
	return fmt.Sprintf("%s from %d px in %s", pe.RGB, pe.Samples, pe.Rect)
}

// SamplePatches measures all 24 patches, returned row-major (patch k is
// at column k%6, row k/6), matching ecolor.ReferenceChart. Any patch that
// ends up with no in-bounds pixels fails the whole sampling.
func SamplePatches(img emath.LinearImage, g Geometry, fraction float64) ([]PatchEstimate, error) {
	if err := img.Validate(); err != nil {
		return nil, stageErr("sample", img.Width, img.Height, err)
	}
	if err := g.Validate(); err != nil {
		return nil, stageErr("sample", img.Width, img.Height, err)
	}

	out := make([]PatchEstimate, ecolor.ChartPatches)
	for j:=0; j<ecolor.ChartRows; j++ {
		for i:=0; i<ecolor.ChartColumns; i++ {
			k := ecolor.PatchIndex(i, j)
			pe, err := samplePatch(img, g.PatchRect(i, j, fraction))
			if err != nil {
				return nil, stageErr("sample", img.Width, img.Height, &PatchError{Index: k, Err: err})
			}
			out[k] = pe
		}
	}

	return out, nil
}

func samplePatch(img emath.LinearImage, r image.Rectangle) (PatchEstimate, error) {
	pe := PatchEstimate{Rect: r}
	in := r.Intersect(img.Bounds())

	chans := [3][]float64{}
	for c:=0; c<3; c++ {
		chans[c] = make([]float64, 0, in.Dx()*in.Dy())
	}

	for y:=in.Min.Y; y<in.Max.Y; y++ {
		for x:=in.Min.X; x<in.Max.X; x++ {
			rgb := img.RGB(x, y)
			for c:=0; c<3; c++ {
				chans[c] = append(chans[c], rgb[c])
			}
		}
	}

	pe.Samples = len(chans[0])
	for c:=0; c<3; c++ {
		m, err := emath.Median(chans[c])
		if err != nil {
			return pe, fmt.Errorf("rect %s outside image %s: %w", r, img.Bounds(), ErrNoSamples)
		}
		pe.RGB[c] = m
	}

	return pe, nil
}
