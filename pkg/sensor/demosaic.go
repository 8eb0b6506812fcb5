package sensor

import(
	"fmt"

	"github.com/abworrall/colorchecker/pkg/emath"
)

// Demosaic rebuilds a full RGB image from the frame's mosaic. It is a
// very plain method: each pixel takes its missing channels from the
// nearest photosite of that color within its own 2x2 tile. No
// interpolation, so edges come out blocky, but every value in the
// output is a real sensor reading, which is what matters when
// measuring flat checker patches.
//
// A zero in the output means "unknown". Values stay in raw sensor
// units; normalizing is a later stage.
func Demosaic(f RawFrame) (emath.LinearImage, error) {
	if err := f.Validate(); err != nil {
		return emath.LinearImage{}, fmt.Errorf("demosaic: %w", err)
	}

	width, height := f.Width, f.Height
	img := emath.NewLinearImage(width, height)
	table := f.Order.Table()

	// Scatter each photosite into its own channel
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			c := f.Order.ChannelAt(x, y)
			img.Pix[3*(y*width+x) + c] = float64(f.Samples[y*width+x])
		}
	}

	// Then fill the gaps, one channel at a time
	for c:=0; c<3; c++ {
		positions := []int{}
		for pos:=0; pos<4; pos++ {
			if table[pos] == c {
				positions = append(positions, pos)
			}
		}

		for y:=0; y<height; y++ {
			for x:=0; x<width; x++ {
				idx := 3*(y*width+x) + c
				if img.Pix[idx] != 0 {
					continue
				}

				for _, pos := range positions {
					nx := x - x%2 + pos%2
					ny := y - y%2 + pos/2
					if nx >= width || ny >= height {
						continue
					}
					if v := img.Pix[3*(ny*width+nx) + c]; v != 0 {
						img.Pix[idx] = v
						break
					}
				}
			}
		}
	}

	return img, nil
}
