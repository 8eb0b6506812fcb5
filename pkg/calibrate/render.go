package calibrate

// Helpers for getting pixels out to something that can show them

import(
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/emath"
)

// ToRGBA expands an interleaved 1, 3 or 4 channel byte buffer into an
// RGBA image. Gray is replicated into R, G and B; alpha is opaque unless
// the buffer has its own.
func ToRGBA(width, height int, data []uint8, channels int) (*image.RGBA, error) {
	switch channels {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("torgba: %d channels not supported", channels)
	}
	if want := width * height * channels; len(data) != want {
		return nil, stageErr("torgba", width, height,
			fmt.Errorf("have %d bytes, want %d: %w", len(data), want, emath.ErrLengthMismatch))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < width*height; i, j = i+1, j+4 {
		switch channels {
		case 1:
			v := data[i]
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = v, v, v, 0xFF
		case 3:
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = data[3*i], data[3*i+1], data[3*i+2], 0xFF
		case 4:
			copy(img.Pix[j:j+4], data[4*i:4*i+4])
		}
	}
	return img, nil
}

// Preview pushes the working buffer up by `stops` and gamma encodes it
// for display.
func Preview(ctx context.Context, enc ecolor.Encoder, img emath.LinearImage, stops float64) (*image.RGBA, error) {
	exposed, err := Expose(img, stops)
	if err != nil {
		return nil, err
	}
	bytes, err := enc.LinearToSRGB8(ctx, exposed.Pix)
	if err != nil {
		return nil, stageErr("preview", img.Width, img.Height, err)
	}
	return ToRGBA(img.Width, img.Height, bytes, 3)
}

// Swatch gives the 8-bit display color of a linear value, as seen at
// the given exposure.
func Swatch(v emath.Vec3, stops float64) [3]uint8 {
	return [3]uint8{
		ecolor.ToSRGB8(ExposeValue(v[0], stops)),
		ecolor.ToSRGB8(ExposeValue(v[1], stops)),
		ecolor.ToSRGB8(ExposeValue(v[2], stops)),
	}
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}
