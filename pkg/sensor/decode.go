package sensor

import(
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	exiftiff "github.com/rwcarlsen/goexif/tiff"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// DecodeOptions mirror the knobs a RAW decoder usually offers.
type DecodeOptions struct {
	Rotate      int     // 0 or 180; only applied to Developed, the mosaic is rotated downstream
	UseCameraWB bool    // ask the decoder to apply the camera's white balance when developing
	Bright      float64 // brightness boost for Developed, 0 means none
	Order       BayerOrder
}

// Metadata is what we need to know about the camera, beyond the pixels.
type Metadata struct {
	CameraMake  string
	CameraModel string
	CamMul      [4]float64 // white balance multipliers [r, g, b, g2], zero if unknown
	Maximum     int        // sensor white level, zero if unknown
}

// Decoded holds whatever a decoder could get out of a file. At least
// one of Frame (the mosaic) and Developed (an 8-bit, already demosaiced
// and gamma encoded rendition) will be set.
type Decoded struct {
	Frame     *RawFrame
	Developed image.Image
	Metadata
}

// A Decoder turns the bytes of a RAW file into pixels. Real RAW formats
// are left to external tools (e.g. `dcraw -D -4` or `dcraw -D -4 -T`);
// the decoders here read the dumps they produce.
type Decoder interface {
	Decode(ctx context.Context, data []byte, opts DecodeOptions) (Decoded, error)
}

// AutoDecoder dispatches on the file's magic number.
type AutoDecoder struct{}

func (AutoDecoder)Decode(ctx context.Context, data []byte, opts DecodeOptions) (Decoded, error) {
	switch {
	case bytes.HasPrefix(data, []byte("P5")):
		return PGMDecoder{}.Decode(ctx, data, opts)
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFFDecoder{}.Decode(ctx, data, opts)
	}
	return Decoded{}, ErrUnsupportedFormat
}

// TIFFDecoder reads TIFFs. A 16-bit single channel TIFF is taken to be
// an undemosaiced sensor dump; anything else is treated as a developed
// image. TIFF based RAW formats carry EXIF, from which we pick up the
// camera make and model, and DNGs carry the sensor white level and the
// as-shot white balance.
type TIFFDecoder struct{}

func (TIFFDecoder)Decode(ctx context.Context, data []byte, opts DecodeOptions) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}

	d := Decoded{Metadata: readExif(data)}
	readDNGTags(data, &d.Metadata)

	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return d, fmt.Errorf("tiff: %v", err)
	}

	switch m := img.(type) {
	case *image.Gray16:
		f := frameFromGray16(m, opts.Order)
		d.Frame = &f
	default:
		d.Developed = develop(img, opts)
	}

	return d, nil
}

func readExif(data []byte) Metadata {
	md := Metadata{}
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return md
	}
	if tag, err := ex.Get(exif.Make); err == nil {
		if s, err := tag.StringVal(); err == nil {
			md.CameraMake = strings.TrimSpace(s)
		}
	}
	if tag, err := ex.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			md.CameraModel = strings.TrimSpace(s)
		}
	}
	return md
}

// DNG tags that goexif doesn't know by name
const(
	tagWhiteLevel    = 0xC61D
	tagAsShotNeutral = 0xC628
)

// readDNGTags walks the TIFF directories looking for the DNG white
// level and as-shot neutral. A file without them is left untouched.
func readDNGTags(data []byte, md *Metadata) {
	t, err := exiftiff.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}

	for _, dir := range t.Dirs {
		for _, tag := range dir.Tags {
			switch tag.Id {
			case tagWhiteLevel:
				if v, err := tag.Int64(0); err == nil && v > 0 {
					md.Maximum = int(v)
				}
			case tagAsShotNeutral:
				if camMul, err := camMulFromNeutral(tag); err == nil {
					md.CamMul = camMul
				}
			}
		}
	}
}

// camMulFromNeutral turns the camera's idea of neutral, in camera RGB,
// into multipliers in the dcraw cam_mul layout [r, g, b, g2].
func camMulFromNeutral(tag *exiftiff.Tag) ([4]float64, error) {
	if tag.Count < 3 {
		return [4]float64{}, fmt.Errorf("AsShotNeutral: %d values, want 3", tag.Count)
	}

	var neutral [3]float64
	for i := range neutral {
		v, err := tagFloat(tag, i)
		if err != nil {
			return [4]float64{}, fmt.Errorf("AsShotNeutral[%d]: %v", i, err)
		}
		if v <= 0 {
			return [4]float64{}, fmt.Errorf("AsShotNeutral[%d]: non-positive %f", i, v)
		}
		neutral[i] = v
	}

	return [4]float64{1/neutral[0], 1/neutral[1], 1/neutral[2], 1/neutral[1]}, nil
}

func tagFloat(tag *exiftiff.Tag, i int) (float64, error) {
	switch tag.Format() {
	case exiftiff.RatVal:
		num, denom, err := tag.Rat2(i)
		if err != nil {
			return 0, err
		}
		if denom == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		return float64(num) / float64(denom), nil
	case exiftiff.IntVal:
		v, err := tag.Int64(i)
		return float64(v), err
	case exiftiff.FloatVal:
		return tag.Float(i)
	}
	return 0, fmt.Errorf("unexpected tag format %v", tag.Format())
}

func frameFromGray16(m *image.Gray16, order BayerOrder) RawFrame {
	b := m.Bounds()
	f := RawFrame{Width: b.Dx(), Height: b.Dy(), Order: order, Samples: make([]uint16, b.Dx()*b.Dy())}
	for y:=0; y<f.Height; y++ {
		for x:=0; x<f.Width; x++ {
			f.Samples[y*f.Width+x] = m.Gray16At(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return f
}

// develop copies img into an 8-bit RGBA, applying the rotation and
// brightness options the way a RAW developer would.
func develop(img image.Image, opts DecodeOptions) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	gain := 1.0
	if opts.Bright > 0 {
		gain = opts.Bright
	}

	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			dx, dy := x, y
			if opts.Rotate == 180 {
				dx, dy = b.Dx()-1-x, b.Dy()-1-y
			}
			c := color.RGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA64)
			out.SetRGBA(dx, dy, color.RGBA{scale8(c.R, gain), scale8(c.G, gain), scale8(c.B, gain), 0xFF})
		}
	}
	return out
}

func scale8(v uint16, gain float64) uint8 {
	f := float64(v>>8) * gain
	if f > 255 {
		return 255
	}
	return uint8(f)
}
