package sensor

import(
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// PGMDecoder reads binary (P5) PGM files, which is what `dcraw -D -4`
// writes: the raw mosaic, no scaling. Samples are big-endian when
// maxval > 255. The maxval is reported as the sensor white level.
type PGMDecoder struct{}

func (PGMDecoder)Decode(ctx context.Context, data []byte, opts DecodeOptions) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}

	br := bytes.NewReader(data)
	r := bufio.NewReader(br)

	var magic string
	var w, h, maxval int
	if _, err := fmt.Fscan(r, &magic); err != nil || magic != "P5" {
		return Decoded{}, fmt.Errorf("pgm: bad magic '%s': %w", magic, ErrUnsupportedFormat)
	}
	for _, dst := range []*int{&w, &h, &maxval} {
		if err := skipComments(r); err != nil {
			return Decoded{}, fmt.Errorf("pgm header: %v", err)
		}
		if _, err := fmt.Fscan(r, dst); err != nil {
			return Decoded{}, fmt.Errorf("pgm header: %v", err)
		}
	}
	if w <= 0 || h <= 0 || maxval <= 0 || maxval > 0xFFFF {
		return Decoded{}, fmt.Errorf("pgm header: bad dims %dx%d maxval %d", w, h, maxval)
	}
	// Exactly one whitespace byte separates the header from the pixels
	if _, err := r.ReadByte(); err != nil {
		return Decoded{}, fmt.Errorf("pgm header: %v", err)
	}

	bytesPer := 1
	if maxval > 0xFF {
		bytesPer = 2
	}
	// Don't trust the header's dimensions any further than the bytes we have
	remaining := r.Buffered() + br.Len()
	if h > remaining || w > remaining/(h*bytesPer) {
		return Decoded{}, fmt.Errorf("pgm pixels: header claims %dx%dx%d bytes, only %d present", w, h, bytesPer, remaining)
	}
	buf := make([]byte, w*h*bytesPer)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Decoded{}, fmt.Errorf("pgm pixels (%dx%d): %v", w, h, err)
	}

	f := RawFrame{Width: w, Height: h, Order: opts.Order, Samples: make([]uint16, w*h)}
	for i := range f.Samples {
		if bytesPer == 2 {
			f.Samples[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
		} else {
			f.Samples[i] = uint16(buf[i])
		}
	}

	return Decoded{Frame: &f, Metadata: Metadata{Maximum: maxval}}, nil
}

func skipComments(r *bufio.Reader) error {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return err
		}
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			r.ReadByte()
		case '#':
			if _, err := r.ReadString('\n'); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
