package calibrate

import(
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/sensor"
)

const(
	testBlack = 256
	testWhite = 4095
)

// chartFrame renders the reference checker as a 120x80 RGGB mosaic,
// as a perfectly calibrated camera would see it.
func chartFrame() sensor.RawFrame {
	ref := ecolor.ReferenceLinear()
	f := sensor.RawFrame{Width: 120, Height: 80, Order: sensor.RGGB, Samples: make([]uint16, 120*80)}
	for y:=0; y<f.Height; y++ {
		for x:=0; x<f.Width; x++ {
			v := ref[ecolor.PatchIndex(x/20, y/20)][f.Order.ChannelAt(x, y)]
			f.Samples[y*f.Width+x] = uint16(math.Round(testBlack + v*(testWhite-testBlack)))
		}
	}
	return f
}

func encodePGM(f sensor.RawFrame) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "P5\n%d %d\n%d\n", f.Width, f.Height, 65535)
	for _, v := range f.Samples {
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}
	return buf.Bytes()
}

// dngTIFF hand-assembles a little-endian 16-bit gray TIFF of the frame,
// carrying the DNG WhiteLevel and AsShotNeutral tags, which
// x/image/tiff can't write.
func dngTIFF(f sensor.RawFrame, white uint32, neutral [3][2]uint32) []byte {
	type ifdEntry struct {
		ID, Type     uint16
		Count, Value uint32
	}
	const(
		tShort    = 3
		tLong     = 4
		tRational = 5
	)

	w, h := uint32(f.Width), uint32(f.Height)
	entries := []ifdEntry{
		{256, tLong, 1, w},
		{257, tLong, 1, h},
		{258, tShort, 1, 16},
		{259, tShort, 1, 1},
		{262, tShort, 1, 1},
		{273, tLong, 1, 0}, // strip offset, set below
		{277, tShort, 1, 1},
		{278, tLong, 1, h},
		{279, tLong, 1, 2*w*h},
		{0xC61D, tLong, 1, white},
		{0xC628, tRational, 3, 0}, // offset of the rationals, set below
	}
	neutralOffset := uint32(8 + 2 + 12*len(entries) + 4)
	entries[10].Value = neutralOffset
	entries[5].Value = neutralOffset + 3*8

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II*\x00")
	binary.Write(&buf, le, uint32(8))
	binary.Write(&buf, le, uint16(len(entries)))
	binary.Write(&buf, le, entries)
	binary.Write(&buf, le, uint32(0))
	binary.Write(&buf, le, neutral)
	binary.Write(&buf, le, f.Samples)
	return buf.Bytes()
}

func testConfig() Config {
	c := NewConfig()
	c.BlackLevel = testBlack
	c.WhiteLevel = testWhite
	c.WhiteBalance = ecolor.NeutralWhiteBalance()
	c.Checker = Geometry{TopLeft: [2]float64{0, 0}, BottomRight: [2]float64{120, 80}}
	c.Manufacturer = "Test"
	c.Camera = "Cam"
	c.Scene = "Synthetic"
	return c
}

func checkNearIdentity(t *testing.T, r Result) {
	t.Helper()
	if !closeMat3(r.Correction, identity, 1e-2) {
		t.Errorf("correction not near identity:\n%s", r.Correction)
	}
	sums := r.Normalized.ColumnSums()
	for col:=0; col<3; col++ {
		if math.Abs(sums[col] - 1) > 1e-9 {
			t.Errorf("normalized column %d sums to %f", col, sums[col])
		}
	}
	if r.MeanDeltaE() > 1 {
		t.Errorf("mean dE %f", r.MeanDeltaE())
	}
}

func TestCalibratorRun(t *testing.T) {
	cal := NewCalibrator(testConfig())
	r, err := cal.Run(context.Background(), "chart.pgm", encodePGM(chartFrame()))
	if err != nil {
		t.Fatal(err)
	}
	checkNearIdentity(t, r)
	if r.Clipped != 0 {
		t.Errorf("nothing reaches white, but %f reported clipped", r.Clipped)
	}

	if r.Metadata.Title != "Test Cam: Synthetic" || r.Filename(".flspace") != "Test_Cam_Synthetic.flspace" {
		t.Errorf("title %q", r.Metadata.Title)
	}

	renderer, err := cal.Renderer()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.WriteExport(&buf, renderer); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<title>Test Cam: Synthetic</title>") {
		t.Errorf("export:\n%s", buf.String())
	}

	rep := r.Report(cal.ExposureStops)
	if len(rep.Patches) != ecolor.ChartPatches || rep.Patches[18].Name != "white" {
		t.Errorf("report patches: %v", rep.Patches)
	}
	if !strings.Contains(rep.AsYaml(), "toworkingspace:") {
		t.Errorf("report yaml:\n%s", rep.AsYaml())
	}
}

func TestCalibratorRunRotated(t *testing.T) {
	// The file holds the chart upside down, so its native order is BGGR
	rotated := sensor.Rotate180(chartFrame())

	cfg := testConfig()
	cfg.Rotate = 180
	cfg.BayerOrder = rotated.Order
	cfg.Verbosity = 2
	cal := NewCalibrator(cfg)

	r, err := cal.Run(context.Background(), "upsidedown.pgm", encodePGM(rotated))
	if err != nil {
		t.Fatal(err)
	}
	checkNearIdentity(t, r)

	// Re-running with the same capture reuses the cached rotation
	if _, err := cal.Develop(r.Capture); err != nil {
		t.Fatal(err)
	}
	if cal.Cache.Len() != 1 {
		t.Errorf("cache has %d entries", cal.Cache.Len())
	}
}

func TestCalibratorDevelopedSource(t *testing.T) {
	// An 8-bit developed rendition of the chart, brightened 1 stop
	ref := ecolor.ReferenceLinear()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y:=0; y<80; y++ {
		for x:=0; x<120; x++ {
			v := ref[ecolor.PatchIndex(x/20, y/20)]
			img.SetRGBA(x, y, color.RGBA{
				ecolor.ToSRGB8(ExposeValue(v[0], 1)),
				ecolor.ToSRGB8(ExposeValue(v[1], 1)),
				ecolor.ToSRGB8(ExposeValue(v[2], 1)),
				0xFF,
			})
		}
	}

	cfg := testConfig()
	cfg.Source = SourceDeveloped
	cfg.ExposureStops = 1
	cal := NewCalibrator(cfg)

	// The white patch clips at +1 stop, so only check the fit stays sane
	w, err := cal.Develop(Capture{Filename: "dev.tif", Decoded: sensor.Decoded{Developed: img}})
	if err != nil {
		t.Fatal(err)
	}
	got := w.RGB(50, 50) // patch 2, 2: red
	want := ref[ecolor.PatchIndex(2, 2)]
	for c:=0; c<3; c++ {
		if math.Abs(got[c] - want[c]) > 0.01 {
			t.Errorf("channel %d: %f, want %f", c, got[c], want[c])
		}
	}

	if _, err := cal.Calibrate(Capture{}, w); err != nil {
		t.Errorf("calibrate developed: %v", err)
	}
}

func TestCalibratorErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Checker = Geometry{TopLeft: [2]float64{0, 0}, BottomRight: [2]float64{0, 80}}
	cal := NewCalibrator(cfg)

	_, err := cal.Run(context.Background(), "chart.pgm", encodePGM(chartFrame()))
	var se *StageError
	if !errors.Is(err, ErrDegenerateGeometry) || !errors.As(err, &se) || se.Stage != "sample" {
		t.Errorf("err = %v", err)
	}

	if _, err := cal.Run(context.Background(), "junk.bin", []byte("junk")); !errors.Is(err, sensor.ErrUnsupportedFormat) {
		t.Errorf("junk err = %v", err)
	}

	cfg = testConfig()
	cfg.WhiteLevel = 0
	cal = NewCalibrator(cfg)
	f := chartFrame()
	if _, err := cal.Develop(Capture{Decoded: sensor.Decoded{Frame: &f}}); err == nil {
		t.Errorf("expected error with no white level from anywhere")
	}
}

func TestCalibratorCameraWhiteBalance(t *testing.T) {
	cfg := testConfig()
	cfg.WhiteBalance = ecolor.WhiteBalance{}
	cal := NewCalibrator(cfg)

	f := chartFrame()
	c := Capture{Decoded: sensor.Decoded{Frame: &f, Metadata: sensor.Metadata{CamMul: [4]float64{2, 1, 1.5, 1}}}}
	w, err := cal.Develop(c)
	if err != nil {
		t.Fatal(err)
	}
	if w.WhiteBalance != (ecolor.WhiteBalance{R: 2, G: 1, B: 1.5}) {
		t.Errorf("white balance %v", w.WhiteBalance)
	}
}

func TestCalibratorUsesDNGMetadata(t *testing.T) {
	// The camera saw the chart through a warm light: red reads twice
	// too high relative to green, blue 1.5x too low
	wb := ecolor.WhiteBalance{R: 2, G: 1, B: 1.5}
	ref := ecolor.ReferenceLinear()
	f := chartFrame()
	const white = 4000
	for y:=0; y<f.Height; y++ {
		for x:=0; x<f.Width; x++ {
			c := f.Order.ChannelAt(x, y)
			v := ref[ecolor.PatchIndex(x/20, y/20)][c] / wb.Vec3()[c]
			f.Samples[y*f.Width+x] = uint16(math.Round(testBlack + v*(white-testBlack)))
		}
	}

	cfg := testConfig()
	cfg.WhiteLevel = 0
	cfg.WhiteBalance = ecolor.WhiteBalance{}
	cal := NewCalibrator(cfg)

	r, err := cal.Run(context.Background(), "chart.dng", dngTIFF(f, white, [3][2]uint32{{1, 2}, {1, 1}, {2, 3}}))
	if err != nil {
		t.Fatal(err)
	}
	if r.Levels.White != white {
		t.Errorf("levels %s, want white from the file", r.Levels)
	}
	if math.Abs(r.WhiteBalance.R - 2) > 1e-9 || math.Abs(r.WhiteBalance.B - 1.5) > 1e-9 {
		t.Errorf("white balance %s, want the as-shot neutral's", r.WhiteBalance)
	}
	checkNearIdentity(t, r)
}

func TestWriteOutputs(t *testing.T) {
	cal := NewCalibrator(testConfig())
	r, err := cal.Run(context.Background(), "chart.pgm", encodePGM(chartFrame()))
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	preview, err := Preview(context.Background(), cal.Encoder, r.LinearImage, 0)
	if err != nil {
		t.Fatal(err)
	}

	plain := filepath.Join(dir, "preview.png")
	if err := WritePNG(preview, plain); err != nil {
		t.Fatal(err)
	}
	overlay := filepath.Join(dir, "overlay.png")
	if err := WriteOverlay(preview, cal.Checker, r.Patches, 0, overlay); err != nil {
		t.Fatal(err)
	}
	hdr := filepath.Join(dir, "working.hdr")
	if err := WriteHDR(r.LinearImage, hdr); err != nil {
		t.Fatal(err)
	}

	for _, fn := range []string{plain, overlay, hdr} {
		if st, err := os.Stat(fn); err != nil || st.Size() == 0 {
			t.Errorf("%s: %v", fn, err)
		}
	}
}
