package calibrate

import(
	"context"
	"fmt"
	"log"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/emath"
	"github.com/abworrall/colorchecker/pkg/sensor"
)

// A Calibrator runs the whole pipeline: decode, develop, sample,
// solve. Its Config is read, never written; anything worth
// remembering between runs lives in the explicit Cache.
type Calibrator struct {
	Config
	Decoder  sensor.Decoder
	Encoder  ecolor.Encoder
	Cache   *sensor.RotationCache
}

func NewCalibrator(cfg Config) *Calibrator {
	return &Calibrator{
		Config:  cfg,
		Decoder: sensor.AutoDecoder{},
		Encoder: &ecolor.ParallelEncoder{},
		Cache:   sensor.NewRotationCache(),
	}
}

// A Capture is a decoded file, ready to be developed.
type Capture struct {
	Filename string
	sensor.Decoded
}

func (c Capture)String() string {
	s := fmt.Sprintf("%s: %s %s", c.Filename, c.CameraMake, c.CameraModel)
	if c.Frame != nil {
		s += fmt.Sprintf(", %s", c.Frame)
	}
	if c.Developed != nil {
		s += fmt.Sprintf(", developed %s", c.Developed.Bounds())
	}
	return s
}

// Working is the developed, linear, white balanced image that patches
// are sampled from, plus what went into making it.
type Working struct {
	emath.LinearImage
	Levels       sensor.Levels
	WhiteBalance ecolor.WhiteBalance
	Clipped      float64 // fraction of raw samples at or above the white level
	Source       string
}

func (cal *Calibrator)Load(ctx context.Context, filename string, data []byte) (Capture, error) {
	opts := sensor.DecodeOptions{
		Rotate:      cal.Rotate,
		UseCameraWB: true,
		Bright:      4,
		Order:       cal.BayerOrder,
	}

	d, err := cal.Decoder.Decode(ctx, data, opts)
	if err != nil {
		return Capture{}, fmt.Errorf("load '%s': %w", filename, err)
	}
	if d.Frame == nil && d.Developed == nil {
		return Capture{}, fmt.Errorf("load '%s': decoder returned no pixels", filename)
	}

	c := Capture{Filename: filename, Decoded: d}
	if cal.Verbosity > 0 {
		log.Printf("Loaded %s\n", c)
	}
	return c, nil
}

// Develop produces the working image for a capture.
func (cal *Calibrator)Develop(c Capture) (Working, error) {
	source := cal.Source
	if source == SourceCustom && c.Frame == nil {
		return Working{}, fmt.Errorf("develop %s: no mosaic frame for the custom source", c.Filename)
	}
	if source == SourceDeveloped && c.Developed == nil {
		return Working{}, fmt.Errorf("develop %s: no developed image", c.Filename)
	}

	if source == SourceDeveloped {
		li := FromDeveloped(c.Developed, cal.ExposureStops)
		return Working{LinearImage: li, WhiteBalance: ecolor.NeutralWhiteBalance(), Source: source}, nil
	}

	frame, err := cal.Cache.Oriented(c.Frame, cal.Rotate)
	if err != nil {
		return Working{}, stageErr("rotate", c.Frame.Width, c.Frame.Height, err)
	}

	lv, err := cal.levels(c, frame)
	if err != nil {
		return Working{}, stageErr("levels", frame.Width, frame.Height, err)
	}
	wb, err := cal.whiteBalance(c)
	if err != nil {
		return Working{}, stageErr("whitebalance", frame.Width, frame.Height, err)
	}

	if cal.Verbosity > 0 {
		log.Printf("Developing %s with %s, %s\n", frame, lv, wb)
	}

	li, err := Develop(frame, lv, wb)
	if err != nil {
		return Working{}, err
	}

	if cal.Verbosity > 1 {
		log.Printf("Developed %s\n", li.Stats())
	}

	w := Working{LinearImage: li, Levels: lv, WhiteBalance: wb, Source: source}
	if stats, err := sensor.MeasureLevels(frame, 0.1, 99.99, lv.White); err == nil {
		w.Clipped = stats.ClippedFraction()
		if cal.Verbosity > 0 && w.Clipped > 0.01 {
			log.Printf("%.1f%% of samples are clipped\n", 100*w.Clipped)
		}
	}
	return w, nil
}

func (cal *Calibrator)levels(c Capture, f sensor.RawFrame) (sensor.Levels, error) {
	if cal.AutoLevels {
		return sensor.EstimateLevels(f)
	}
	lv := sensor.Levels{Black: cal.BlackLevel, White: cal.WhiteLevel}
	if lv.White == 0 {
		if c.Maximum == 0 {
			return lv, fmt.Errorf("no white level configured, and the decoder didn't report one")
		}
		lv.White = float64(c.Maximum)
	}
	return lv, nil
}

func (cal *Calibrator)whiteBalance(c Capture) (ecolor.WhiteBalance, error) {
	if !cal.WhiteBalance.IsZero() {
		return cal.WhiteBalance, nil
	}
	if c.CamMul == [4]float64{} {
		return ecolor.NeutralWhiteBalance(), nil
	}
	return ecolor.WhiteBalanceFromCamMul(c.CamMul)
}

// Calibrate samples the checker in the working image and solves for the matrix.
func (cal *Calibrator)Calibrate(c Capture, w Working) (Result, error) {
	patches, err := SamplePatches(w.LinearImage, cal.Checker, cal.PatchFraction)
	if err != nil {
		return Result{}, err
	}

	sol, err := SolveChart(patches, cal.MaxConditionNumber)
	if err != nil {
		return Result{}, stageErr("solve", w.Width, w.Height, err)
	}

	r := Result{
		Capture:  c,
		Working:  w,
		Patches:  patches,
		Solution: sol,
		Metadata: cal.exportMetadata(c),
	}
	if cal.Verbosity > 0 {
		log.Printf("Solved, condition number %.1f, mean dE %.2f\n", sol.Condition, r.MeanDeltaE())
	}
	return r, nil
}

// Run does the lot for one file's bytes.
func (cal *Calibrator)Run(ctx context.Context, filename string, data []byte) (Result, error) {
	c, err := cal.Load(ctx, filename, data)
	if err != nil {
		return Result{}, err
	}
	w, err := cal.Develop(c)
	if err != nil {
		return Result{}, err
	}
	return cal.Calibrate(c, w)
}

func (cal *Calibrator)exportMetadata(c Capture) ExportMetadata {
	title := cal.Title
	if title == "" {
		manufacturer, camera := cal.Manufacturer, cal.Camera
		if manufacturer == "" { manufacturer = c.CameraMake }
		if camera == ""       { camera = c.CameraModel }
		title = Title(manufacturer, camera, cal.Scene)
	}
	return ExportMetadata{
		Title:                title,
		BlackPoint:           cal.BlackPoint,
		WhitePoint:           cal.WhitePoint,
		TransferFunctionName: cal.TransferFunction,
	}
}

// Renderer returns the export renderer the config asks for.
func (cal *Calibrator)Renderer() (ExportRenderer, error) {
	if cal.ExportTemplate != "" {
		return LoadTemplateRenderer(cal.ExportTemplate)
	}
	return NewTemplateRenderer(DefaultExportTemplate)
}
