package calibrate

import(
	"fmt"
	"io"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/colorchecker/pkg/ecolor"
)

// Result is the outcome of one calibration run.
type Result struct {
	Capture
	Working
	Patches  []PatchEstimate
	Solution
	Metadata ExportMetadata
}

func (r Result)MeanDeltaE() float64 {
	res := r.Residuals()
	if len(res) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range res {
		sum += d
	}
	return sum / float64(len(res))
}

func (r Result)WriteExport(w io.Writer, renderer ExportRenderer) error {
	return renderer.Render(w, r.Export, r.Metadata)
}

// Filename suggests a name for the export file.
func (r Result)Filename(ext string) string {
	return SafeFilename(r.Metadata.Title) + ext
}

// Report is a plain, yaml friendly summary of a Result.
type Report struct {
	Title          string
	Source         string
	Levels         [2]float64
	WhiteBalance   [3]float64
	Clipped        float64
	Condition      float64
	RMSError       float64
	MeanDeltaE     float64
	Correction     [][]float64
	ToWorkingSpace [][]float64 `yaml:"toworkingspace"`
	Export         [][]float64
	Patches        []PatchReport
}

type PatchReport struct {
	Name      string
	Measured  [3]float64
	Reference [3]float64
	Fitted    [3]float64
	DeltaE    float64
	Swatch    [3]uint8 // measured, as displayed at the preview exposure
	Samples   int
}

func (r Result)Report(stops float64) Report {
	rep := Report{
		Title:          r.Metadata.Title,
		Source:         r.Working.Source,
		Levels:         [2]float64{r.Levels.Black, r.Levels.White},
		WhiteBalance:   [3]float64{r.WhiteBalance.R, r.WhiteBalance.G, r.WhiteBalance.B},
		Clipped:        r.Clipped,
		Condition:      r.Condition,
		RMSError:       r.RMSError(),
		MeanDeltaE:     r.MeanDeltaE(),
		Correction:     r.Correction.Rows(),
		ToWorkingSpace: r.ToWorkingSpace.Rows(),
		Export:         r.Export.Rows(),
	}

	res := r.Residuals()
	for k, p := range r.Patches {
		pr := PatchReport{
			Measured: p.RGB,
			DeltaE:   res[k],
			Swatch:   Swatch(p.RGB, stops),
			Samples:  p.Samples,
		}
		if k < ecolor.ChartPatches {
			pr.Name = ecolor.PatchNames[k]
		}
		copy(pr.Reference[:], r.Solution.Reference.RawRowView(k))
		pr.Fitted = r.Correction.ApplyRow(p.RGB)
		rep.Patches = append(rep.Patches, pr)
	}
	return rep
}

func (rep Report)AsYaml() string {
	b, err := yaml.Marshal(rep)
	if err != nil {
		log.Printf("Can't marshal report yaml: %v\n", err)
		return ""
	}
	return string(b)
}

func (rep Report)String() string {
	str := fmt.Sprintf("%s (%s), cond %.1f, rms %.4f, mean dE %.2f\n",
		rep.Title, rep.Source, rep.Condition, rep.RMSError, rep.MeanDeltaE)
	for _, p := range rep.Patches {
		str += fmt.Sprintf("  %-14s dE %5.2f  %v\n", p.Name, p.DeltaE, p.Swatch)
	}
	return str
}
