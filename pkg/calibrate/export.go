package calibrate

import(
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"strings"
	"text/template"

	"github.com/abworrall/colorchecker/pkg/emath"
)

// ExportMetadata is the descriptive stuff that goes alongside the
// matrix in a calibration file.
type ExportMetadata struct {
	Title                string
	BlackPoint           float64
	WhitePoint           float64
	TransferFunctionName string
}

// An ExportRenderer writes a calibration file. The solver only hands
// over numbers; the file grammar belongs to the renderer.
type ExportRenderer interface {
	Render(w io.Writer, export emath.Mat3, md ExportMetadata) error
}

// The template sees .Title, .BlackPoint, .WhitePoint,
// .TransferFunctionName, .Matrix (rows joined by ",\n", values by ", ")
// and .Rows (a [][]float64). text/template doesn't escape anything, so
// free text going into markup should be piped through `xml`.
const DefaultExportTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<flspace>
  <title>{{xml .Title}}</title>
  <blackPoint>{{.BlackPoint}}</blackPoint>
  <whitePoint>{{.WhitePoint}}</whitePoint>
  <transferFunction>{{xml .TransferFunctionName}}</transferFunction>
  <matrix>
{{.Matrix}}
  </matrix>
</flspace>
`

// TemplateRenderer renders with a text/template.
type TemplateRenderer struct {
	Template *template.Template
}

var exportFuncs = template.FuncMap{
	"xml": template.HTMLEscapeString,
}

func NewTemplateRenderer(text string) (TemplateRenderer, error) {
	tmpl, err := template.New("export").Funcs(exportFuncs).Parse(text)
	if err != nil {
		return TemplateRenderer{}, fmt.Errorf("export template: %v", err)
	}
	return TemplateRenderer{Template: tmpl}, nil
}

func LoadTemplateRenderer(filename string) (TemplateRenderer, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return TemplateRenderer{}, fmt.Errorf("export template read '%s': %v", filename, err)
	}
	return NewTemplateRenderer(string(contents))
}

func (tr TemplateRenderer)Render(w io.Writer, export emath.Mat3, md ExportMetadata) error {
	data := struct {
		ExportMetadata
		Matrix string
		Rows   [][]float64
	}{md, FormatMatrix(export), export.Rows()}

	return tr.Template.Execute(w, data)
}

// FormatMatrix lays a matrix out one row per line, comma separated.
func FormatMatrix(m emath.Mat3) string {
	rows := []string{}
	for _, row := range m.Rows() {
		vals := []string{}
		for _, v := range row {
			vals = append(vals, fmt.Sprintf("%v", v))
		}
		rows = append(rows, strings.Join(vals, ", "))
	}
	return strings.Join(rows, ",\n")
}

// Title builds "<make> <model>: <scene>".
func Title(manufacturer, camera, scene string) string {
	return fmt.Sprintf("%s %s: %s", manufacturer, camera, scene)
}

var(
	umlauts = strings.NewReplacer(
		"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
		"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	)
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	underscores = regexp.MustCompile(`_+`)
)

// SafeFilename turns a title into something fit for a filename.
func SafeFilename(s string) string {
	s = umlauts.Replace(s)
	s = unsafeChars.ReplaceAllString(s, "_")
	return underscores.ReplaceAllString(s, "_")
}
