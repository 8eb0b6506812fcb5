package calibrate

import(
	"bytes"
	"strings"
	"testing"

	"github.com/abworrall/colorchecker/pkg/emath"
)

func TestFormatMatrix(t *testing.T) {
	m := emath.Mat3{1, 0.5, 0, 0, 1, 0, 0.25, 0, 1}
	want := "1, 0.5, 0,\n0, 1, 0,\n0.25, 0, 1"
	if got := FormatMatrix(m); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTemplateRenderer(t *testing.T) {
	tr, err := NewTemplateRenderer(DefaultExportTemplate)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	md := ExportMetadata{Title: "Sigma fp: Kitchen", BlackPoint: 0, WhitePoint: 256, TransferFunctionName: "Linear"}
	if err := tr.Render(&buf, identity, md); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"<title>Sigma fp: Kitchen</title>", "<whitePoint>256</whitePoint>", "<transferFunction>Linear</transferFunction>", "1, 0, 0,\n0, 1, 0,\n0, 0, 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTemplateRendererEscapesTitle(t *testing.T) {
	tr, err := NewTemplateRenderer(DefaultExportTemplate)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	md := ExportMetadata{Title: Title("Sigma", "fp", "Sun & Shade <2>"), WhitePoint: 256, TransferFunctionName: "Linear"}
	if err := tr.Render(&buf, identity, md); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if want := "<title>Sigma fp: Sun &amp; Shade &lt;2&gt;</title>"; !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
	if strings.Contains(out, "Sun & Shade") {
		t.Errorf("raw ampersand in output:\n%s", out)
	}
}

func TestCustomTemplateSeesRows(t *testing.T) {
	tr, err := NewTemplateRenderer(`{{range .Rows}}{{index . 0}};{{end}}`)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := tr.Render(&buf, emath.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}, ExportMetadata{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1;4;7;" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTitleAndSafeFilename(t *testing.T) {
	title := Title("SIGMA", "fp", "Kühlschrank")
	if title != "SIGMA fp: Kühlschrank" {
		t.Errorf("title %q", title)
	}
	if got := SafeFilename(title); got != "SIGMA_fp_Kuehlschrank" {
		t.Errorf("safe filename %q", got)
	}
	if got := SafeFilename("a  //  b-c_d"); got != "a_b-c_d" {
		t.Errorf("safe filename %q", got)
	}
}
